// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/pion/logging"
)

// YieldFunc is a cooperative checkpoint run between probe phases.
type YieldFunc func(ctx context.Context) error

func goschedYield(ctx context.Context) error {
	runtime.Gosched()
	return ctx.Err()
}

// Timer measures how long a single probe run takes, including the time
// spent at yield points.
type Timer struct {
	now   func() time.Time
	start time.Time
	laps  []time.Duration
}

func newTimer(now func() time.Time) *Timer {
	return &Timer{now: now, start: now()}
}

// Lap records and returns the time elapsed since the timer started.
func (t *Timer) Lap() time.Duration {
	elapsed := t.now().Sub(t.start)
	t.laps = append(t.laps, elapsed)
	return elapsed
}

// Laps returns every recorded lap.
func (t *Timer) Laps() []time.Duration {
	out := make([]time.Duration, len(t.laps))
	copy(out, t.laps)
	return out
}

// Stop returns the total elapsed time.
func (t *Timer) Stop() time.Duration {
	return t.now().Sub(t.start)
}

// yielder pairs the configured YieldFunc with a Timer so that every
// checkpoint is recorded as a lap.
type yielder struct {
	fn    YieldFunc
	timer *Timer
}

func (y yielder) yield(ctx context.Context) error {
	if err := y.fn(ctx); err != nil {
		return err
	}
	y.timer.Lap()
	return nil
}

// TestResult is one entry in the PerformanceLog. Laps holds the elapsed
// time at each yield point the probe reached.
type TestResult struct {
	Test    string          `json:"test"`
	Elapsed time.Duration   `json:"elapsed"`
	Laps    []time.Duration `json:"laps,omitempty"`
	Passed  bool            `json:"passed"`
}

// PerformanceLog records how each probe ended and how long it took.
type PerformanceLog struct {
	mu      sync.Mutex
	log     logging.LeveledLogger
	results map[string]TestResult
}

func newPerformanceLog(log logging.LeveledLogger) *PerformanceLog {
	return &PerformanceLog{log: log, results: map[string]TestResult{}}
}

func (p *PerformanceLog) record(test string, timer *Timer, passed bool) {
	elapsed := timer.Stop()
	laps := timer.Laps()
	p.mu.Lock()
	p.results[test] = TestResult{Test: test, Elapsed: elapsed, Laps: laps, Passed: passed}
	p.mu.Unlock()

	if passed {
		p.log.Debugf("%s passed in %v (laps %v)", test, elapsed, laps)
	} else {
		p.log.Debugf("%s failed", test)
	}
}

// Result returns the last result recorded for test.
func (p *PerformanceLog) Result(test string) (TestResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.results[test]
	return r, ok
}
