// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package fingerprint implements browser probes that derive a stable
// signature from rendering, graphics and negotiation APIs and flag the
// answers that are internally inconsistent.
package fingerprint

import (
	"errors"
	"fmt"

	"github.com/pion/logging"
)

// API bundles the probes together with the collaborators they share: the
// lie recorder, the interception report, the anomaly and error sinks and
// the hasher. An API is safe to reuse across probe runs.
type API struct {
	settingEngine *SettingEngine
	lies          LieRecorder
	report        InterceptionReport
	anomalies     AnomalySink
	errors        ErrorSink
	hasher        Hasher
	perf          *PerformanceLog
	log           logging.LeveledLogger
}

// NewAPI Creates a new API object for running probes
func NewAPI(options ...func(*API)) *API {
	a := &API{}

	for _, o := range options {
		o(a)
	}

	if a.settingEngine == nil {
		a.settingEngine = &SettingEngine{}
	}

	factory := a.settingEngine.loggerFactory()
	a.log = factory.NewLogger("fingerprint")

	if a.lies == nil {
		a.lies = &LieLedger{}
	}

	if a.report == nil {
		a.report = InterceptedAPIs{}
	}

	if a.anomalies == nil {
		a.anomalies = logAnomalySink{log: factory.NewLogger("anomaly")}
	}

	if a.errors == nil {
		a.errors = logErrorSink{log: a.log}
	}

	if a.hasher == nil {
		a.hasher = canonicalHasher{}
	}

	a.perf = newPerformanceLog(factory.NewLogger("performance"))

	return a
}

// WithSettingEngine allows providing a SettingEngine to the API.
// Settings should not be changed after passing the engine to an API.
func WithSettingEngine(s SettingEngine) func(a *API) {
	return func(a *API) {
		a.settingEngine = &s
	}
}

// WithLieRecorder sets the ledger probes append lie records to.
func WithLieRecorder(r LieRecorder) func(a *API) {
	return func(a *API) {
		a.lies = r
	}
}

// WithInterceptionReport sets the report probes consult for API interception.
func WithInterceptionReport(r InterceptionReport) func(a *API) {
	return func(a *API) {
		a.report = r
	}
}

// WithAnomalySink sets where suspicious but unproven findings go.
func WithAnomalySink(s AnomalySink) func(a *API) {
	return func(a *API) {
		a.anomalies = s
	}
}

// WithErrorSink sets where unexpected probe errors go.
func WithErrorSink(s ErrorSink) func(a *API) {
	return func(a *API) {
		a.errors = s
	}
}

// WithHasher replaces the content hasher used for signature hashes.
func WithHasher(h Hasher) func(a *API) {
	return func(a *API) {
		a.hasher = h
	}
}

// Performance returns the log of probe timings.
func (a *API) Performance() *PerformanceLog {
	return a.perf
}

// LieRecorder returns the recorder probes write to.
func (a *API) LieRecorder() LieRecorder {
	return a.lies
}

func (a *API) newLogger(scope string) logging.LeveledLogger {
	return a.settingEngine.loggerFactory().NewLogger(scope)
}

func capabilityAbsent(err error) bool {
	return errors.Is(err, ErrUnsupported) || errors.Is(err, ErrNoGraphicsContext)
}

// runProbe is the probe boundary. Errors and panics never escape it as
// anything but a ProbeError, and the outcome is always logged to the
// PerformanceLog. Missing capabilities are not reported to the ErrorSink.
func (a *API) runProbe(test string, probe func(y yielder) error) (err error) {
	timer := newTimer(a.settingEngine.clock())

	defer func() {
		if r := recover(); r != nil {
			err = &ProbeError{Probe: test, Err: fmt.Errorf("%w: %v", ErrProbePanicked, r)}
		}

		if err == nil {
			a.perf.record(test, timer, true)
			return
		}

		a.perf.record(test, timer, false)
		if !capabilityAbsent(err) {
			a.errors.CaptureError(err)
		}
	}()

	if probeErr := probe(yielder{fn: a.settingEngine.yieldFunc(), timer: timer}); probeErr != nil {
		return &ProbeError{Probe: test, Err: probeErr}
	}

	return nil
}

func (a *API) hash(v interface{}) string {
	h, err := a.hasher.Hash(v)
	if err != nil {
		a.log.Warnf("failed to hash signature: %v", err)
		return ""
	}
	return h
}
