// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"sync"

	"github.com/pion/logging"
)

// LieRecord is a single inconsistency found by a probe.
type LieRecord struct {
	API    string `json:"api"`
	Reason string `json:"reason"`
}

// LieRecorder accumulates lie records across probes.
type LieRecorder interface {
	RecordLie(api, reason string)
}

// LieLedger is an append-only LieRecorder. Records are never deduplicated,
// each call site owns its own write.
type LieLedger struct {
	mu      sync.Mutex
	records []LieRecord
}

// RecordLie appends a record to the ledger.
func (l *LieLedger) RecordLie(api, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, LieRecord{API: api, Reason: reason})
}

// Records returns a copy of every record in insertion order.
func (l *LieLedger) Records() []LieRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LieRecord, len(l.records))
	copy(out, l.records)
	return out
}

// InterceptionReport is consulted by probes to learn whether an API was
// found intercepted by the surrounding lie-report mechanism.
type InterceptionReport interface {
	Intercepted(api string) bool
}

// InterceptedAPIs is an InterceptionReport backed by a set of API names,
// e.g. "Element.getClientRects".
type InterceptedAPIs map[string]struct{}

// NewInterceptedAPIs builds a set from the given API names.
func NewInterceptedAPIs(apis ...string) InterceptedAPIs {
	s := make(InterceptedAPIs, len(apis))
	for _, api := range apis {
		s[api] = struct{}{}
	}
	return s
}

// Intercepted reports whether api is in the set.
func (s InterceptedAPIs) Intercepted(api string) bool {
	_, ok := s[api]
	return ok
}

func anyIntercepted(report InterceptionReport, apis ...string) bool {
	for _, api := range apis {
		if report.Intercepted(api) {
			return true
		}
	}
	return false
}

// AnomalySink receives findings that are suspicious but not proof of
// spoofing, so they stay out of the lie ledger.
type AnomalySink interface {
	RecordAnomaly(name, value string)
}

// ErrorSink receives unexpected errors caught at a probe boundary.
type ErrorSink interface {
	CaptureError(err error)
}

type logAnomalySink struct {
	log logging.LeveledLogger
}

func (s logAnomalySink) RecordAnomaly(name, value string) {
	s.log.Warnf("%s: %s", name, value)
}

type logErrorSink struct {
	log logging.LeveledLogger
}

func (s logErrorSink) CaptureError(err error) {
	s.log.Errorf("%v", err)
}
