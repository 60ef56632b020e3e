// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"time"

	"github.com/pion/logging"
)

const defaultNegotiationTimeout = 3 * time.Second

// SettingEngine allows influencing probe behavior that callers rarely
// need to change. Settings should not be changed after passing the engine
// to an API.
type SettingEngine struct {
	timeout struct {
		Negotiation *time.Duration
	}
	engineFamily *EngineFamily
	yield        YieldFunc
	now          func() time.Time

	LoggerFactory logging.LoggerFactory
}

// SetNegotiationTimeout sets how long the negotiation probe waits for a
// usable candidate before resolving without an address.
func (e *SettingEngine) SetNegotiationTimeout(t time.Duration) error {
	if t <= 0 {
		return errInvalidTimeout
	}
	e.timeout.Negotiation = &t
	return nil
}

// SetEngineFamily overrides the rendering engine family reported by the
// layout engine when looking up rotation reference hashes.
func (e *SettingEngine) SetEngineFamily(family EngineFamily) {
	e.engineFamily = &family
}

// SetYieldFunc replaces the cooperative checkpoint run between probe phases.
func (e *SettingEngine) SetYieldFunc(fn YieldFunc) {
	e.yield = fn
}

// SetClock replaces the time source used for probe timing.
func (e *SettingEngine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *SettingEngine) negotiationTimeout() time.Duration {
	if e.timeout.Negotiation == nil {
		return defaultNegotiationTimeout
	}
	return *e.timeout.Negotiation
}

func (e *SettingEngine) yieldFunc() YieldFunc {
	if e.yield == nil {
		return goschedYield
	}
	return e.yield
}

func (e *SettingEngine) clock() func() time.Time {
	if e.now == nil {
		return time.Now
	}
	return e.now
}

func (e *SettingEngine) loggerFactory() logging.LoggerFactory {
	if e.LoggerFactory == nil {
		return logging.NewDefaultLoggerFactory()
	}
	return e.LoggerFactory
}
