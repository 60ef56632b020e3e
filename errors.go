// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported indicates the capability a probe depends on is absent.
	ErrUnsupported = errors.New("capability unsupported")

	// ErrNoGraphicsContext indicates that no primary graphics context could be acquired.
	ErrNoGraphicsContext = errors.New("no graphics context")

	// ErrParameterUndefined is returned by a GraphicsContext when a parameter
	// name is not defined at its capability level.
	ErrParameterUndefined = errors.New("parameter undefined at this context level")

	// ErrExtensionUnavailable is returned by a GraphicsContext when an
	// extension is not exposed.
	ErrExtensionUnavailable = errors.New("extension unavailable")

	// ErrProbePanicked indicates a probe failed with a panic that was recovered
	// at the probe boundary.
	ErrProbePanicked = errors.New("probe panicked")

	errTooFewProbeRects = errors.New("layout engine returned too few probe rects")
	errNoShiftProbeRect = errors.New("layout engine returned no shift probe rect")
	errNoKnownRect      = errors.New("layout engine returned no known rect")
	errNoGhostRect      = errors.New("layout engine returned no ghost rect")
	errInvalidTimeout   = errors.New("negotiation timeout must be positive")
)

// ProbeError wraps a failure that ended a probe without data.
type ProbeError struct {
	Probe string
	Err   error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Probe, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}
