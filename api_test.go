// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errFailingHasher = errors.New("hasher failed")

type failingHasher struct{}

func (failingHasher) Hash(interface{}) (string, error) {
	return "", errFailingHasher
}

func TestNewAPI(t *testing.T) {
	api := NewAPI()
	assert.NotNil(t, api.settingEngine, "failed to init settings engine")
	assert.NotNil(t, api.lies, "failed to init lie recorder")
	assert.NotNil(t, api.report, "failed to init interception report")
	assert.NotNil(t, api.anomalies, "failed to init anomaly sink")
	assert.NotNil(t, api.errors, "failed to init error sink")
	assert.NotNil(t, api.hasher, "failed to init hasher")
	assert.NotNil(t, api.Performance(), "failed to init performance log")
}

func TestNewAPI_Options(t *testing.T) {
	s := SettingEngine{}
	assert.NoError(t, s.SetNegotiationTimeout(defaultNegotiationTimeout*2))

	ledger := &LieLedger{}
	api := NewAPI(
		WithSettingEngine(s),
		WithLieRecorder(ledger),
		WithInterceptionReport(NewInterceptedAPIs("Element.getClientRects")),
	)

	assert.Equal(t, defaultNegotiationTimeout*2, api.settingEngine.negotiationTimeout(), "failed to set settings engine")
	assert.Same(t, ledger, api.LieRecorder())
	assert.True(t, api.report.Intercepted("Element.getClientRects"))
}

func TestRunProbeRecoversPanic(t *testing.T) {
	errs := &capturedErrors{}
	api := NewAPI(WithErrorSink(errs))

	err := api.runProbe("panicky", func(yielder) error {
		panic("index out of range")
	})

	var probeErr *ProbeError
	assert.True(t, errors.As(err, &probeErr))
	assert.Equal(t, "panicky", probeErr.Probe)
	assert.ErrorIs(t, err, ErrProbePanicked)
	assert.Contains(t, err.Error(), "index out of range")
	assert.Equal(t, []error{err}, errs.errs)

	perf, ok := api.Performance().Result("panicky")
	assert.True(t, ok)
	assert.False(t, perf.Passed)
}

func TestRunProbePanicInsideGraphicsProbe(t *testing.T) {
	gl := primaryContext()
	gl.parameterFn = func(name string) {
		if name == "MAX_TEXTURE_SIZE" {
			panic("context lost")
		}
	}

	errs := &capturedErrors{}
	result, err := NewAPI(WithErrorSink(errs)).WebGL(context.Background(), &fakeSurface{
		contexts: map[GraphicsLevel]*fakeGraphicsContext{GraphicsLevelWebGL: gl},
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrProbePanicked)
	assert.Len(t, errs.errs, 1)
}

func TestRunProbeCapabilityAbsent(t *testing.T) {
	errs := &capturedErrors{}
	api := NewAPI(WithErrorSink(errs))

	for _, absent := range []error{ErrUnsupported, ErrNoGraphicsContext} {
		err := api.runProbe("absent", func(yielder) error {
			return absent
		})
		assert.ErrorIs(t, err, absent)
	}
	assert.Empty(t, errs.errs)

	assert.NoError(t, api.runProbe("absent", func(yielder) error { return nil }))
	perf, ok := api.Performance().Result("absent")
	assert.True(t, ok)
	assert.True(t, perf.Passed)
}

func TestHashFailureLeavesHashEmpty(t *testing.T) {
	result, err := NewAPI(WithHasher(failingHasher{})).WebGL(context.Background(), &fakeSurface{
		contexts: map[GraphicsLevel]*fakeGraphicsContext{GraphicsLevelWebGL: primaryContext()},
	})
	assert.NoError(t, err)
	assert.Empty(t, result.Hash)
}
