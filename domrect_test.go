// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blinkKnownRect is the rotated reference element as Blink lays it out.
var blinkKnownRect = Rect{
	Bottom: 120.71067810058594,
	Height: 141.42135620117188,
	Left:   -20.710678100585938,
	Right:  120.71067810058594,
	Width:  141.42135620117188,
	Top:    -20.710678100585938,
	X:      -20.710678100585938,
	Y:      -20.710678100585938,
}

func box(left, top, width, height float64) Rect {
	return Rect{
		Bottom: top + height,
		Height: height,
		Left:   left,
		Right:  left + width,
		Width:  width,
		Top:    top,
		X:      left,
		Y:      top,
	}
}

type fakeLayout struct {
	family EngineFamily
	doc    *fakeDocument
	err    error
}

func (l *fakeLayout) EngineFamily() EngineFamily { return l.family }

func (l *fakeLayout) Mount(context.Context) (ProbeDocument, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.doc.mounted = true
	return l.doc, nil
}

type fakeDocument struct {
	probes       []Rect
	known        Rect
	ghost        Rect
	glyphs       []Rect
	shiftedTop   float64
	unshiftedTop float64
	measureErr   map[RectAPI]error

	mounted  bool
	removed  bool
	shifted  bool
	reverted bool
	measured []RectAPI
}

func (d *fakeDocument) Measure(_ context.Context, api RectAPI, target ProbeTarget) ([]Rect, error) {
	if err := d.measureErr[api]; err != nil {
		return nil, err
	}

	switch target {
	case ProbeElements:
		return append([]Rect{}, d.probes...), nil
	case ShiftProbe:
		r := d.probes[shiftProbeIndex]
		switch {
		case d.shifted:
			r.Top = d.shiftedTop
		case d.reverted:
			r.Top = d.unshiftedTop
		}
		return []Rect{r}, nil
	case KnownRotation:
		return []Rect{d.known}, nil
	case Ghost:
		return []Rect{d.ghost}, nil
	case Glyphs:
		d.measured = append(d.measured, api)
		return d.glyphs, nil
	default:
		return nil, nil
	}
}

func (d *fakeDocument) SetShifted(_ context.Context, shifted bool) error {
	d.shifted = shifted
	if !shifted {
		d.reverted = true
	}
	return nil
}

func (d *fakeDocument) Remove(context.Context) error {
	d.removed = true
	return nil
}

// consistentDocument returns a document with no inconsistency in any check.
func consistentDocument() *fakeDocument {
	probes := make([]Rect, probeRectCount)
	for i := range probes {
		probes[i] = box(float64(i)*8, float64(i)*4+10, 100.5, 20.25)
	}
	probes[shiftProbeIndex] = box(12.125, 50, 30, 30)
	probes[equalProbeFirstIndex] = box(10, 300, 10, 10)
	probes[equalProbeLastIndex] = box(10, 314, 10, 10)

	glyphs := make([]Rect, len(Emojis))
	for i := range glyphs {
		glyphs[i] = box(0, 0, float64(200+i%3), 230)
	}

	return &fakeDocument{
		probes:       probes,
		known:        blinkKnownRect,
		glyphs:       glyphs,
		shiftedTop:   51,
		unshiftedTop: 50,
	}
}

func TestClientRectsConsistent(t *testing.T) {
	ledger := &LieLedger{}
	doc := consistentDocument()
	api := NewAPI(WithLieRecorder(ledger))

	result, err := api.ClientRects(context.Background(), &fakeLayout{family: EngineFamilyBlink, doc: doc})
	require.NoError(t, err)

	assert.False(t, result.Lied)
	assert.Empty(t, ledger.Records())
	assert.True(t, doc.removed)
	assert.Len(t, result.ElementClientRects, probeRectCount)
	assert.Len(t, result.RangeBoundingClientRect, probeRectCount)
	assert.Equal(t, Emojis[:3], result.EmojiSet)
	assert.True(t, result.DOMRectSystemSum.Valid)
	assert.InDelta(t, 0.00001*(430+431+432), result.DOMRectSystemSum.Float64, 1e-12)
	assert.NotEmpty(t, result.Hash)

	perf, ok := api.Performance().Result("rects")
	require.True(t, ok)
	assert.True(t, perf.Passed)
}

func TestClientRectsLies(t *testing.T) {
	for _, test := range []struct {
		name   string
		family EngineFamily
		mutate func(d *fakeDocument)
		reason string
	}{
		{
			name:   "failed math",
			family: EngineFamilyBlink,
			mutate: func(d *fakeDocument) {
				d.probes[0] = Rect{Right: 10, Left: 0, Width: 5, X: 0}
				d.probes[1] = Rect{Bottom: 3, Top: 1, Height: 1}
			},
			reason: reasonFailedMath,
		},
		{
			name:   "failed unshift",
			family: EngineFamilyBlink,
			mutate: func(d *fakeDocument) {
				d.unshiftedTop = 52
			},
			reason: reasonFailedUnshift,
		},
		{
			name:   "equal elements",
			family: EngineFamilyBlink,
			mutate: func(d *fakeDocument) {
				d.probes[equalProbeLastIndex] = box(10, 314, 11, 10)
			},
			reason: reasonEqualElements,
		},
		{
			name:   "unknown rotation",
			family: EngineFamilyBlink,
			mutate: func(d *fakeDocument) {
				d.known = box(-20.75, -20.75, 141.5, 141.5)
			},
			reason: reasonUnknownRotate,
		},
		{
			name:   "rotation from another engine",
			family: EngineFamilyGecko,
			mutate: func(*fakeDocument) {},
			reason: reasonUnknownRotate,
		},
		{
			name:   "ghost dimensions",
			family: EngineFamilyBlink,
			mutate: func(d *fakeDocument) {
				d.ghost = Rect{Height: 0.5}
			},
			reason: reasonUnknownGhost,
		},
	} {
		test := test
		t.Run(test.name, func(t *testing.T) {
			ledger := &LieLedger{}
			doc := consistentDocument()
			test.mutate(doc)

			result, err := NewAPI(WithLieRecorder(ledger)).
				ClientRects(context.Background(), &fakeLayout{family: test.family, doc: doc})
			require.NoError(t, err)

			assert.True(t, result.Lied)
			assert.Equal(t, []LieRecord{{API: rectsLieAPI, Reason: test.reason}}, ledger.Records())
		})
	}
}

func TestClientRectsUnverifiableRotation(t *testing.T) {
	ledger := &LieLedger{}
	doc := consistentDocument()
	doc.known = box(-20.75, -20.75, 141.5, 141.5)

	result, err := NewAPI(WithLieRecorder(ledger)).
		ClientRects(context.Background(), &fakeLayout{family: EngineFamilyWebKit, doc: doc})
	require.NoError(t, err)
	assert.False(t, result.Lied)
	assert.Empty(t, ledger.Records())
}

func TestClientRectsEngineFamilyOverride(t *testing.T) {
	s := SettingEngine{}
	s.SetEngineFamily(EngineFamilyBlink)

	result, err := NewAPI(WithSettingEngine(s)).
		ClientRects(context.Background(), &fakeLayout{family: EngineFamilyUnknown, doc: consistentDocument()})
	require.NoError(t, err)
	assert.False(t, result.Lied)
}

func TestClientRectsInterception(t *testing.T) {
	ledger := &LieLedger{}
	doc := consistentDocument()
	api := NewAPI(
		WithLieRecorder(ledger),
		WithInterceptionReport(NewInterceptedAPIs("Element.getClientRects", "Element.getBoundingClientRect")),
	)

	result, err := api.ClientRects(context.Background(), &fakeLayout{family: EngineFamilyBlink, doc: doc})
	require.NoError(t, err)

	assert.True(t, result.Lied)
	assert.Empty(t, ledger.Records(), "interception alone is recorded by the report, not the probe")
	assert.Equal(t, []RectAPI{RangeClientRects}, doc.measured)
}

func TestClientRectsOptionalListsDegrade(t *testing.T) {
	doc := consistentDocument()
	doc.measureErr = map[RectAPI]error{RangeClientRects: errors.New("range unsupported")}

	result, err := NewAPI().ClientRects(context.Background(), &fakeLayout{family: EngineFamilyBlink, doc: doc})
	require.NoError(t, err)
	assert.Nil(t, result.RangeClientRects)
	assert.Len(t, result.ElementBoundingClientRect, probeRectCount)
}

type capturedErrors struct {
	errs []error
}

func (c *capturedErrors) CaptureError(err error) { c.errs = append(c.errs, err) }

func TestClientRectsRemovesScaffoldingOnFailure(t *testing.T) {
	errMeasure := errors.New("layout crashed")
	sink := &capturedErrors{}
	doc := consistentDocument()
	doc.measureErr = map[RectAPI]error{ElementClientRects: errMeasure}

	result, err := NewAPI(WithErrorSink(sink)).
		ClientRects(context.Background(), &fakeLayout{family: EngineFamilyBlink, doc: doc})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, errMeasure)

	var probeErr *ProbeError
	require.ErrorAs(t, err, &probeErr)
	assert.Equal(t, "rects", probeErr.Probe)

	assert.True(t, doc.removed)
	assert.Len(t, sink.errs, 1)
}

func TestClientRectsTooFewProbes(t *testing.T) {
	doc := consistentDocument()
	doc.probes = doc.probes[:4]

	_, err := NewAPI().ClientRects(context.Background(), &fakeLayout{family: EngineFamilyBlink, doc: doc})
	assert.ErrorIs(t, err, errTooFewProbeRects)
	assert.True(t, doc.removed)
}

func TestClientRectsUnsupported(t *testing.T) {
	sink := &capturedErrors{}
	api := NewAPI(WithErrorSink(sink))

	result, err := api.ClientRects(context.Background(), nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnsupported)

	errMount := errors.New("no document")
	_, err = api.ClientRects(context.Background(), &fakeLayout{err: errMount})
	assert.ErrorIs(t, err, errMount)

	assert.Equal(t, 1, len(sink.errs), "a missing capability is not an unexpected error")
}

func TestClientRectsIdempotentHash(t *testing.T) {
	api := NewAPI()

	first, err := api.ClientRects(context.Background(), &fakeLayout{family: EngineFamilyBlink, doc: consistentDocument()})
	require.NoError(t, err)
	second, err := api.ClientRects(context.Background(), &fakeLayout{family: EngineFamilyBlink, doc: consistentDocument()})
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
}

func TestUnshiftFailed(t *testing.T) {
	assert.False(t, unshiftFailed(50, 51, 50))
	assert.True(t, unshiftFailed(50, 51, 52))
}

func TestEqualElementsMismatch(t *testing.T) {
	assert.False(t, equalElementsMismatch(Rect{Left: 10, Right: 20}, Rect{Left: 10, Right: 20}))
	assert.True(t, equalElementsMismatch(Rect{Left: 10, Right: 20}, Rect{Left: 10, Right: 21}))
}
