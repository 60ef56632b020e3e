// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"context"

	"github.com/pion/fingerprint/pkg/null"
	"github.com/pion/logging"
)

const (
	rectsTest = "rects"

	// All geometry lies are filed under this API.
	rectsLieAPI = "Element.getClientRects"

	reasonFailedUnshift  = "failed unshift calculation"
	reasonFailedMath     = "failed math calculation"
	reasonEqualElements  = "equal elements mismatch"
	reasonUnknownRotate  = "unknown rotate dimensions"
	reasonUnknownGhost   = "unknown ghost dimensions"
	fromCodePointLieAPI  = "String.fromCodePoint"
	probeRectCount       = 12
	shiftProbeIndex      = 3
	equalProbeFirstIndex = 10
	equalProbeLastIndex  = 11
)

// LayoutEngine is a layout capability able to host the probe scaffolding.
type LayoutEngine interface {
	// EngineFamily reports the rendering engine lineage of the host.
	EngineFamily() EngineFamily
	// Mount creates the probe element tree.
	Mount(ctx context.Context) (ProbeDocument, error)
}

// ProbeDocument is a mounted probe element tree.
type ProbeDocument interface {
	// Measure returns one rect per element of the target, in order.
	Measure(ctx context.Context, api RectAPI, target ProbeTarget) ([]Rect, error)
	// SetShifted forces the shift probe one pixel off its position, or reverts it.
	SetShifted(ctx context.Context, shifted bool) error
	// Remove deletes the probe element tree from the host.
	Remove(ctx context.Context) error
}

// ClientRects is the geometry probe signature.
type ClientRects struct {
	ElementClientRects        []Rect       `json:"elementClientRects"`
	ElementBoundingClientRect []Rect       `json:"elementBoundingClientRect"`
	RangeClientRects          []Rect       `json:"rangeClientRects"`
	RangeBoundingClientRect   []Rect       `json:"rangeBoundingClientRect"`
	EmojiSet                  []string     `json:"emojiSet"`
	DOMRectSystemSum          null.Float64 `json:"domrectSystemSum"`
	Lied                      bool         `json:"lied"`
	Hash                      string       `json:"$hash,omitempty"`
}

// ClientRects runs the geometry probe against layout. It returns nil and
// a *ProbeError when the probe produced no data.
func (a *API) ClientRects(ctx context.Context, layout LayoutEngine) (*ClientRects, error) {
	var result *ClientRects
	err := a.runProbe(rectsTest, func(y yielder) error {
		if layout == nil {
			return ErrUnsupported
		}
		r, err := a.clientRects(ctx, y, layout)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	result.Hash = a.hash(result)
	return result, nil
}

func (a *API) clientRects(ctx context.Context, y yielder, layout LayoutEngine) (*ClientRects, error) {
	log := a.newLogger("domrect")

	if err := y.yield(ctx); err != nil {
		return nil, err
	}

	lied := anyIntercepted(a.report,
		ElementClientRects.String(),
		ElementBoundingClientRect.String(),
		RangeClientRects.String(),
		RangeBoundingClientRect.String(),
		fromCodePointLieAPI,
	)

	doc, err := layout.Mount(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if removeErr := doc.Remove(context.WithoutCancel(ctx)); removeErr != nil {
			log.Warnf("failed to remove probe elements: %v", removeErr)
		}
	}()

	if err = y.yield(ctx); err != nil {
		return nil, err
	}

	result := &ClientRects{}
	result.EmojiSet, result.DOMRectSystemSum = a.measureGlyphs(ctx, doc, log)

	if result.ElementClientRects, err = doc.Measure(ctx, ElementClientRects, ProbeElements); err != nil {
		return nil, err
	}
	if len(result.ElementClientRects) < probeRectCount {
		return nil, errTooFewProbeRects
	}
	result.ElementBoundingClientRect = measureOptional(ctx, doc, ElementBoundingClientRect, log)
	result.RangeClientRects = measureOptional(ctx, doc, RangeClientRects, log)
	result.RangeBoundingClientRect = measureOptional(ctx, doc, RangeBoundingClientRect, log)

	unshiftLie, err := shiftProbeLied(ctx, doc, result.ElementClientRects[shiftProbeIndex].Top)
	if err != nil {
		return nil, err
	}
	if unshiftLie {
		lied = true
		a.lies.RecordLie(rectsLieAPI, reasonFailedUnshift)
	}

	if !rectsConsistent(result.ElementClientRects) {
		lied = true
		a.lies.RecordLie(rectsLieAPI, reasonFailedMath)
	}

	first, last := result.ElementClientRects[equalProbeFirstIndex], result.ElementClientRects[equalProbeLastIndex]
	if equalElementsMismatch(first, last) {
		lied = true
		a.lies.RecordLie(rectsLieAPI, reasonEqualElements)
	}

	known, err := measureOne(ctx, doc, KnownRotation, errNoKnownRect)
	if err != nil {
		return nil, err
	}
	family := layout.EngineFamily()
	if a.settingEngine.engineFamily != nil {
		family = *a.settingEngine.engineFamily
	}
	switch family.VerifyRotation(RotationHash(known)) {
	case RotationUnrecognized:
		lied = true
		a.lies.RecordLie(rectsLieAPI, reasonUnknownRotate)
	case RotationCannotVerify:
		log.Debugf("no rotation reference for engine family %s", family)
	case RotationRecognized:
	}

	ghost, err := measureOne(ctx, doc, Ghost, errNoGhostRect)
	if err != nil {
		return nil, err
	}
	if !ghost.IsZero() {
		lied = true
		a.lies.RecordLie(rectsLieAPI, reasonUnknownGhost)
	}

	result.Lied = lied
	return result, nil
}

func (a *API) measureGlyphs(ctx context.Context, doc ProbeDocument, log logging.LeveledLogger) ([]string, null.Float64) {
	rects, err := doc.Measure(ctx, bestRectAPI(a.report), Glyphs)
	if err != nil {
		log.Warnf("failed to measure glyphs: %v", err)
		return nil, null.Float64{}
	}
	set, sum := glyphSignature(Emojis, rects)
	return set, null.NewFloat64(sum)
}

// bestRectAPI picks the first geometry query the report has not flagged.
func bestRectAPI(report InterceptionReport) RectAPI {
	for _, api := range []RectAPI{ElementClientRects, ElementBoundingClientRect, RangeClientRects} {
		if !report.Intercepted(api.String()) {
			return api
		}
	}
	return RangeBoundingClientRect
}

func measureOptional(ctx context.Context, doc ProbeDocument, api RectAPI, log logging.LeveledLogger) []Rect {
	rects, err := doc.Measure(ctx, api, ProbeElements)
	if err != nil {
		log.Warnf("failed to measure %s: %v", api, err)
		return nil
	}
	return rects
}

func measureOne(ctx context.Context, doc ProbeDocument, target ProbeTarget, missing error) (Rect, error) {
	rects, err := doc.Measure(ctx, ElementClientRects, target)
	if err != nil {
		return Rect{}, err
	}
	if len(rects) == 0 {
		return Rect{}, missing
	}
	return rects[0], nil
}

// shiftProbeLied forces the shift probe off by a pixel, reverts it and
// checks that reverting restored the exact original delta.
func shiftProbeLied(ctx context.Context, doc ProbeDocument, initialTop float64) (bool, error) {
	if err := doc.SetShifted(ctx, true); err != nil {
		return false, err
	}
	shifted, err := measureOne(ctx, doc, ShiftProbe, errNoShiftProbeRect)
	if err != nil {
		return false, err
	}
	if err = doc.SetShifted(ctx, false); err != nil {
		return false, err
	}
	unshifted, err := measureOne(ctx, doc, ShiftProbe, errNoShiftProbeRect)
	if err != nil {
		return false, err
	}
	return unshiftFailed(initialTop, shifted.Top, unshifted.Top), nil
}

func unshiftFailed(initialTop, shiftedTop, unshiftedTop float64) bool {
	return initialTop-shiftedTop != unshiftedTop-shiftedTop
}

func rectsConsistent(rects []Rect) bool {
	for _, r := range rects {
		if !r.Consistent() {
			return false
		}
	}
	return true
}

func equalElementsMismatch(a, b Rect) bool {
	return a.Right != b.Right || a.Left != b.Left
}
