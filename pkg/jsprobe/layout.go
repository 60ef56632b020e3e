// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsprobe

import (
	"context"
	"errors"
	"fmt"

	"github.com/pion/fingerprint"
	"github.com/pion/randutil"
)

const (
	instanceIDRunes  = "abcdefghijklmnopqrstuvwxyz0123456789"
	instanceIDLength = 12
)

var errNoBox = errors.New("element produced no box")

// Layout is a fingerprint.LayoutEngine backed by the page document.
type Layout struct {
	c      caller
	family fingerprint.EngineFamily
}

// NewLayout detects the rendering engine family of the page and returns a
// Layout for it.
func NewLayout(ctx context.Context, eval Evaluator) (*Layout, error) {
	c := caller{eval: eval}

	var family string
	if err := c.call(ctx, &family, "engineFamily"); err != nil {
		return nil, err
	}

	return &Layout{c: c, family: fingerprint.NewEngineFamily(family)}, nil
}

// EngineFamily implements fingerprint.LayoutEngine.
func (l *Layout) EngineFamily() fingerprint.EngineFamily {
	return l.family
}

// Mount implements fingerprint.LayoutEngine. Every mount uses a fresh
// element id so that concurrent runs do not collide.
func (l *Layout) Mount(ctx context.Context) (fingerprint.ProbeDocument, error) {
	suffix, err := randutil.GenerateCryptoRandomString(instanceIDLength, instanceIDRunes)
	if err != nil {
		return nil, err
	}
	id := "fp-" + suffix + "-client-rects-div"

	if err = l.c.call(ctx, nil, "mount", id, fingerprint.Emojis, fingerprint.EmojiFontFamily); err != nil {
		return nil, err
	}
	return &document{c: l.c, id: id}, nil
}

type document struct {
	c  caller
	id string
}

func (d *document) Measure(ctx context.Context, api fingerprint.RectAPI, target fingerprint.ProbeTarget) ([]fingerprint.Rect, error) {
	var rects []*fingerprint.Rect
	if err := d.c.call(ctx, &rects, "measure", d.id, api.String(), target.String()); err != nil {
		return nil, err
	}

	// A missing box is an error, never a zero rect.
	out := make([]fingerprint.Rect, 0, len(rects))
	for i, r := range rects {
		if r == nil {
			return nil, fmt.Errorf("%w: %s %s #%d", errNoBox, api, target, i+1)
		}
		out = append(out, *r)
	}
	return out, nil
}

func (d *document) SetShifted(ctx context.Context, shifted bool) error {
	return d.c.call(ctx, nil, "shift", d.id, shifted)
}

func (d *document) Remove(ctx context.Context) error {
	return d.c.call(ctx, nil, "remove", d.id)
}
