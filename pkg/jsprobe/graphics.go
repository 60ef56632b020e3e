// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsprobe

import (
	"context"
	"errors"

	"github.com/pion/fingerprint"
	"github.com/pion/randutil"
)

// Graphics is a fingerprint.GraphicsSurface backed by detached canvases,
// or OffscreenCanvas where the page has it.
type Graphics struct {
	c  caller
	id string
}

// NewGraphics returns a Graphics for the page evaluated by eval.
func NewGraphics(eval Evaluator) (*Graphics, error) {
	suffix, err := randutil.GenerateCryptoRandomString(instanceIDLength, instanceIDRunes)
	if err != nil {
		return nil, err
	}
	return &Graphics{c: caller{eval: eval}, id: "fp-" + suffix}, nil
}

// Context implements fingerprint.GraphicsSurface.
func (g *Graphics) Context(ctx context.Context, level fingerprint.GraphicsLevel) (fingerprint.GraphicsContext, error) {
	var ok bool
	if err := g.c.call(ctx, &ok, "context", g.id, level.String()); err != nil {
		return nil, err
	}
	if !ok {
		return nil, fingerprint.ErrNoGraphicsContext
	}
	return &graphicsContext{c: g.c, id: g.id, level: level.String()}, nil
}

// Release drops the page references to every context handed out.
func (g *Graphics) Release(ctx context.Context) error {
	return g.c.call(ctx, nil, "releaseContexts", g.id)
}

type graphicsContext struct {
	c     caller
	id    string
	level string
}

func (g *graphicsContext) Parameter(ctx context.Context, name string) (fingerprint.ParameterValue, error) {
	var v fingerprint.ParameterValue
	err := g.c.call(ctx, &v, "parameter", g.id, g.level, name)
	if errors.Is(err, errUndefined) {
		return fingerprint.UndefinedValue(), fingerprint.ErrParameterUndefined
	}
	return v, err
}

func (g *graphicsContext) ExtensionParameter(ctx context.Context, extension, name string) (fingerprint.ParameterValue, error) {
	var v fingerprint.ParameterValue
	err := g.c.call(ctx, &v, "extensionParameter", g.id, g.level, extension, name)
	if errors.Is(err, errUnavailable) {
		return fingerprint.UndefinedValue(), fingerprint.ErrExtensionUnavailable
	}
	return v, err
}

func (g *graphicsContext) SupportedExtensions(ctx context.Context) ([]string, error) {
	var ext []string
	err := g.c.call(ctx, &ext, "supportedExtensions", g.id, g.level)
	return ext, err
}

func (g *graphicsContext) ShaderPrecision(
	ctx context.Context,
	shader fingerprint.ShaderType,
	precision fingerprint.PrecisionType,
) (fingerprint.ShaderPrecisionFormat, error) {
	var format fingerprint.ShaderPrecisionFormat
	err := g.c.call(ctx, &format, "shaderPrecision", g.id, g.level, shader.String(), precision.String())
	return format, err
}

func (g *graphicsContext) ContextAttributes(ctx context.Context) (fingerprint.ContextAttributes, error) {
	var attrs fingerprint.ContextAttributes
	err := g.c.call(ctx, &attrs, "contextAttributes", g.id, g.level)
	return attrs, err
}

func (g *graphicsContext) DrawingBufferSize(ctx context.Context) (int, int, error) {
	var size struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	err := g.c.call(ctx, &size, "drawingBufferSize", g.id, g.level)
	return size.Width, size.Height, err
}

func (g *graphicsContext) Draw(ctx context.Context, scene fingerprint.Scene) error {
	return g.c.call(ctx, nil, "draw", g.id, g.level, scene)
}

func (g *graphicsContext) ReadPixels(ctx context.Context, width, height int) ([]byte, error) {
	var values []int
	if err := g.c.call(ctx, &values, "readPixels", g.id, g.level, width, height); err != nil {
		return nil, err
	}

	pixels := make([]byte, len(values))
	for i, v := range values {
		pixels[i] = byte(v) //nolint:gosec // RGBA channels are 0..255
	}
	return pixels, nil
}

func (g *graphicsContext) ToDataURL(ctx context.Context) (string, error) {
	var url string
	err := g.c.call(ctx, &url, "toDataURL", g.id, g.level)
	return url, err
}
