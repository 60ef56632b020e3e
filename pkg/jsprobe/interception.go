// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsprobe

import (
	"context"

	"github.com/pion/fingerprint"
)

// ProbedAPIs are the page APIs whose interception the probes consult.
var ProbedAPIs = []string{ // nolint:gochecknoglobals
	"Element.getClientRects",
	"Element.getBoundingClientRect",
	"Range.getClientRects",
	"Range.getBoundingClientRect",
	"String.fromCodePoint",
	"HTMLCanvasElement.toDataURL",
	"HTMLCanvasElement.getContext",
	"WebGLRenderingContext.getParameter",
	"WebGL2RenderingContext.getParameter",
	"WebGLRenderingContext.getExtension",
	"WebGL2RenderingContext.getExtension",
	"WebGLRenderingContext.getSupportedExtensions",
	"WebGL2RenderingContext.getSupportedExtensions",
}

// DetectInterception reports which of apis are no longer native functions
// in the page. It is a shallow check: a wrapper that also fakes
// Function.prototype.toString goes unnoticed.
func DetectInterception(ctx context.Context, eval Evaluator, apis ...string) (fingerprint.InterceptedAPIs, error) {
	if len(apis) == 0 {
		apis = ProbedAPIs
	}

	var intercepted []string
	if err := (caller{eval: eval}).call(ctx, &intercepted, "intercepted", apis); err != nil {
		return nil, err
	}
	return fingerprint.NewInterceptedAPIs(intercepted...), nil
}
