// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package jsprobe implements the fingerprint capabilities on top of a live
// browser page, driven either over the Chrome DevTools Protocol or WebDriver.
package jsprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/pion/randutil"
	"github.com/sclevine/agouti"
)

const (
	pendingKeyPrefix    = "__fingerprintPending_"
	pendingKeyRunes     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	pendingKeyLength    = 16
	defaultPollInterval = 10 * time.Millisecond
)

var errEvaluation = errors.New("script evaluation failed")

// Evaluator evaluates a JavaScript expression in a page. A promise result
// is awaited and the settled value is decoded from JSON into out, unless
// out is nil.
type Evaluator interface {
	Evaluate(ctx context.Context, expression string, out interface{}) error
}

// CDPEvaluator evaluates over the Chrome DevTools Protocol.
type CDPEvaluator struct {
	browserCtx context.Context
}

// NewCDPEvaluator returns an Evaluator for the chromedp context browserCtx.
func NewCDPEvaluator(browserCtx context.Context) *CDPEvaluator {
	return &CDPEvaluator{browserCtx: browserCtx}
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// Evaluate implements Evaluator. The evaluation is cancelled when either
// ctx or the browser context ends.
func (e *CDPEvaluator) Evaluate(ctx context.Context, expression string, out interface{}) error {
	runCtx, cancel := context.WithCancel(e.browserCtx)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var raw []byte
	if err := chromedp.Run(runCtx, chromedp.Evaluate(expression, &raw, chromedp.EvalAsValue, awaitPromise)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", errEvaluation, err)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// WebDriverEvaluator evaluates through a WebDriver session. WebDriver
// scripts cannot return a promise, so the settled value is parked on the
// window and polled.
type WebDriverEvaluator struct {
	page *agouti.Page
	poll time.Duration
}

// NewWebDriverEvaluator returns an Evaluator for page.
func NewWebDriverEvaluator(page *agouti.Page) *WebDriverEvaluator {
	return &WebDriverEvaluator{page: page, poll: defaultPollInterval}
}

type pendingResult struct {
	Done  bool   `json:"done"`
	Value string `json:"value"`
	Error string `json:"error"`
}

// Evaluate implements Evaluator.
func (e *WebDriverEvaluator) Evaluate(ctx context.Context, expression string, out interface{}) error {
	suffix, err := randutil.GenerateCryptoRandomString(pendingKeyLength, pendingKeyRunes)
	if err != nil {
		return err
	}
	key := pendingKeyPrefix + suffix

	start := fmt.Sprintf(`
		window[%[1]q] = { done: false };
		Promise.resolve().then(() => %[2]s).then(
			(v) => { window[%[1]q] = { done: true, value: JSON.stringify(v === undefined ? null : v) } },
			(e) => { window[%[1]q] = { done: true, error: String(e) } },
		);
		return null;`, key, expression)
	if err = e.page.RunScript(start, nil, nil); err != nil {
		return fmt.Errorf("%w: %v", errEvaluation, err)
	}

	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()

	for {
		var result pendingResult
		if err = e.page.RunScript(fmt.Sprintf(`return window[%q] || { done: false };`, key), nil, &result); err != nil {
			return fmt.Errorf("%w: %v", errEvaluation, err)
		}

		if result.Done {
			if err = e.page.RunScript(fmt.Sprintf(`delete window[%q]; return null;`, key), nil, nil); err != nil {
				return fmt.Errorf("%w: %v", errEvaluation, err)
			}
			if result.Error != "" {
				return fmt.Errorf("%w: %s", errEvaluation, result.Error)
			}
			if out == nil {
				return nil
			}
			return json.Unmarshal([]byte(result.Value), out)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
