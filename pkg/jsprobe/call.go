// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsprobe

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
)

//go:embed runtime.js
var runtimeJS string

var (
	errUndefined   = errors.New("page returned undefined")
	errUnavailable = errors.New("page reported extension unavailable")
	errScript      = errors.New("page script failed")
)

type reply struct {
	OK          bool            `json:"ok"`
	Undefined   bool            `json:"undefined"`
	Unavailable bool            `json:"unavailable"`
	Error       string          `json:"error"`
	Value       json.RawMessage `json:"value"`
}

// caller invokes the page-side probe runtime, installing it on first use.
type caller struct {
	eval Evaluator
}

func (c caller) call(ctx context.Context, out interface{}, fn string, args ...interface{}) error {
	if args == nil {
		args = []interface{}{}
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return err
	}

	expression := fmt.Sprintf("(window.__fingerprintProbe || %s).call(%q, ...%s)", runtimeJS, fn, encoded)

	var r reply
	if err = c.eval.Evaluate(ctx, expression, &r); err != nil {
		return err
	}

	switch {
	case r.Undefined:
		return errUndefined
	case r.Unavailable:
		return errUnavailable
	case !r.OK:
		return fmt.Errorf("%w: %s: %s", errScript, fn, r.Error)
	case out == nil:
		return nil
	}
	return json.Unmarshal(r.Value, out)
}
