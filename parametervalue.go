// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// ParameterKind tags the variant held by a ParameterValue.
type ParameterKind int

const (
	// ParameterUndefined marks a value that could not be read.
	ParameterUndefined ParameterKind = iota
	// ParameterNull is an explicit null answer from the context.
	ParameterNull
	// ParameterNumber is a single number.
	ParameterNumber
	// ParameterString is a string.
	ParameterString
	// ParameterBool is a boolean.
	ParameterBool
	// ParameterSequence is a numeric sequence, e.g. a typed array.
	ParameterSequence
)

var errUnsupportedParameterJSON = errors.New("unsupported parameter value")

// ParameterValue is a single graphics context answer.
type ParameterValue struct {
	Kind     ParameterKind
	Number   float64
	Text     string
	Bool     bool
	Sequence []float64
}

// UndefinedValue returns a value for a field whose read failed.
func UndefinedValue() ParameterValue {
	return ParameterValue{Kind: ParameterUndefined}
}

// NullValue returns an explicit null.
func NullValue() ParameterValue {
	return ParameterValue{Kind: ParameterNull}
}

// NumberValue wraps a number.
func NumberValue(f float64) ParameterValue {
	return ParameterValue{Kind: ParameterNumber, Number: f}
}

// StringValue wraps a string.
func StringValue(s string) ParameterValue {
	return ParameterValue{Kind: ParameterString, Text: s}
}

// BoolValue wraps a boolean.
func BoolValue(b bool) ParameterValue {
	return ParameterValue{Kind: ParameterBool, Bool: b}
}

// SequenceValue wraps a numeric sequence.
func SequenceValue(values ...float64) ParameterValue {
	return ParameterValue{Kind: ParameterSequence, Sequence: append([]float64{}, values...)}
}

// Defined reports whether the value was read.
func (v ParameterValue) Defined() bool {
	return v.Kind != ParameterUndefined
}

// Truthy follows the truthiness rules of the page the value came from.
func (v ParameterValue) Truthy() bool {
	switch v.Kind {
	case ParameterNumber:
		return v.Number != 0 && !math.IsNaN(v.Number)
	case ParameterString:
		return v.Text != ""
	case ParameterBool:
		return v.Bool
	case ParameterSequence:
		return true
	default:
		return false
	}
}

// String returns the string form used for mirrored comparisons.
func (v ParameterValue) String() string {
	switch v.Kind {
	case ParameterNull:
		return "null"
	case ParameterNumber:
		return jsString(v.Number)
	case ParameterString:
		return v.Text
	case ParameterBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ParameterSequence:
		parts := make([]string, len(v.Sequence))
		for i, f := range v.Sequence {
			parts[i] = jsString(f)
		}
		return strings.Join(parts, ",")
	default:
		return "undefined"
	}
}

func jsString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return jsNumber(f)
}

// MarshalJSON encodes undefined and null as JSON null.
func (v ParameterValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ParameterNumber:
		return []byte(jsNumber(v.Number)), nil
	case ParameterString:
		return json.Marshal(v.Text)
	case ParameterBool:
		return json.Marshal(v.Bool)
	case ParameterSequence:
		parts := make([]string, len(v.Sequence))
		for i, f := range v.Sequence {
			parts[i] = jsNumber(f)
		}
		return []byte("[" + strings.Join(parts, ",") + "]"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes a value produced by a page-side serializer.
func (v *ParameterValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case nil:
		*v = NullValue()
	case float64:
		*v = NumberValue(t)
	case string:
		*v = StringValue(t)
	case bool:
		*v = BoolValue(t)
	case []interface{}:
		seq := make([]float64, len(t))
		for i, e := range t {
			f, ok := e.(float64)
			if !ok {
				f = math.NaN()
			}
			seq[i] = f
		}
		*v = SequenceValue(seq...)
	default:
		return errUnsupportedParameterJSON
	}
	return nil
}
