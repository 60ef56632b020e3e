// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package null is used to represent probe fields that may be undefined.
// A field whose read failed is kept invalid and marshals to JSON null, so
// a missing value is never confused with a zero measurement.
package null

import "encoding/json"

var jsonNull = []byte("null")

// Float64 is used to represent a float64 that may be null
type Float64 struct {
	Valid   bool
	Float64 float64
}

// NewFloat64 turns a float64 into a valid null.Float64
func NewFloat64(value float64) Float64 {
	return Float64{Valid: true, Float64: value}
}

// MarshalJSON encodes an invalid Float64 as null
func (f Float64) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return jsonNull, nil
	}
	return json.Marshal(f.Float64)
}

// UnmarshalJSON decodes null into an invalid Float64
func (f *Float64) UnmarshalJSON(data []byte) error {
	if string(data) == string(jsonNull) {
		*f = Float64{}
		return nil
	}
	if err := json.Unmarshal(data, &f.Float64); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

// String is used to represent a string that may be null
type String struct {
	Valid  bool
	String string
}

// NewString turns a string into a valid null.String
func NewString(value string) String {
	return String{Valid: true, String: value}
}

// MarshalJSON encodes an invalid String as null
func (s String) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return jsonNull, nil
	}
	return json.Marshal(s.String)
}

// UnmarshalJSON decodes null into an invalid String
func (s *String) UnmarshalJSON(data []byte) error {
	if string(data) == string(jsonNull) {
		*s = String{}
		return nil
	}
	if err := json.Unmarshal(data, &s.String); err != nil {
		return err
	}
	s.Valid = true
	return nil
}
