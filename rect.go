// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import "strings"

// Rect is a geometry snapshot as delivered by the platform. Field order
// matches the order used when the rotation reference hashes were curated.
type Rect struct {
	Bottom float64 `json:"bottom"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Width  float64 `json:"width"`
	Top    float64 `json:"top"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Consistent reports whether the rect satisfies the layout identities
// right-left == width, bottom-top == height, right-x == width and
// bottom-y == height. Comparison is exact.
func (r Rect) Consistent() bool {
	return r.Right-r.Left == r.Width &&
		r.Bottom-r.Top == r.Height &&
		r.Right-r.X == r.Width &&
		r.Bottom-r.Y == r.Height
}

// IsZero reports whether every field is zero.
func (r Rect) IsZero() bool {
	for _, v := range r.fields() {
		if v != 0 {
			return false
		}
	}
	return true
}

func (r Rect) fields() [8]float64 {
	return [8]float64{r.Bottom, r.Height, r.Left, r.Right, r.Width, r.Top, r.X, r.Y}
}

var rectFieldNames = [8]string{"bottom", "height", "left", "right", "width", "top", "x", "y"}

// jsonText renders the rect the way a browser JSON serializer would.
func (r Rect) jsonText() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, v := range r.fields() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`"` + rectFieldNames[i] + `":`)
		b.WriteString(jsNumber(v))
	}
	b.WriteByte('}')
	return b.String()
}

// RectAPI is one of the platform geometry queries.
type RectAPI int

const (
	// ElementClientRects is the first rect of Element.getClientRects
	ElementClientRects RectAPI = iota
	// ElementBoundingClientRect is Element.getBoundingClientRect
	ElementBoundingClientRect
	// RangeClientRects is the first rect of Range.getClientRects on a range selecting the element
	RangeClientRects
	// RangeBoundingClientRect is Range.getBoundingClientRect on a range selecting the element
	RangeBoundingClientRect
)

func (r RectAPI) String() string {
	switch r {
	case ElementClientRects:
		return "Element.getClientRects"
	case ElementBoundingClientRect:
		return "Element.getBoundingClientRect"
	case RangeClientRects:
		return "Range.getClientRects"
	case RangeBoundingClientRect:
		return "Range.getBoundingClientRect"
	default:
		return unknownStr
	}
}

// ProbeTarget selects which scaffolding elements a measurement covers.
type ProbeTarget int

const (
	// ProbeElements are the twelve differently styled probe elements, in order.
	ProbeElements ProbeTarget = iota
	// ShiftProbe is the fourth probe element alone.
	ShiftProbe
	// KnownRotation is the 100x100 element rotated by 45 degrees.
	KnownRotation
	// Ghost is the zero sized, zero margin element.
	Ghost
	// Glyphs are the emoji glyph elements, in Emojis order.
	Glyphs
)

func (t ProbeTarget) String() string {
	switch t {
	case ProbeElements:
		return "probes"
	case ShiftProbe:
		return "shift"
	case KnownRotation:
		return "known"
	case Ghost:
		return "ghost"
	case Glyphs:
		return "glyphs"
	default:
		return unknownStr
	}
}

const unknownStr = "unknown"
