// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/cespare/xxhash/v2"
	"github.com/gowebpki/jcs"
)

// Hasher computes a stable content hash over a probe signature.
type Hasher interface {
	Hash(v interface{}) (string, error)
}

// canonicalHasher hashes the RFC 8785 canonical JSON form of a value, so
// map ordering and number formatting never change the digest.
type canonicalHasher struct{}

func (canonicalHasher) Hash(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(canonical)), nil
}

// miniHash is the 32-bit string hash the rotation reference table was
// curated with. It runs over the UTF-16 code units of the JSON text.
func miniHash(json string) string {
	h := int32(-2128831035) // 0x811c9dc5
	for _, unit := range utf16.Encode([]rune(json)) {
		h = 31*h + int32(unit)
	}
	return fmt.Sprintf("%08x", uint32(h))
}

// jsNumber formats a float the way a JSON serializer in a browser does.
func jsNumber(f float64) string {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return "null"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + exp
}
