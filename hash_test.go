// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalHasher(t *testing.T) {
	h := canonicalHasher{}

	a, err := h.Hash(map[string]interface{}{"b": 1, "a": []string{"x", "y"}})
	assert.NoError(t, err)
	assert.Len(t, a, 16)

	b, err := h.Hash(struct {
		A []string `json:"a"`
		B float64  `json:"b"`
	}{A: []string{"x", "y"}, B: 1.0})
	assert.NoError(t, err)
	assert.Equal(t, a, b, "key order and number form must not change the digest")

	again, err := h.Hash(map[string]interface{}{"a": []string{"x", "y"}, "b": 1})
	assert.NoError(t, err)
	assert.Equal(t, a, again)

	other, err := h.Hash(map[string]interface{}{"b": 1, "a": []string{"y", "x"}})
	assert.NoError(t, err)
	assert.NotEqual(t, a, other)

	_, err = h.Hash(func() {})
	assert.Error(t, err)
}

func TestMiniHash(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"", "811c9dc5"},
		{"a", "a2771b3c"},
		{`{"x":1}`, "fb7ee130"},
		{"\U0001F600", "ac874de8"},
	}

	for i, testCase := range testCases {
		assert.Equal(t, testCase.expected, miniHash(testCase.in), "testCase: %d %v", i, testCase)
	}
}
