// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

import (
	"regexp"
	"strings"

	"github.com/pion/ice/v4"
)

var foundationRegexp = regexp.MustCompile(`^candidate:(\w+)`)

// Foundations that identify well-known local interfaces.
var knownInterfaces = map[string]string{
	"842163049":  "public interface",
	"2268587630": "WireGuard",
}

// ParseFoundation returns the foundation of a candidate attribute, or "".
func ParseFoundation(candidate string) string {
	m := foundationRegexp.FindStringSubmatch(candidate)
	if m == nil {
		return ""
	}
	return m[1]
}

// InterfaceLabel maps a well-known foundation to a readable interface name.
// Other foundations are returned unchanged.
func InterfaceLabel(foundation string) string {
	if label, ok := knownInterfaces[foundation]; ok {
		return label
	}
	return foundation
}

// describeCandidate returns the candidate type and transport protocol of a
// candidate attribute. Both are empty when the attribute does not parse.
func describeCandidate(candidate string) (typ, protocol string) {
	c, err := ice.UnmarshalCandidate(strings.TrimPrefix(candidate, "candidate:"))
	if err != nil {
		return "", ""
	}
	return c.Type().String(), c.NetworkType().NetworkShort()
}
