// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package fingerprint

// EngineFamily is the rendering engine lineage used to key reference tables.
type EngineFamily int

const (
	// EngineFamilyUnknown is the enum's zero-value
	EngineFamilyUnknown EngineFamily = iota

	// EngineFamilyBlink is the Chromium engine family.
	EngineFamilyBlink

	// EngineFamilyGecko is the Firefox engine family.
	EngineFamilyGecko

	// EngineFamilyWebKit is the Safari engine family.
	EngineFamilyWebKit
)

const (
	engineFamilyBlinkStr  = "blink"
	engineFamilyGeckoStr  = "gecko"
	engineFamilyWebKitStr = "webkit"
)

// NewEngineFamily takes a string and converts it to EngineFamily
func NewEngineFamily(raw string) EngineFamily {
	switch raw {
	case engineFamilyBlinkStr:
		return EngineFamilyBlink
	case engineFamilyGeckoStr:
		return EngineFamilyGecko
	case engineFamilyWebKitStr:
		return EngineFamilyWebKit
	default:
		return EngineFamilyUnknown
	}
}

func (f EngineFamily) String() string {
	switch f {
	case EngineFamilyBlink:
		return engineFamilyBlinkStr
	case EngineFamilyGecko:
		return engineFamilyGeckoStr
	case EngineFamilyWebKit:
		return engineFamilyWebKitStr
	default:
		return unknownStr
	}
}

// Accepted rotation hashes of the 100x100 element rotated by 45 degrees.
// Curated offline, never mutated.
var (
	blinkRotationHashes = map[string]struct{}{
		"9d9215cc": {}, // 100, etc
		"47ded322": {}, // 33, 67
		"d0eceaa8": {}, // 90
	}
	geckoRotationHashes = map[string]struct{}{
		"e38453f0": {}, // 100, etc
	}
)

// RotationVerdict is the outcome of looking up a rotation hash.
type RotationVerdict int

const (
	// RotationCannotVerify means no reference table exists for the family.
	RotationCannotVerify RotationVerdict = iota
	// RotationRecognized means the hash is in the family's table.
	RotationRecognized
	// RotationUnrecognized means the family has a table and the hash is absent from it.
	RotationUnrecognized
)

func (f EngineFamily) rotationHashes() (map[string]struct{}, bool) {
	switch f {
	case EngineFamilyBlink:
		return blinkRotationHashes, true
	case EngineFamilyGecko:
		return geckoRotationHashes, true
	default:
		return nil, false
	}
}

// VerifyRotation looks a rotation hash up in the family's allow-list.
func (f EngineFamily) VerifyRotation(hash string) RotationVerdict {
	accepted, ok := f.rotationHashes()
	if !ok {
		return RotationCannotVerify
	}
	if _, ok := accepted[hash]; ok {
		return RotationRecognized
	}
	return RotationUnrecognized
}

// RotationHash computes the reference hash of a rect.
func RotationHash(r Rect) string {
	return miniHash(r.jsonText())
}
