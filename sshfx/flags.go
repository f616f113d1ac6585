package sshfx

import (
	"fmt"
)

// Open-flag bits (spec §6).
const (
	FlagRead   uint32 = 1
	FlagWrite  uint32 = 2
	FlagAppend uint32 = 4
	FlagCreate uint32 = 8
	FlagTrunc  uint32 = 16
	FlagExcl   uint32 = 32

	flagAll = FlagRead | FlagWrite | FlagAppend | FlagCreate | FlagTrunc | FlagExcl
)

// canonicalFlagStrings maps a normalized bitmask to its canonical
// symbolic string, per spec §4.2's table.
var canonicalFlagStrings = map[uint32]string{
	1:  "r",
	2:  "r+",
	3:  "r+",
	10: "wx,r+",
	11: "wx+,r+",
	14: "a",
	15: "a+",
	26: "w",
	27: "w+",
	42: "wx",
	43: "wx+",
	46: "ax",
	47: "ax+",
}

// flagStringBits is the inverse of canonicalFlagStrings: each canonical
// label (including the two-word, comma-joined labels spec §4.2 uses for
// bits 10 and 11) maps directly back to its bitmask. Treating a
// comma-joined label as one indivisible string, rather than splitting
// and OR-ing its words as independent flags, is required for the
// round-trip property of spec §8: "wx" alone denormalizes to 42 but the
// label "wx,r+" denormalizes to 10 — the words are not independently
// composable.
var flagStringBits = func() map[string]uint32 {
	m := make(map[string]uint32, len(canonicalFlagStrings))
	for bits, s := range canonicalFlagStrings {
		if prev, ok := m[s]; !ok || bits < prev {
			m[s] = bits
		}
	}
	return m
}()

// ToNumber accepts either a symbolic mode spec tabulated in spec §4.2
// or a decimal string of a precomputed bitmask, and returns the
// corresponding masked open-flag bitmask.
func ToNumber(spec string) (uint32, error) {
	if bits, ok := flagStringBits[spec]; ok {
		return bits & flagAll, nil
	}
	var n uint32
	if _, err := fmt.Sscanf(spec, "%d", &n); err != nil {
		return 0, fmt.Errorf("sshfx: unrecognized open-flag spec %q", spec)
	}
	return n & flagAll, nil
}

// normalize applies spec §4.2's normalization rules in order.
func normalize(bits uint32) uint32 {
	if bits&FlagExcl != 0 {
		bits &^= FlagTrunc
	}
	if bits&FlagTrunc != 0 {
		bits &^= FlagAppend
	}
	if bits&(FlagRead|FlagWrite) == 0 {
		bits |= FlagRead
	}
	if bits&FlagCreate == 0 {
		bits &= FlagRead | FlagWrite
	} else {
		bits |= FlagWrite
	}
	return bits
}

// FromNumber normalizes bits per spec §4.2 and returns the canonical
// symbolic string describing the equivalent mode. Every normalized
// bitmask is present in canonicalFlagStrings; encountering one that
// isn't is a codec bug (spec §4.2).
func FromNumber(bits uint32) (string, error) {
	n := normalize(bits)
	s, ok := canonicalFlagStrings[n]
	if !ok {
		return "", fmt.Errorf("sshfx: normalized open-flags %#x has no canonical string (codec bug)", n)
	}
	return s, nil
}
