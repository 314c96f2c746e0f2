// Package pattern compiles raw search patterns into immutable literal matchers.
//
// A pattern is a plain byte string. A leading '^' anchors it to the start of
// a line, a trailing '$' anchors it to the end. Only one anchor is honoured:
// a pattern that starts with '^' is never checked for a trailing '$'.
package pattern

import (
	"bytes"
	"errors"

	"github.com/segmentio/asm/ascii"
)

// ErrEmptyPattern is returned when no pattern is supplied.
var ErrEmptyPattern = errors.New("pattern: empty pattern")

// Anchor selects where in a line the literal must occur.
type Anchor uint8

const (
	// Contains matches the literal at any offset of the line.
	Contains Anchor = iota
	// PrefixOnly matches the literal at the first byte of the line only.
	PrefixOnly
	// SuffixOnly matches the literal at the last bytes of the line only.
	SuffixOnly
)

func (a Anchor) String() string {
	switch a {
	case Contains:
		return "contains"
	case PrefixOnly:
		return "prefix"
	case SuffixOnly:
		return "suffix"
	default:
		return "unknown"
	}
}

// Compiled is an immutable compiled pattern.
// It is safe for concurrent use by any number of lanes.
type Compiled struct {
	lit    []byte
	anchor Anchor
	fold   bool
	invert bool
}

// Compile normalizes raw into a Compiled pattern.
//
// With caseInsensitive set the literal is folded to ASCII lower case; bytes
// outside A-Z are kept as is.
func Compile(raw string, caseInsensitive, invert bool) (Compiled, error) {
	if raw == "" {
		return Compiled{}, ErrEmptyPattern
	}

	anchor := Contains
	switch {
	case raw[0] == '^':
		anchor = PrefixOnly
		raw = raw[1:]
	case raw[len(raw)-1] == '$':
		anchor = SuffixOnly
		raw = raw[:len(raw)-1]
	}

	lit := []byte(raw)
	if caseInsensitive {
		for i, c := range lit {
			if 'A' <= c && c <= 'Z' {
				lit[i] = c + 'a' - 'A'
			}
		}
	}

	return Compiled{
		lit:    lit,
		anchor: anchor,
		fold:   caseInsensitive,
		invert: invert,
	}, nil
}

// Bytes returns the literal. Callers must not modify it.
func (c Compiled) Bytes() []byte { return c.lit }

// Len returns the literal length in bytes.
func (c Compiled) Len() int { return len(c.lit) }

// Anchor returns the anchor policy.
func (c Compiled) Anchor() Anchor { return c.anchor }

// Fold reports whether matching is ASCII case-insensitive.
func (c Compiled) Fold() bool { return c.fold }

// Invert reports whether the match result is inverted.
func (c Compiled) Invert() bool { return c.invert }

// MatchAt reports whether the literal occurs in data at off. The comparison
// never reads past len(data).
func (c Compiled) MatchAt(data []byte, off int) bool {
	n := len(c.lit)
	if off < 0 || off+n > len(data) {
		return false
	}
	if c.fold {
		return ascii.EqualFold(data[off:off+n], c.lit)
	}
	return bytes.Equal(data[off:off+n], c.lit)
}

// MatchLine evaluates the policy against a single line without its
// separator, including inversion. It is the sequential reference for what
// the lanes compute.
func (c Compiled) MatchLine(line []byte) bool {
	var found bool
	switch c.anchor {
	case PrefixOnly:
		found = c.MatchAt(line, 0)
	case SuffixOnly:
		found = c.MatchAt(line, len(line)-len(c.lit))
	default:
		found = c.index(line) >= 0
	}
	return found != c.invert
}

func (c Compiled) index(line []byte) int {
	if !c.fold {
		return bytes.Index(line, c.lit)
	}
	for off := 0; off+len(c.lit) <= len(line); off++ {
		if c.MatchAt(line, off) {
			return off
		}
	}
	return -1
}
