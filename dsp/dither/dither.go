// Package dither quantizes normalized samples to signed integer PCM with
// optional dither noise.
package dither

import (
	"fmt"
	"strings"
)

// Type selects the probability distribution used for dither noise.
type Type int

const (
	// TypeNone rounds to the nearest step without noise.
	TypeNone Type = iota
	// TypeRectangular adds uniform noise of one step peak-to-peak.
	TypeRectangular
	// TypeTriangular adds triangular (TPDF) noise, the usual mastering choice.
	TypeTriangular

	typeCount
)

var typeNames = [typeCount]string{"none", "rectangular", "triangular"}

func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known dither type.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

// ParseType accepts the String names plus "tpdf" and "rpdf".
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "off":
		return TypeNone, nil
	case "rectangular", "rpdf":
		return TypeRectangular, nil
	case "triangular", "tpdf":
		return TypeTriangular, nil
	default:
		return 0, fmt.Errorf("dither: unknown type %q", name)
	}
}
