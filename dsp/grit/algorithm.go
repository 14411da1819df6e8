package grit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownAlgorithm is returned by ParseAlgorithm for unrecognized names.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// Algorithm selects the transform applied to a block.
type Algorithm int

const (
	// AlgorithmClip drives the input and hard clips it to [-1, 1].
	AlgorithmClip Algorithm = iota
	// AlgorithmShape applies the rational soft shaper.
	AlgorithmShape
	// AlgorithmMaximizer applies the envelope-following maximizer.
	AlgorithmMaximizer
)

// Algorithms lists the valid algorithms in selector order.
var Algorithms = []Algorithm{AlgorithmClip, AlgorithmShape, AlgorithmMaximizer}

var algorithmNames = [...]string{"clip", "shape", "maximizer"}

var algorithmDisplayNames = [...]string{
	"Clip",
	"SuperDirt Shape",
	"Barry's Satan Maximizer",
}

// Valid reports whether a is one of the three known algorithms.
func (a Algorithm) Valid() bool {
	return a >= AlgorithmClip && a <= AlgorithmMaximizer
}

// String returns the short lowercase name used on the command line.
func (a Algorithm) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}

	return algorithmNames[a]
}

// DisplayName returns the host-facing name, or "???" when out of range.
func (a Algorithm) DisplayName() string {
	if !a.Valid() {
		return "???"
	}

	return algorithmDisplayNames[a]
}

// ParseAlgorithm accepts a short name, a display name (case-insensitive) or
// the selector index.
func ParseAlgorithm(s string) (Algorithm, error) {
	name := strings.TrimSpace(s)

	if n, err := strconv.Atoi(name); err == nil {
		a := Algorithm(n)
		if !a.Valid() {
			return 0, fmt.Errorf("%w: index %d", ErrUnknownAlgorithm, n)
		}

		return a, nil
	}

	for _, a := range Algorithms {
		if strings.EqualFold(name, algorithmNames[a]) || strings.EqualFold(name, algorithmDisplayNames[a]) {
			return a, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}
