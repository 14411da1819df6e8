// Package delay provides fixed-capacity delay lines for real-time processing.
package delay

import (
	"errors"
	"fmt"
)

// ErrCapacity is returned when a ring capacity is not a positive power of two.
var ErrCapacity = errors.New("delay capacity must be a positive power of two")

// Ring is a circular delay line with power-of-two capacity and mask indexing.
// Its storage is allocated once by New and never resized.
type Ring struct {
	buffer   []float64
	mask     int
	writePos int
}

// New returns a ring of the given capacity.
func New(size int) (*Ring, error) {
	if !IsPow2(size) {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, size)
	}

	return &Ring{buffer: make([]float64, size), mask: size - 1}, nil
}

// Len returns the ring capacity.
func (r *Ring) Len() int {
	return len(r.buffer)
}

// Pos returns the index the next Write will store to, always in [0, Len()).
func (r *Ring) Pos() int {
	return r.writePos
}

// Write stores one sample at the write position and advances it by one.
func (r *Ring) Write(sample float64) {
	r.buffer[r.writePos] = sample
	r.writePos = (r.writePos + 1) & r.mask
}

// Read returns the sample written delay writes before the most recent one;
// Read(0) is the last written sample. Delays of Len() or more wrap modulo the
// capacity and alias onto newer samples.
func (r *Ring) Read(delay int) float64 {
	// Signed index: the mask yields the true modulo for negative values too.
	return r.buffer[(r.writePos-1-delay)&r.mask]
}

// Reset clears the stored samples and rewinds the write position.
func (r *Ring) Reset() {
	for i := range r.buffer {
		r.buffer[i] = 0
	}

	r.writePos = 0
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPow2 returns the smallest power of two >= n (1 for n <= 1).
func NextPow2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
