package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	defaultBitDepth = 16
	minBitDepth     = 8
	maxBitDepth     = 32
)

type config struct {
	bitDepth int
	typ      Type
	rng      *rand.Rand
}

// Option configures a Quantizer.
type Option func(*config) error

// WithBitDepth sets the target bit depth (8 to 32, default 16).
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bits)
		}

		cfg.bitDepth = bits

		return nil
	}
}

// WithType sets the dither noise PDF (default TypeTriangular).
func WithType(t Type) Option {
	return func(cfg *config) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type: %d", int(t))
		}

		cfg.typ = t

		return nil
	}
}

// WithSeed makes the dither noise reproducible.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

		return nil
	}
}

// Quantizer converts samples in [-1, 1] to integers of a fixed bit depth.
type Quantizer struct {
	bitDepth int
	typ      Type
	rng      *rand.Rand

	scale float64
	lo    int
	hi    int
}

// NewQuantizer creates a 16-bit TPDF quantizer unless options say otherwise.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := config{bitDepth: defaultBitDepth, typ: TypeTriangular}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	full := math.Exp2(float64(cfg.bitDepth - 1))

	return &Quantizer{
		bitDepth: cfg.bitDepth,
		typ:      cfg.typ,
		rng:      cfg.rng,
		scale:    full,
		lo:       -int(full),
		hi:       int(full) - 1,
	}, nil
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Type returns the dither noise PDF.
func (q *Quantizer) Type() Type { return q.typ }

// Quantize maps x to the nearest integer step after adding dither, clamped
// to the bit-depth range. Non-finite input yields 0.
func (q *Quantizer) Quantize(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}

	v := x*q.scale + q.noise()

	return max(q.lo, min(q.hi, int(math.Round(v))))
}

// QuantizeInto quantizes src into dst and returns the number written.
func (q *Quantizer) QuantizeInto(dst []int, src []float64) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = q.Quantize(src[i])
	}

	return n
}

func (q *Quantizer) noise() float64 {
	switch q.typ {
	case TypeRectangular:
		return q.rng.Float64() - 0.5
	case TypeTriangular:
		return q.rng.Float64() - q.rng.Float64()
	default:
		return 0
	}
}
