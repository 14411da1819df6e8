package effects

// ShapeEpsilon keeps the shape amount strictly below 1, where the shaper
// coefficient has a pole.
const ShapeEpsilon = 4e-8

// MaxShapeAmount is the largest shape amount the shaper will use.
const MaxShapeAmount = 1 - ShapeEpsilon

// ShapeCoefficient clamps amount to [0, MaxShapeAmount] and returns the
// curve coefficient k = 2s / (1 - s).
func ShapeCoefficient(amount float64) float64 {
	s := amount
	if !(s > 0) {
		// Covers NaN as well as non-positive amounts.
		s = 0
	}

	if s > MaxShapeAmount {
		s = MaxShapeAmount
	}

	return 2 * s / (1 - s)
}

// SoftShape applies the rational shaper y = (1+k)x / (1+k|x|) with k derived
// from amount. Amount 0 is the identity; the curve is odd-symmetric.
func SoftShape(x, amount float64) float64 {
	return shapeWithCoefficient(x, ShapeCoefficient(amount))
}

// ShapeInPlace applies SoftShape to every sample in buf, deriving the
// coefficient once.
func ShapeInPlace(buf []float64, amount float64) {
	k := ShapeCoefficient(amount)
	for i, x := range buf {
		buf[i] = shapeWithCoefficient(x, k)
	}
}

func shapeWithCoefficient(x, k float64) float64 {
	ax := x
	if ax < 0 {
		ax = -ax
	}

	return (1 + k) * x / (1 + k*ax)
}
