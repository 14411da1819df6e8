package param

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pulusound/grit/dsp/core"
	"github.com/pulusound/grit/dsp/grit"
)

// ErrParse is wrapped by every parser in this package.
var ErrParse = errors.New("param: cannot parse value")

// Formatter renders a plain parameter value.
type Formatter func(value float64) string

// Parser converts user text to a plain parameter value.
type Parser func(text string) (float64, error)

// AlgorithmFormatter renders selector values with their display names.
func AlgorithmFormatter(value float64) string {
	return grit.Algorithm(int(math.Round(value))).DisplayName()
}

// AlgorithmParser accepts anything grit.ParseAlgorithm does.
func AlgorithmParser(text string) (float64, error) {
	a, err := grit.ParseAlgorithm(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return float64(a), nil
}

// DecimalFormatter renders the value with the given number of decimals.
func DecimalFormatter(decimals int) Formatter {
	return func(value float64) string {
		return strconv.FormatFloat(value, 'f', decimals, 64)
	}
}

// DecimalParser parses a plain number.
func DecimalParser(text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, text)
	}

	return v, nil
}

// GainToDBFormatter renders a linear gain in dB with the given decimals.
// Zero gain renders as "-inf".
func GainToDBFormatter(decimals int) Formatter {
	return func(gain float64) string {
		if gain <= 0 {
			return "-inf"
		}

		return strconv.FormatFloat(core.LinearToDB(gain), 'f', decimals, 64)
	}
}

// DBToGainParser parses "-6", "-6 dB" or "-inf" into a linear gain.
func DBToGainParser(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "dB"), "db"))

	if strings.EqualFold(s, "-inf") || s == "-∞" {
		return 0, nil
	}

	db, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, text)
	}

	return core.DBToLinear(db), nil
}

// SecondsFormatter renders a time in seconds using ms or µs below one second.
func SecondsFormatter(seconds float64) string {
	switch {
	case seconds < 1e-3:
		return fmt.Sprintf("%.1f µs", seconds*1e6)
	case seconds < 1:
		return fmt.Sprintf("%.2f ms", seconds*1e3)
	default:
		return fmt.Sprintf("%.2f s", seconds)
	}
}

// SecondsParser parses "0.5 ms", "500us", "0.0005 s" or a bare number of
// seconds.
func SecondsParser(text string) (float64, error) {
	s := strings.TrimSpace(text)

	scale := 1.0
	for _, unit := range []struct {
		suffix string
		scale  float64
	}{
		{"µs", 1e-6},
		{"us", 1e-6},
		{"ms", 1e-3},
		{"s", 1},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			scale = unit.scale

			break
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, text)
	}

	return v * scale, nil
}
