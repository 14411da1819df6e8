package param

import (
	"errors"
	"fmt"
	"math"

	"github.com/pulusound/grit/dsp/core"
	"github.com/pulusound/grit/dsp/effects"
	"github.com/pulusound/grit/dsp/grit"
)

// ErrUnknownParam is returned for IDs that name no parameter.
var ErrUnknownParam = errors.New("param: unknown parameter")

// ID is the stable parameter identifier.
type ID string

// Parameter identifiers.
const (
	IDAlgorithm ID = "algorithm"
	IDClipDrive ID = "clip_drive"
	IDShape     ID = "sds_shape"
	IDEnvTime   ID = "bsm_env_time"
	IDKnee      ID = "bsm_knee"
)

// kneeSmoothingMs is the logarithmic ramp time for knee changes.
const kneeSmoothingMs = 50

// Definition describes one parameter.
type Definition struct {
	ID      ID
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	// Discrete parameters only take integer values.
	Discrete bool
	// Skew shapes the normalized mapping: normalized = linear^Skew.
	// Zero means 1.
	Skew float64

	Smoothing   Style
	SmoothingMs float64

	format Formatter
	parse  Parser
}

var definitions = []Definition{
	{
		ID:       IDAlgorithm,
		Name:     "Algorithm",
		Min:      float64(grit.AlgorithmClip),
		Max:      float64(grit.AlgorithmMaximizer),
		Default:  float64(grit.AlgorithmClip),
		Discrete: true,
		format:   AlgorithmFormatter,
		parse:    AlgorithmParser,
	},
	{
		ID:      IDClipDrive,
		Name:    "Clip: Drive",
		Min:     0,
		Max:     1,
		Default: grit.DefaultClipDrive,
		format:  DecimalFormatter(2),
		parse:   DecimalParser,
	},
	{
		ID:      IDShape,
		Name:    "SDS: Shape",
		Min:     0,
		Max:     1,
		Default: grit.DefaultShapeAmount,
		format:  DecimalFormatter(2),
		parse:   DecimalParser,
	},
	{
		ID:      IDEnvTime,
		Name:    "BSM: Env Time",
		Min:     grit.MinEnvTime,
		Max:     grit.MaxEnvTime,
		Default: grit.DefaultEnvTime,
		format:  SecondsFormatter,
		parse:   SecondsParser,
	},
	{
		ID:          IDKnee,
		Name:        "BSM: Knee",
		Unit:        " dB",
		Min:         effects.MinMaximizerKnee,
		Max:         effects.MaxMaximizerKnee,
		Default:     grit.DefaultKnee,
		Skew:        GainSkewFactor(-90, 0),
		Smoothing:   StyleLogarithmic,
		SmoothingMs: kneeSmoothingMs,
		format:      GainToDBFormatter(2),
		parse:       DBToGainParser,
	},
}

// Definitions returns the parameter table in host order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)

	return out
}

// Lookup returns the definition for id.
func Lookup(id ID) (Definition, error) {
	for _, d := range definitions {
		if d.ID == id {
			return d, nil
		}
	}

	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownParam, id)
}

// Clamp limits v to the parameter range. NaN selects the default and discrete
// parameters round to the nearest integer.
func (d Definition) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return d.Default
	}

	if d.Discrete {
		v = math.Round(v)
	}

	return core.Clamp(v, d.Min, d.Max)
}

// Format renders v with the parameter's formatter and unit.
func (d Definition) Format(v float64) string {
	if d.format == nil {
		return DecimalFormatter(2)(v) + d.Unit
	}

	return d.format(v) + d.Unit
}

// Parse converts text into a clamped plain value.
func (d Definition) Parse(text string) (float64, error) {
	parse := d.parse
	if parse == nil {
		parse = DecimalParser
	}

	v, err := parse(text)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", d.ID, err)
	}

	return d.Clamp(v), nil
}

// Normalize maps a plain value to [0, 1] using the parameter's skew.
func (d Definition) Normalize(v float64) float64 {
	if d.Max <= d.Min {
		return 0
	}

	n := (d.Clamp(v) - d.Min) / (d.Max - d.Min)
	if d.Skew != 0 && d.Skew != 1 {
		n = math.Pow(n, d.Skew)
	}

	return n
}

// Denormalize maps a normalized value in [0, 1] back to the plain range.
func (d Definition) Denormalize(n float64) float64 {
	n = core.Clamp(core.FiniteOr(n, 0), 0, 1)
	if d.Skew != 0 && d.Skew != 1 {
		n = math.Pow(n, 1/d.Skew)
	}

	return d.Clamp(d.Min + n*(d.Max-d.Min))
}

// GainSkewFactor returns the skew that puts the dB midpoint of
// [minDB, maxDB] at normalized 0.5.
func GainSkewFactor(minDB, maxDB float64) float64 {
	minGain := core.DBToLinear(minDB)
	maxGain := core.DBToLinear(maxDB)
	midGain := core.DBToLinear((minDB + maxDB) / 2)

	return math.Log(0.5) / math.Log((midGain-minGain)/(maxGain-minGain))
}
