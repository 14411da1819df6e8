// Package thd measures harmonic distortion of a test tone.
package thd

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/pulusound/grit/dsp/spectrum"
	"github.com/pulusound/grit/dsp/window"
)

const (
	defaultRangeLowerHz = 20.0
	defaultRangeUpperHz = 20000.0
	defaultFFTSize      = 8192
)

// ErrEmptySignal is returned when there is nothing to analyze.
var ErrEmptySignal = errors.New("thd: empty signal")

// Config holds THD calculation parameters. Zero values select defaults:
// 20 Hz to 20 kHz, an 8192-point FFT, Hann window, capture width from the
// window's main lobe and no harmonic limit.
type Config struct {
	SampleRate      float64
	FFTSize         int
	FundamentalFreq float64
	RangeLowerFreq  float64
	RangeUpperFreq  float64
	CaptureBins     int
	MaxHarmonics    int
	WindowType      window.Type
}

// Result holds THD measurement results. Ratios are relative to the
// fundamental amplitude.
type Result struct {
	FundamentalFreq  float64
	FundamentalLevel float64
	THD              float64
	THDN             float64
	THDdB            float64
	THDNdB           float64
	OddHD            float64
	EvenHD           float64
	Noise            float64
	Harmonics        []float64
	SINAD            float64

	// FundamentalAmplitude is the peak amplitude of the fundamental,
	// corrected for the window's coherent gain. Only Analyzer sets it.
	FundamentalAmplitude float64
}

// Calculator evaluates THD metrics on a one-sided power spectrum.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with defaults filled in.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: normalizeConfig(cfg)}
}

// Analyzer windows a signal, runs the FFT and evaluates THD. It reuses its
// plan and buffers across calls; it is not safe for concurrent use.
type Analyzer struct {
	calc   *Calculator
	plan   *algofft.Plan[complex128]
	coeffs []float64
	in     []complex128
	out    []complex128
}

// NewAnalyzer plans an FFT of cfg.FFTSize points.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	cfg = normalizeConfig(cfg)

	if cfg.FFTSize < 2 {
		return nil, fmt.Errorf("thd FFT size must be >= 2: %d", cfg.FFTSize)
	}

	if !(cfg.SampleRate > 0) || math.IsInf(cfg.SampleRate, 0) {
		return nil, fmt.Errorf("thd sample rate must be > 0 and finite: %f", cfg.SampleRate)
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("thd FFT plan: %w", err)
	}

	return &Analyzer{
		calc:   &Calculator{cfg: cfg},
		plan:   plan,
		coeffs: window.Generate(cfg.WindowType, cfg.FFTSize, window.WithPeriodic()),
		in:     make([]complex128, cfg.FFTSize),
		out:    make([]complex128, cfg.FFTSize),
	}, nil
}

// FFTSize returns the analysis length.
func (a *Analyzer) FFTSize() int { return len(a.in) }

// Analyze measures signal. Signals longer than the FFT use their trailing
// FFTSize samples, which skips start-up transients; shorter signals are
// windowed at their own length and zero padded.
func (a *Analyzer) Analyze(signal []float64) (Result, error) {
	if len(signal) == 0 {
		return Result{}, ErrEmptySignal
	}

	n := len(a.in)
	if len(signal) > n {
		signal = signal[len(signal)-n:]
	}

	coeffs := a.coeffs
	if len(signal) < n {
		coeffs = window.Generate(a.calc.cfg.WindowType, len(signal), window.WithPeriodic())
	}

	windowed, err := window.ApplyCoefficients(signal, coeffs)
	if err != nil {
		return Result{}, fmt.Errorf("thd window: %w", err)
	}

	gain, err := window.CoherentGain(coeffs)
	if err != nil {
		return Result{}, fmt.Errorf("thd window gain: %w", err)
	}

	if gain == 0 {
		return Result{}, fmt.Errorf("%w: %d samples leave no windowed signal", ErrEmptySignal, len(signal))
	}

	for i := range a.in {
		a.in[i] = 0
	}

	for i, x := range windowed {
		a.in[i] = complex(x, 0)
	}

	err = a.plan.Forward(a.out, a.in)
	if err != nil {
		return Result{}, fmt.Errorf("thd FFT: %w", err)
	}

	// A bin-centred sinusoid of amplitude A peaks at A*len*gain/2.
	power := spectrum.OneSidedPower(a.out)
	spectrum.ScalePower(power, 2/(float64(len(signal))*gain))

	res := a.calc.CalculateFromMagnitude(power)

	binHz := a.calc.cfg.SampleRate / float64(n)
	if bin := int(math.Round(res.FundamentalFreq / binHz)); bin > 0 && bin < len(power) {
		res.FundamentalAmplitude = sqrtPositive(power[bin])
	}

	return res, nil
}

// AnalyzeSignal is a one-shot Analyzer run. A zero FFTSize uses the next
// power of two at or above len(signal).
func AnalyzeSignal(signal []float64, cfg Config) (Result, error) {
	if len(signal) == 0 {
		return Result{}, ErrEmptySignal
	}

	if cfg.FFTSize <= 0 {
		cfg.FFTSize = nextPowerOf2(len(signal))
	}

	a, err := NewAnalyzer(cfg)
	if err != nil {
		return Result{}, err
	}

	return a.Analyze(signal)
}

// CalculateFromMagnitude computes THD metrics from a squared-magnitude spectrum.
// magSquared is expected to contain non-negative-frequency bins [0..Nyquist].
func (c *Calculator) CalculateFromMagnitude(magSquared []float64) Result {
	if len(magSquared) <= 1 {
		return Result{}
	}

	cfg := c.cfg
	fftSize := 2 * (len(magSquared) - 1)

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = float64(fftSize)
	}

	binCount := len(magSquared)
	maxBin := binCount - 1
	binHz := sampleRate / float64(fftSize)

	lowerBin := clampInt(int(math.Round(cfg.RangeLowerFreq/binHz)), 1, maxBin)
	upperBin := clampInt(int(math.Round(cfg.RangeUpperFreq/binHz)), lowerBin, maxBin)

	fundamentalBin := c.findFundamentalBin(magSquared, lowerBin, upperBin, binHz)

	captureBins := cfg.CaptureBins
	if captureBins <= 0 {
		captureBins = window.FirstMinimumBins(cfg.WindowType)
	}

	if captureBins*2 > fundamentalBin {
		captureBins = fundamentalBin / 2
	}

	fundamentalLevel := binSum(magSquared, fundamentalBin, captureBins)
	if fundamentalLevel <= 0 {
		return Result{FundamentalFreq: float64(fundamentalBin) * binHz}
	}

	thdAbs := 0.0
	oddAbs := 0.0
	evenAbs := 0.0
	harmonics := make([]float64, 0, 8)

	for k := 2; ; k++ {
		if cfg.MaxHarmonics > 0 && k-1 > cfg.MaxHarmonics {
			break
		}

		bin := k * fundamentalBin
		if bin > upperBin {
			break
		}

		value := binSum(magSquared, bin, captureBins)

		thdAbs += value
		if k%2 == 0 {
			evenAbs += value
		} else {
			oddAbs += value
		}

		harmonics = append(harmonics, value/fundamentalLevel)
	}

	totalAbs := 0.0
	for i := lowerBin; i <= upperBin; i++ {
		totalAbs += sqrtPositive(magSquared[i])
	}

	thdnAbs := math.Max(totalAbs-fundamentalLevel, 0)
	noiseAbs := math.Max(thdnAbs-thdAbs, 0)

	thd := thdAbs / fundamentalLevel
	thdn := thdnAbs / fundamentalLevel

	sinad := math.Inf(1)
	if thdn > 0 {
		sinad = -20 * math.Log10(thdn)
	}

	return Result{
		FundamentalFreq:  float64(fundamentalBin) * binHz,
		FundamentalLevel: fundamentalLevel,
		THD:              thd,
		THDN:             thdn,
		THDdB:            ratioToDB(thd),
		THDNdB:           ratioToDB(thdn),
		OddHD:            oddAbs / fundamentalLevel,
		EvenHD:           evenAbs / fundamentalLevel,
		Noise:            noiseAbs / fundamentalLevel,
		Harmonics:        harmonics,
		SINAD:            sinad,
	}
}

func (c *Calculator) findFundamentalBin(magSquared []float64, lowerBin, upperBin int, binHz float64) int {
	if c.cfg.FundamentalFreq > 0 {
		return clampInt(int(math.Round(c.cfg.FundamentalFreq/binHz)), lowerBin, upperBin)
	}

	bestBin := lowerBin
	bestVal := -1.0

	for i := lowerBin; i <= upperBin; i++ {
		if magSquared[i] > bestVal {
			bestVal = magSquared[i]
			bestBin = i
		}
	}

	return bestBin
}

func normalizeConfig(cfg Config) Config {
	if cfg.RangeLowerFreq <= 0 {
		cfg.RangeLowerFreq = defaultRangeLowerHz
	}

	if cfg.RangeUpperFreq <= 0 {
		cfg.RangeUpperFreq = defaultRangeUpperHz
	}

	if cfg.RangeUpperFreq < cfg.RangeLowerFreq {
		cfg.RangeUpperFreq = cfg.RangeLowerFreq
	}

	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}

	if cfg.WindowType == window.TypeRectangular {
		cfg.WindowType = window.TypeHann
	}

	cfg.CaptureBins = max(cfg.CaptureBins, 0)
	cfg.MaxHarmonics = max(cfg.MaxHarmonics, 0)

	return cfg
}

// binSum adds the amplitudes within captureBins of bin.
func binSum(magSquared []float64, bin, captureBins int) float64 {
	if bin < 0 || bin >= len(magSquared) {
		return 0
	}

	lo := max(bin-captureBins, 0)
	hi := min(bin+captureBins, len(magSquared)-1)

	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += sqrtPositive(magSquared[i])
	}

	return sum
}

func sqrtPositive(v float64) float64 {
	if v <= 0 {
		return 0
	}

	return math.Sqrt(v)
}

func ratioToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}

	if val > hi {
		return hi
	}

	return val
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
