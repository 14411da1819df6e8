// Package param describes the grit parameters and turns host-side parameter
// changes into resolved grit.Params.
//
// Definitions carries ranges, defaults, display names and text formatting.
// Smoother ramps a value toward its target with linear, exponential or
// logarithmic curves; Set owns one smoother per parameter and hands out the
// values for each processing span.
package param
