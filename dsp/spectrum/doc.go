// Package spectrum turns complex FFT bins into power arrays.
//
// The package does not implement an FFT itself; callers pass the complex bins
// produced by their FFT backend.
package spectrum
