// Package grit selects one of the three grit transforms per block and runs it
// over planar or interleaved audio.
//
// A Processor owns the only stateful piece, the maximizer. Clip and shape are
// applied directly from package effects. Process never allocates, never logs
// and always reports StatusNormal; parameter values are sanitized on the way in
// instead of being rejected.
package grit
