// Package effects provides the per-sample transforms of the grit core.
//
//   - HardClip: drive-then-clamp to [-1, 1].
//   - SoftShape: rational waveshaper whose curve hardens as the shape amount
//     approaches 1.
//   - Maximizer: peak-envelope follower whose reciprocal gain is applied to a
//     delayed copy of the input, normalizing level toward a knee-limited target.
//
// HardClip and SoftShape are pure functions. Maximizer owns its envelope and a
// fixed-capacity delay ring; its hot path neither allocates nor fails.
package effects
