// Package thermal advances lattice temperatures and derives spring stiffness
// from them.
//
//   - [Diffusion]: two-pass inverse-square weighted diffusion with a pinned
//     heat source
//   - [StiffnessFactor]: elgiloy-like softening curve mapping a pair of
//     temperatures to a spring constant multiplier
//   - [Ambient]: initial temperature field, optionally perturbed with Perlin
//     noise
//
// # Stability
//
// The apply pass is explicit Euler. With the default gain of 10 the update
// stays monotone while gain*dt <= 1; the default 0.05s timestep gives 0.5.
package thermal
