// Package dynamo provides core primitives shared by the melter packages.
//
// The package defines the small value types and error taxonomy used across
// the lattice, thermal, vibration and simulation packages:
//
//   - [Vec3]: 3D vector for positions and forces
//   - [ErrInvalidConfig]: malformed construction parameters
//   - [ErrInvalidState]: a temperature went NaN or Inf mid-run
//   - [SimulationError]: wraps a step failure with its step number and time
//
// # Thread Safety
//
// Nothing in the simulation core is safe for concurrent use. A melter is
// driven by a single frame loop and mutates its lattice in place.
package dynamo
