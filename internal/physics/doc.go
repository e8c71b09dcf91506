// Package physics is the reference motion service for a melting lattice.
//
// A [Body] treats every particle as a point mass joined by the lattice's
// springs. Each step it reads the current spring constants and the
// per-particle vibration forces, then integrates with semi-implicit Euler
// over a few substeps:
//
//	v += (F_spring + F_ext + m*g - c*v) / m * h
//	x += v * h
//
// Rest lengths are the build-time distances. A spring whose constant has
// dropped to zero or below no longer pulls. Particles cannot fall through
// the floor plane, which defaults to the lattice's lowest y.
//
// Positions live in the body only. The thermal model keeps using the build
// positions, so motion never feeds back into diffusion.
package physics
