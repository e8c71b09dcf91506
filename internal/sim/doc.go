// Package sim sequences the melting simulation.
//
// A [Scheduler] converts frame times into fixed steps, and a [Melter] runs
// each step in a fixed order:
//
//  1. heat diffusion over the lattice, source re-pinned
//  2. spring constants rescaled from the new temperatures
//  3. one vibration force per particle, handed to the [Physics] service
//  4. one colour per particle, handed to the [Renderer]
//  5. observers
//
// Stiffness and colour therefore always reflect the temperatures produced by
// the same step's diffusion.
//
// # Example
//
//	m, _ := sim.New(config.DefaultConfig())
//	m.SetPhysics(physics.New(m.Lattice()))
//	for frame := range frames {
//	    if _, err := m.Tick(frame.Elapsed); err != nil {
//	        return err
//	    }
//	}
package sim
