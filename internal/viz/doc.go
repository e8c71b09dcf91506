// Package viz draws a running melter in the terminal with Bubble Tea.
//
// The default view is one k-layer of the lattice as a heat map coloured by
// temperature. The 3D view projects particle positions, taken from the
// physics body when there is one, onto a braille [Canvas].
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial temperatures
//	[ ]   - Previous/next layer
//	V     - Toggle the 3D view
//	X Y   - Rotate the camera (shift reverses)
//	+ -   - Zoom
//	T     - Cycle themes
//	Q     - Quit
package viz
