// Package viz draws the molecule simulation in the terminal.
//
// A braille [Canvas] gives a 2x4 dot grid per character. The [Camera]
// orbits the vessel and projects world space onto the canvas; the vessel
// outline is rebuilt every frame from the current tilt.
//
// # Key Bindings
//
//	Space    - Pause/Resume simulation
//	R        - Reset population, parameters and tilt
//	W/S A/D  - Tilt the vessel about x and y
//	O        - Level the vessel
//	< >      - Remove or add ten molecules
//	Tab      - Cycle tunable parameters
//	Up/Down  - Scale the selected parameter by 5%
//	x/X y/Y  - Orbit the camera
//	+ -      - Zoom
//	?        - Show help overlay
package viz
