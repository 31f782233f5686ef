// Package viz is a terminal host for the particle box.
//
// [Model] plays the part of the external render loop and editor: every
// render frame it feeds the elapsed time through a fixed-step clock, runs
// the due ticks, relays the walls once, and draws the scene onto a braille
// [Canvas]. Parameter edits go straight into the shared config store and
// are picked up by the next tick.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	Tab   - Select next parameter
//	↑/↓   - Adjust selected parameter
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	Q     - Quit
package viz
