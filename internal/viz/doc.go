// Package viz renders cascade runs in the terminal.
//
//   - [Browser]: Bubble Tea program that scrubs a run's history
//   - [Canvas]: braille dot grid used to draw the surviving network
//   - [Plot]: asciigraph line charts of per-round series
//
// # Key Bindings
//
//	h/l, ←/→ - previous/next iteration (wraps)
//	g/G      - first/last iteration
//	v        - toggle network layout and node table
//	t        - cycle color themes
//	q        - quit
package viz
