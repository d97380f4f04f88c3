// Package viz provides an interactive terminal browser for knockdown
// sensitivity reports, built on Bubble Tea.
//
// # Key Bindings
//
//	up/k, down/j - Move through ranked species
//	s            - Toggle ranking (impact / direction)
//	enter        - Show every species' change for the selected knockdown
//	t            - Cycle color themes
//	q            - Quit
package viz
