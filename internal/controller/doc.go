// Package controller implements the storefront's behaviour on top of the
// shared state store. Each controller owns a slice of the state keys and
// receives the store, and the collaborators it needs, through its
// constructor.
//
// Controller methods are not safe for concurrent use. The application calls
// them from its event loop. Work that a controller schedules itself, such as
// hiding a toast or advancing the carousel, is handed to the [Dispatch]
// function it was built with so that it runs on that same loop.
package controller

// Dispatch runs fn where store mutations are allowed.
type Dispatch func(fn func())

// Inline runs fn immediately on the calling goroutine.
func Inline(fn func()) { fn() }

// BreakpointLG is the viewport width from which the desktop navigation is
// shown and the mobile menu closes itself.
const BreakpointLG = 1024

func orInline(d Dispatch) Dispatch {
	if d == nil {
		return Inline
	}
	return d
}
