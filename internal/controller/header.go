package controller

import (
	"github.com/legadomuebles/legado/internal/store"
	"github.com/legadomuebles/legado/internal/uistate"
)

// scrolledThreshold is the scroll offset past which the header gets its
// solid background.
const scrolledThreshold = 50

// Header tracks the scroll position for the sticky header and the reading
// progress bar.
type Header struct {
	store *store.Store
}

func NewHeader(s *store.Store) *Header {
	return &Header{store: s}
}

// Update records a scroll position. docHeight is the full scrollable height
// and viewport the visible height, both in pixels. Producers throttle
// scroll events before calling.
func (h *Header) Update(scrollY, docHeight, viewport int) {
	h.store.SetMany(
		uistate.HeaderScrolled.Entry(scrollY > scrolledThreshold),
		uistate.ScrollProgress.Entry(ScrollProgress(scrollY, docHeight, viewport)),
		uistate.ScrollY.Entry(scrollY),
	)
}

// ScrollProgress is how far down the page scrollY is, from 0 to 1. Pages
// shorter than the viewport report 0.
func ScrollProgress(scrollY, docHeight, viewport int) float64 {
	scrollable := docHeight - viewport
	if scrollable <= 0 {
		return 0
	}
	p := float64(scrollY) / float64(scrollable)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
