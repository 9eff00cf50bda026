package controller

import (
	"sync"
	"time"

	"github.com/legadomuebles/legado/internal/store"
	"github.com/legadomuebles/legado/internal/uistate"
)

// DefaultAutoplayInterval is the delay between automatic slides.
const DefaultAutoplayInterval = 5 * time.Second

// Carousel steps through the testimonials.
type Carousel struct {
	store         *store.Store
	count         int
	dispatch      Dispatch
	interval      time.Duration
	reducedMotion bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// CarouselOption configures a [Carousel].
type CarouselOption func(*Carousel)

// WithAutoplayInterval overrides [DefaultAutoplayInterval].
func WithAutoplayInterval(d time.Duration) CarouselOption {
	return func(c *Carousel) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithReducedMotion disables autoplay.
func WithReducedMotion(reduced bool) CarouselOption {
	return func(c *Carousel) { c.reducedMotion = reduced }
}

// NewCarousel creates a carousel over count slides. Ticks from autoplay are
// delivered through dispatch.
func NewCarousel(s *store.Store, count int, dispatch Dispatch, opts ...CarouselOption) *Carousel {
	c := &Carousel{
		store:    s,
		count:    count,
		dispatch: orInline(dispatch),
		interval: DefaultAutoplayInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Index returns the current slide.
func (c *Carousel) Index() int {
	return uistate.TestimonialIndex.Get(c.store)
}

// Next moves one slide forward, wrapping after the last.
func (c *Carousel) Next() int { return c.step(1) }

// Prev moves one slide back, wrapping before the first.
func (c *Carousel) Prev() int { return c.step(-1) }

func (c *Carousel) step(delta int) int {
	if c.count <= 0 {
		return 0
	}
	next := ((c.Index()+delta)%c.count + c.count) % c.count
	uistate.TestimonialIndex.Set(c.store, next)
	return next
}

// StartAutoplay advances the carousel every interval until
// [Carousel.StopAutoplay]. Starting again restarts the interval. It reports
// false when reduced motion is on.
func (c *Carousel) StartAutoplay() bool {
	if c.reducedMotion {
		return false
	}
	c.StopAutoplay()

	c.mu.Lock()
	defer c.mu.Unlock()
	stop := make(chan struct{})
	done := make(chan struct{})
	c.stop, c.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.dispatch(func() { c.Next() })
			}
		}
	}()
	return true
}

// StopAutoplay pauses autoplay, for instance while the pointer or focus is
// inside the carousel. It is safe to call when autoplay is not running.
func (c *Carousel) StopAutoplay() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Autoplaying reports whether autoplay is running.
func (c *Carousel) Autoplaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}
