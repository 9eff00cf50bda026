package controller

import (
	"strings"

	"github.com/legadomuebles/legado/internal/catalog"
	"github.com/legadomuebles/legado/internal/store"
	"github.com/legadomuebles/legado/internal/uistate"
)

// Overlay is an open/closed flag backed by one boolean state key.
type Overlay struct {
	store *store.Store
	field uistate.Field[bool]
}

func newOverlay(s *store.Store, field uistate.Field[bool]) Overlay {
	return Overlay{store: s, field: field}
}

func (o *Overlay) Open()  { o.field.Set(o.store, true) }
func (o *Overlay) Close() { o.field.Set(o.store, false) }

func (o *Overlay) IsOpen() bool { return o.field.Get(o.store) }

// Toggle opens a closed overlay and closes an open one.
func (o *Overlay) Toggle() {
	if o.IsOpen() {
		o.Close()
		return
	}
	o.Open()
}

// HandleEscape closes the overlay. It reports whether it was open.
func (o *Overlay) HandleEscape() bool {
	if !o.IsOpen() {
		return false
	}
	o.Close()
	return true
}

// Menu is the mobile navigation drawer.
type Menu struct {
	Overlay
}

func NewMenu(s *store.Store) *Menu {
	return &Menu{Overlay: newOverlay(s, uistate.MobileMenuOpen)}
}

// HandleOutsideClick closes the menu after a click that landed neither on
// the menu nor on its button.
func (m *Menu) HandleOutsideClick() {
	if m.IsOpen() {
		m.Close()
	}
}

// HandleResize closes the menu once the viewport is wide enough for the
// desktop navigation. Producers debounce resize events before calling.
func (m *Menu) HandleResize(width int) {
	if width >= BreakpointLG && m.IsOpen() {
		m.Close()
	}
}

// NavigateAnchor handles a click on an in-page link. Links other than a
// bare "#" close the menu and return the target id to scroll to.
func (m *Menu) NavigateAnchor(href string) (target string, ok bool) {
	if !strings.HasPrefix(href, "#") || href == "#" {
		return "", false
	}
	if m.IsOpen() {
		m.Close()
	}
	return strings.TrimPrefix(href, "#"), true
}

// Search is the product search overlay.
type Search struct {
	Overlay
	catalog  *catalog.Catalog
	products *Products
	query    string
}

func NewSearch(s *store.Store, c *catalog.Catalog, products *Products) *Search {
	return &Search{Overlay: newOverlay(s, uistate.SearchModalOpen), catalog: c, products: products}
}

// Close hides the overlay and clears its input.
func (s *Search) Close() {
	s.query = ""
	s.Overlay.Close()
}

// Toggle uses the overlay's own Close so the input is cleared.
func (s *Search) Toggle() {
	if s.IsOpen() {
		s.Close()
		return
	}
	s.Open()
}

// HandleEscape closes the overlay. It reports whether it was open.
func (s *Search) HandleEscape() bool {
	if !s.IsOpen() {
		return false
	}
	s.Close()
	return true
}

// Query runs a search over the whole catalog. Typing is debounced by the
// producer.
func (s *Search) Query(q string) catalog.SearchResult {
	s.query = q
	return catalog.Search(s.catalog.Products, q)
}

// Current returns the last query since the overlay was closed.
func (s *Search) Current() string {
	return s.query
}

// Select follows a search result: the overlay closes, the product is recorded
// as viewed and the product grid switches to the product's category.
func (s *Search) Select(productID int) error {
	p, ok := s.catalog.Product(productID)
	if !ok {
		return ErrUnknownProduct
	}
	s.Close()
	s.products.RecordView(productID)
	return s.products.FilterByCategory(p.Category)
}

// Lightbox shows one image full screen.
type Lightbox struct {
	store *store.Store
}

func NewLightbox(s *store.Store) *Lightbox {
	return &Lightbox{store: s}
}

// Open shows src with its alt text.
func (l *Lightbox) Open(src, alt string) {
	l.store.SetMany(
		uistate.LightboxOpen.Entry(true),
		uistate.LightboxImage.Entry(src),
		uistate.LightboxAlt.Entry(alt),
	)
}

// Close hides the image and clears it.
func (l *Lightbox) Close() {
	l.store.SetMany(
		uistate.LightboxOpen.Entry(false),
		uistate.LightboxImage.Entry(""),
		uistate.LightboxAlt.Entry(""),
	)
}

func (l *Lightbox) IsOpen() bool { return uistate.LightboxOpen.Get(l.store) }

// HandleEscape closes the lightbox. It reports whether it was open.
func (l *Lightbox) HandleEscape() bool {
	if !l.IsOpen() {
		return false
	}
	l.Close()
	return true
}
