package controller

import (
	"errors"
	"fmt"

	"github.com/legadomuebles/legado/internal/catalog"
	"github.com/legadomuebles/legado/internal/messaging"
	"github.com/legadomuebles/legado/internal/persist"
	"github.com/legadomuebles/legado/internal/store"
	"github.com/legadomuebles/legado/internal/uistate"
)

var (
	// ErrUnknownProduct is returned for product ids missing from the catalog.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrUnknownCategory is returned for category ids missing from the catalog.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidSort is returned for sort orders outside [uistate.SortOrder].
	ErrInvalidSort = errors.New("invalid sort order")
	// ErrFavoritesFull is returned when the favourites list is at capacity.
	ErrFavoritesFull = errors.New("favorites list is full")
)

// Products drives the catalog grid: category pills, the inline search box,
// the sort select and the "load more" button.
type Products struct {
	store   *store.Store
	catalog *catalog.Catalog
	link    messaging.Link
	storage persist.Storage
	perPage int
}

// NewProducts creates the grid controller. perPage of zero or less uses
// [catalog.DefaultPerPage].
func NewProducts(s *store.Store, c *catalog.Catalog, link messaging.Link, storage persist.Storage, perPage int) *Products {
	if perPage <= 0 {
		perPage = catalog.DefaultPerPage
	}
	return &Products{store: s, catalog: c, link: link, storage: storage, perPage: perPage}
}

// FilterByCategory shows one category from the first page.
func (p *Products) FilterByCategory(category string) error {
	if !p.catalog.HasCategory(category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	uistate.CurrentCategory.Set(p.store, category)
	uistate.ProductsPage.Set(p.store, 1)
	return nil
}

// SetSearch filters the grid by query from the first page.
func (p *Products) SetSearch(query string) {
	uistate.SearchQuery.Set(p.store, query)
	uistate.ProductsPage.Set(p.store, 1)
}

// SetSort changes the order. The page is kept.
func (p *Products) SetSort(order uistate.SortOrder) error {
	if !order.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSort, order)
	}
	uistate.SortBy.Set(p.store, order)
	return nil
}

// LoadMore reveals the next page and returns the grown view.
func (p *Products) LoadMore() catalog.Page {
	page := uistate.ProductsPage.Get(p.store)
	if page < 1 {
		page = 1
	}
	uistate.ProductsPage.Set(p.store, page+1)
	return p.View()
}

// View evaluates the grid for the current state.
func (p *Products) View() catalog.Page {
	return catalog.Filter(p.catalog.Products, catalog.Query{
		Category: uistate.CurrentCategory.Get(p.store),
		Search:   uistate.SearchQuery.Get(p.store),
		Sort:     string(uistate.SortBy.Get(p.store)),
		Page:     uistate.ProductsPage.Get(p.store),
		PerPage:  p.perPage,
	})
}

// Inquiry returns the WhatsApp link that asks about a product, and records
// the product as recently viewed.
func (p *Products) Inquiry(productID int) (string, error) {
	product, ok := p.catalog.Product(productID)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
	}
	p.RecordView(productID)
	return p.link.URL(messaging.ProductInquiry(product.Name)), nil
}

// RecordView moves productID to the front of the recently viewed list.
func (p *Products) RecordView(productID int) {
	recent := p.RecentViews()
	next := make([]int, 0, persist.MaxRecentViews)
	next = append(next, productID)
	for _, id := range recent {
		if id != productID && len(next) < persist.MaxRecentViews {
			next = append(next, id)
		}
	}
	p.storage.Set(persist.KeyRecent, next)
}

// RecentViews returns product ids, most recent first.
func (p *Products) RecentViews() []int {
	var ids []int
	if !p.storage.Get(persist.KeyRecent, &ids) {
		return []int{}
	}
	return ids
}

// ToggleFavorite adds or removes a product from the favourites and reports
// whether it is now a favourite.
func (p *Products) ToggleFavorite(productID int) (bool, error) {
	if _, ok := p.catalog.Product(productID); !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownProduct, productID)
	}

	favs := p.Favorites()
	for i, id := range favs {
		if id == productID {
			favs = append(favs[:i], favs[i+1:]...)
			p.storage.Set(persist.KeyFavorites, favs)
			return false, nil
		}
	}
	if len(favs) >= persist.MaxFavorites {
		return false, ErrFavoritesFull
	}
	p.storage.Set(persist.KeyFavorites, append(favs, productID))
	return true, nil
}

// Favorites returns the favourite product ids in the order they were added.
func (p *Products) Favorites() []int {
	var ids []int
	if !p.storage.Get(persist.KeyFavorites, &ids) {
		return []int{}
	}
	return ids
}
