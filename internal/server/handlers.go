package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/legadomuebles/legado/internal/catalog"
	"github.com/legadomuebles/legado/internal/controller"
	"github.com/legadomuebles/legado/internal/messaging"
	"github.com/legadomuebles/legado/internal/store"
	"github.com/legadomuebles/legado/internal/uistate"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Store.Snapshot())
}

func (s *Server) handleStateKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	v, ok := s.cfg.Store.Get(key)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("no state for key %q", key)})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": v})
}

// handlePatchState applies a partial state update. The whole body is
// decoded before anything is written, so an invalid key rejects the batch.
func (s *Server) handlePatchState(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]store.Entry, 0, len(keys))
	for _, k := range keys {
		v, err := uistate.Decode(k, body[k])
		if err != nil {
			if !errors.Is(err, uistate.ErrUnknownKey) {
				err = fmt.Errorf("%w: %v", errBadRequest, err)
			}
			s.writeError(w, err)
			return
		}
		entries = append(entries, store.Entry{Key: k, Value: v})
	}

	s.run(w, r, func() (any, error) {
		s.cfg.Store.SetMany(entries...)
		return s.cfg.Store.Snapshot(), nil
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Store.History())
}

type themeResponse struct {
	Theme     uistate.ThemeMode `json:"theme"`
	MetaColor string            `json:"metaColor"`
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func() (any, error) {
		mode := s.cfg.Theme.Toggle()
		return themeResponse{Theme: mode, MetaColor: controller.MetaColor(mode)}, nil
	})
}

// handleThemeSystem reports a change of the visitor's colour scheme. It only
// applies when no theme has been saved.
func (s *Server) handleThemeSystem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Dark bool `json:"dark"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.run(w, r, func() (any, error) {
		s.cfg.Theme.SystemChanged(body.Dark)
		mode := uistate.Theme.Get(s.cfg.Store)
		return themeResponse{Theme: mode, MetaColor: controller.MetaColor(mode)}, nil
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Catalog.Pills())
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func() (any, error) {
		return s.cfg.Products.View(), nil
	})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.run(w, r, func() (any, error) {
		if err := s.cfg.Products.FilterByCategory(body.Category); err != nil {
			return nil, err
		}
		return s.cfg.Products.View(), nil
	})
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sort uistate.SortOrder `json:"sort"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.run(w, r, func() (any, error) {
		if err := s.cfg.Products.SetSort(body.Sort); err != nil {
			return nil, err
		}
		return s.cfg.Products.View(), nil
	})
}

// handleProductSearch feeds the debounced catalog search and answers 202.
func (s *Server) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.search.Call(body.Query)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleLoadMore(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func() (any, error) {
		return s.cfg.Products.LoadMore(), nil
	})
}

type inquiryResponse struct {
	URL string `json:"url"`
}

func (s *Server) handleInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.run(w, r, func() (any, error) {
		url, err := s.cfg.Products.Inquiry(id)
		if err != nil {
			return nil, err
		}
		s.cfg.Metrics.InquiryCreated()
		return inquiryResponse{URL: url}, nil
	})
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.run(w, r, func() (any, error) {
		on, err := s.cfg.Products.ToggleFavorite(id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"id": id, "favorite": on}, nil
	})
}

// productList resolves ids against the catalog, skipping ids it no longer
// has.
func (s *Server) productList(ids []int) []catalog.Product {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.cfg.Catalog.Product(id); ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func() (any, error) {
		return s.productList(s.cfg.Products.Favorites()), nil
	})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func() (any, error) {
		return s.productList(s.cfg.Products.RecentViews()), nil
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	s.run(w, r, func() (any, error) {
		return s.cfg.Search.Query(q), nil
	})
}

func (s *Server) handleSearchSelect(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.run(w, r, func() (any, error) {
		if err := s.cfg.Search.Select(id); err != nil {
			return nil, err
		}
		return s.cfg.Products.View(), nil
	})
}

type overlayResponse struct {
	Open bool `json:"open"`
}

// overlay is the behaviour shared by the menu and the search overlay.
type overlay interface {
	Open()
	Close()
	Toggle()
	IsOpen() bool
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	name, action := chi.URLParam(r, "name"), chi.URLParam(r, "action")

	var o overlay
	switch name {
	case "menu":
		o = s.cfg.Menu
	case "search":
		o = s.cfg.Search
	default:
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("unknown overlay %q", name)})
		return
	}

	var apply func()
	switch action {
	case "open":
		apply = o.Open
	case "close":
		apply = o.Close
	case "toggle":
		apply = o.Toggle
	case "outside-click":
		if name != "menu" {
			break
		}
		apply = s.cfg.Menu.HandleOutsideClick
	}
	if apply == nil {
		s.writeError(w, fmt.Errorf("%w: unknown action %q for %s", errBadRequest, action, name))
		return
	}

	s.run(w, r, func() (any, error) {
		apply()
		return overlayResponse{Open: o.IsOpen()}, nil
	})
}

func (s *Server) handleAnchor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Href string `json:"href"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.run(w, r, func() (any, error) {
		target, ok := s.cfg.Menu.NavigateAnchor(body.Href)
		return map[string]any{"target": target, "scroll": ok}, nil
	})
}

type lightboxRequest struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

func (s *Server) handleLightboxOpen(w http.ResponseWriter, r *http.Request) {
	var body lightboxRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if body.Src == "" {
		s.writeError(w, fmt.Errorf("%w: src is required", errBadRequest))
		return
	}
	s.run(w, r, func() (any, error) {
		s.cfg.Lightbox.Open(body.Src, body.Alt)
		return overlayResponse{Open: true}, nil
	})
}

func (s *Server) handleLightboxClose(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func() (any, error) {
		s.cfg.Lightbox.Close()
		return overlayResponse{Open: false}, nil
	})
}

// handleEscape closes every open overlay, topmost first.
func (s *Server) handleEscape(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func() (any, error) {
		closed := []string{}
		if s.cfg.Lightbox.HandleEscape() {
			closed = append(closed, "lightbox")
		}
		if s.cfg.Search.HandleEscape() {
			closed = append(closed, "search")
		}
		if s.cfg.Menu.HandleEscape() {
			closed = append(closed, "menu")
		}
		return map[string]any{"closed": closed}, nil
	})
}

type scrollRequest struct {
	ScrollY   int `json:"scrollY"`
	DocHeight int `json:"docHeight"`
	Viewport  int `json:"viewport"`
}

// handleScroll feeds the throttled header update and answers 202.
func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var body scrollRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.scroll.Call(body)
	w.WriteHeader(http.StatusAccepted)
}

// handleResize feeds the debounced menu breakpoint check and answers 202.
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Width int `json:"width"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.resize.Call(body.Width)
	w.WriteHeader(http.StatusAccepted)
}

type testimonialsResponse struct {
	Index        int                   `json:"index"`
	Testimonials []catalog.Testimonial `json:"testimonials"`
}

func (s *Server) handleTestimonials(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, testimonialsResponse{
		Index:        uistate.TestimonialIndex.Get(s.cfg.Store),
		Testimonials: s.cfg.Catalog.Testimonials,
	})
}

func (s *Server) handleTestimonialStep(delta int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.run(w, r, func() (any, error) {
			var idx int
			if delta > 0 {
				idx = s.cfg.Testimonials.Next()
			} else {
				idx = s.cfg.Testimonials.Prev()
			}
			return map[string]int{"index": idx}, nil
		})
	}
}

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.cfg.Catalog.Gallery)
}

type contactResponse struct {
	catalog.Contact
	MapURL string `json:"mapUrl"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	c := s.cfg.Catalog.Contact
	s.writeJSON(w, http.StatusOK, contactResponse{
		Contact: c,
		MapURL:  catalog.MapURL(c.Address),
	})
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func() (any, error) {
		return s.cfg.Quote.LoadDraft(), nil
	})
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	var body messaging.QuoteRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.run(w, r, func() (any, error) {
		return map[string]bool{"saved": s.cfg.Quote.SaveDraft(body)}, nil
	})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var body messaging.QuoteRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	s.run(w, r, func() (any, error) {
		res, err := s.cfg.Quote.Submit(body)
		if errors.Is(err, controller.ErrInvalidQuote) {
			s.cfg.Metrics.QuoteSubmitted(false)
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		s.cfg.Metrics.QuoteSubmitted(true)
		return res, nil
	})
}

type pageData struct {
	Title        string
	Theme        uistate.ThemeMode
	MetaColor    string
	Year         int
	Pills        []catalog.Category
	View         catalog.Page
	Testimonials []catalog.Testimonial
	Contact      catalog.Contact
	MapURL       string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	theme := uistate.Theme.Get(s.cfg.Store)
	data := pageData{
		Title:        s.cfg.Title,
		Theme:        theme,
		MetaColor:    controller.MetaColor(theme),
		Year:         time.Now().Year(),
		Pills:        s.cfg.Catalog.Pills(),
		Testimonials: s.cfg.Catalog.Testimonials,
		Contact:      s.cfg.Catalog.Contact,
		MapURL:       catalog.MapURL(s.cfg.Catalog.Contact.Address),
	}
	if err := s.cfg.Loop.Do(r.Context(), func() { data.View = s.cfg.Products.View() }); err != nil {
		s.logger.Warn("rendering page without products", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("failed to render page", "error", err)
	}
}

var pageFuncs = template.FuncMap{
	"price":       catalog.FormatPrice,
	"initials":    catalog.Initials,
	"description": catalog.RenderDescription,
	"stars":       stars,
}

// stars draws a rating as five filled or empty star glyphs.
func stars(rating int) string {
	filled, empty := catalog.Stars(rating)
	return strings.Repeat("★", filled) + strings.Repeat("☆", empty)
}
