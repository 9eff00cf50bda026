package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/legadomuebles/legado/internal/catalog"
	"github.com/legadomuebles/legado/internal/controller"
	"github.com/legadomuebles/legado/internal/loop"
	"github.com/legadomuebles/legado/internal/metrics"
	"github.com/legadomuebles/legado/internal/store"
	"github.com/legadomuebles/legado/internal/timing"
)

const (
	// sseWriteTimeout bounds a single SSE write so a stalled client cannot
	// pin its handler goroutine. Must be <= shutdownTimeout.
	sseWriteTimeout = 5 * time.Second

	// sseBuffer is the number of changes queued per SSE client before new
	// ones are dropped.
	sseBuffer = 64

	shutdownTimeout = 5 * time.Second

	// maxBodyBytes caps JSON request bodies.
	maxBodyBytes = 64 << 10

	defaultTitle = "Legado Muebles"
)

// Controllers are the state owners the API drives.
type Controllers struct {
	Theme        *controller.Theme
	Menu         *controller.Menu
	Search       *controller.Search
	Lightbox     *controller.Lightbox
	Products     *controller.Products
	Header       *controller.Header
	Testimonials *controller.Carousel
	Toast        *controller.Toast
	Quote        *controller.QuoteForm
}

// Config holds everything a [Server] serves.
type Config struct {
	Port    int
	Title   string
	Store   *store.Store
	Loop    *loop.Loop
	Catalog *catalog.Catalog
	Controllers

	// Assets holds assets/index.html. Nil disables the page shell.
	Assets  fs.FS
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Server handles HTTP requests for the storefront page and API.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	page       *template.Template
	httpServer *http.Server

	scroll *timing.Throttler[scrollRequest]
	resize *timing.Debouncer[int]
	search *timing.Debouncer[string]
}

// New creates a [Server]. It fails only when the page template in
// cfg.Assets cannot be parsed.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	s := &Server{cfg: cfg, logger: cfg.Logger}

	if cfg.Assets != nil {
		page, err := template.New("index.html").Funcs(pageFuncs).ParseFS(cfg.Assets, "assets/index.html")
		if err != nil {
			return nil, fmt.Errorf("parse page template: %w", err)
		}
		s.page = page
	}

	// scroll, resize and catalog search arrive at input rate; all are
	// applied on the loop from timer goroutines
	s.scroll = timing.Throttle(timing.DefaultThrottle, func(req scrollRequest) {
		s.post(func() { s.cfg.Header.Update(req.ScrollY, req.DocHeight, req.Viewport) })
	})
	s.resize = timing.Debounce(timing.ResizeDebounce, func(width int) {
		s.post(func() { s.cfg.Menu.HandleResize(width) })
	})
	s.search = timing.Debounce(timing.SearchDebounce, func(query string) {
		s.post(func() { s.cfg.Products.SetSearch(query) })
	})
	return s, nil
}

// Handler returns the router with its middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())

	if s.page != nil {
		r.Get("/", s.handlePage)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Patch("/state", s.handlePatchState)
		r.Get("/state/{key}", s.handleStateKey)
		r.Get("/history", s.handleHistory)
		r.Get("/events", s.handleSSE)

		r.Post("/theme/toggle", s.handleThemeToggle)
		r.Post("/theme/system", s.handleThemeSystem)

		r.Get("/categories", s.handleCategories)
		r.Get("/products", s.handleProducts)
		r.Post("/products/filter", s.handleFilter)
		r.Post("/products/sort", s.handleSort)
		r.Post("/products/search", s.handleProductSearch)
		r.Post("/products/more", s.handleLoadMore)
		r.Post("/products/{id}/inquiry", s.handleInquiry)
		r.Post("/products/{id}/favorite", s.handleFavorite)
		r.Get("/favorites", s.handleFavorites)
		r.Get("/recent", s.handleRecent)

		r.Get("/search", s.handleSearch)
		r.Post("/search/select/{id}", s.handleSearchSelect)
		r.Post("/overlays/{name}/{action}", s.handleOverlay)
		r.Post("/menu/anchor", s.handleAnchor)
		r.Post("/lightbox", s.handleLightboxOpen)
		r.Delete("/lightbox", s.handleLightboxClose)
		r.Post("/keys/escape", s.handleEscape)
		r.Post("/scroll", s.handleScroll)
		r.Post("/resize", s.handleResize)

		r.Get("/testimonials", s.handleTestimonials)
		r.Post("/testimonials/next", s.handleTestimonialStep(1))
		r.Post("/testimonials/prev", s.handleTestimonialStep(-1))
		r.Get("/gallery", s.handleGallery)
		r.Get("/contact", s.handleContact)

		r.Get("/quote/draft", s.handleDraft)
		r.Put("/quote/draft", s.handleSaveDraft)
		r.Post("/quote", s.handleQuote)
	})
	return r
}

// Start begins serving in a background goroutine.
//
// Start is non-blocking and returns once the listener is bound. The server
// runs until ctx is cancelled, then shuts down with a 5-second timeout.
// Returns an error if the port cannot be bound.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx, so SSE handlers end on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.scroll.Cancel()
		s.resize.Cancel()
		s.search.Cancel()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	s.logger.Info("http server listening", "addr", ln.Addr().String())
	return nil
}

// post queues fn on the loop from a timer goroutine.
func (s *Server) post(fn func()) {
	if !s.cfg.Loop.Post(fn) {
		s.logger.Warn("deferred update dropped")
	}
}
