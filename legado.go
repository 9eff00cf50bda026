package legado

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/legadomuebles/legado/internal/catalog"
	"github.com/legadomuebles/legado/internal/controller"
	"github.com/legadomuebles/legado/internal/loop"
	"github.com/legadomuebles/legado/internal/messaging"
	"github.com/legadomuebles/legado/internal/metrics"
	"github.com/legadomuebles/legado/internal/persist"
	"github.com/legadomuebles/legado/internal/poller"
	"github.com/legadomuebles/legado/internal/server"
	"github.com/legadomuebles/legado/internal/store"
	"github.com/legadomuebles/legado/internal/uistate"
	"github.com/legadomuebles/legado/site"
)

const (
	defaultPort       = 8080
	defaultTitle      = "Legado Muebles"
	defaultMaxHistory = 10
)

// Change describes one state change delivered to change callbacks.
type Change struct {
	Key      string
	Value    any
	Previous any
	At       time.Time
}

// App is the storefront orchestrator.
//
// App owns the UI state store, the controllers that change it and the HTTP
// server that exposes them. It is created with [New] and run with
// [App.Start]:
//
//	app, err := legado.New(legado.WithPort(8080))
//	if err != nil {
//	    slog.Error("failed to create app", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	app.Start(ctx) // blocks until ctx is cancelled
type App struct {
	cfg     appConfig
	logger  *slog.Logger
	catalog *catalog.Catalog
	storage persist.Storage
	link    messaging.Link
}

// New creates an [App]. Defaults:
//   - Port: 8080
//   - History: 10 changes
//   - Products per page: 8
//   - Catalog: the embedded one
//   - Storage: in memory
//
// Returns an error if an option is invalid, the catalog file does not load
// or the storage file cannot be opened.
func New(opts ...Option) (*App, error) {
	cfg := appConfig{
		title:          defaultTitle,
		port:           defaultPort,
		whatsAppNumber: messaging.DefaultNumber,
		perPage:        catalog.DefaultPerPage,
		maxHistory:     defaultMaxHistory,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	cat := catalog.Default()
	if cfg.catalogPath != "" {
		c, err := catalog.LoadFile(cfg.catalogPath)
		if err != nil {
			return nil, err
		}
		cat = c
	}

	var storage persist.Storage = persist.NewMemory(logger)
	if cfg.storagePath != "" {
		file, err := persist.OpenFile(cfg.storagePath, logger)
		if err != nil {
			return nil, err
		}
		storage = file
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		catalog: cat,
		storage: storage,
		link:    messaging.Link{Number: cfg.whatsAppNumber, BaseURL: messaging.DefaultBaseURL},
	}, nil
}

// Port returns the configured HTTP port.
func (a *App) Port() int { return a.cfg.port }

// Title returns the page title.
func (a *App) Title() string { return a.cfg.title }

// Catalog returns the catalog the app serves.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// Start wires the event loop, state store, controllers, prober and HTTP
// server, then blocks until ctx is cancelled.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (a *App) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.logger.Info("legado starting",
		"products", len(a.catalog.Products),
		"url", fmt.Sprintf("http://localhost:%d", a.cfg.port),
	)

	m := metrics.New(a.cfg.registry)

	l := loop.New(a.logger)
	l.Start(ctx)
	defer l.Stop()

	dispatch := controller.Dispatch(func(fn func()) {
		if !l.Post(fn) {
			a.logger.Warn("timer update dropped")
		}
	})

	st := uistate.NewStore(
		store.WithMaxHistory(a.cfg.maxHistory),
		store.WithLogger(a.logger),
		store.WithPanicHook(func(key string, _ any) { m.ListenerPanicked(key) }),
	)
	st.SubscribeAll(func(_, _ any, key string) { m.StateChanged(key) })
	if len(a.cfg.changeCallbacks) > 0 {
		uistate.SubscribeChanges(st, nil, func(c uistate.Change) {
			change := Change{Key: c.Key, Value: c.Value, Previous: c.Previous, At: c.At}
			for _, cb := range a.cfg.changeCallbacks {
				invokeCallbackSafe(cb, change, a.logger)
			}
		})
	}

	toast := controller.NewToast(st, dispatch)
	theme := controller.NewTheme(st, a.storage)
	products := controller.NewProducts(st, a.catalog, a.link, a.storage, a.cfg.perPage)
	carousel := controller.NewCarousel(st, len(a.catalog.Testimonials), dispatch,
		controller.WithReducedMotion(a.cfg.reducedMotion))
	connectivity := controller.NewConnectivity(st, toast, a.logger)

	if err := l.Do(ctx, func() { theme.Load(a.cfg.systemDark) }); err != nil {
		return fmt.Errorf("load theme: %w", err)
	}

	srv, err := server.New(server.Config{
		Port:    a.cfg.port,
		Title:   a.cfg.title,
		Store:   st,
		Loop:    l,
		Catalog: a.catalog,
		Controllers: server.Controllers{
			Theme:        theme,
			Menu:         controller.NewMenu(st),
			Search:       controller.NewSearch(st, a.catalog, products),
			Lightbox:     controller.NewLightbox(st),
			Products:     products,
			Header:       controller.NewHeader(st),
			Testimonials: carousel,
			Toast:        toast,
			Quote:        controller.NewQuoteForm(a.storage, a.link, toast, a.logger),
		},
		Assets:  site.Assets,
		Metrics: m,
		Logger:  a.logger,
	})
	if err != nil {
		return err
	}

	carousel.StartAutoplay()
	defer carousel.StopAutoplay()

	var wg sync.WaitGroup
	if a.cfg.probeURL != "" {
		var probeOpts []poller.ProberOption
		if a.cfg.probeTimeout > 0 {
			probeOpts = append(probeOpts, poller.WithProbeTimeout(a.cfg.probeTimeout))
		}
		prober := poller.NewProber(a.cfg.probeURL, a.cfg.probeInterval, a.logger, probeOpts...)
		prober.Start(ctx)
		a.logger.Info("connectivity probe configured", "url", a.cfg.probeURL, "interval", prober.Interval().String())

		observed := make(chan poller.ProbeResult)
		wg.Add(2)
		go func() {
			defer wg.Done()
			defer close(observed)
			for res := range prober.Results() {
				m.ObserveProbe(res.Online, res.Latency)
				select {
				case observed <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			connectivity.Run(ctx, observed, dispatch)
		}()
		defer func() {
			prober.Stop()
			wg.Wait()
		}()
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	a.logger.Info("legado stopped")
	return nil
}

// invokeCallbackSafe calls a change callback with panic recovery.
// Panics are logged with a correlation id but do not propagate.
func invokeCallbackSafe(cb func(Change), change Change, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("change callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", r,
				"key", change.Key,
				"stack", string(debug.Stack()),
			)
		}
	}()
	cb(change)
}
