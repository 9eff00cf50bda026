// Package legado serves the Legado Muebles storefront: a furniture catalog
// with category filters, search, a testimonial carousel and WhatsApp
// hand-offs for product inquiries and quote requests.
//
// # Quick Start
//
//	app, _ := legado.New(legado.WithPort(8080))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	app.Start(ctx) // blocks until ctx is cancelled
//
// # Configuration
//
//	app, err := legado.New(
//	    legado.WithPort(9090),
//	    legado.WithStorage("/var/lib/legado/state.json"),
//	    legado.WithProbe("https://www.google.com/generate_204", 30*time.Second),
//	    legado.WithChangeCallback(func(c legado.Change) {
//	        log.Printf("%s: %v -> %v", c.Key, c.Previous, c.Value)
//	    }),
//	)
//
// # State model
//
// All UI state lives in one observable key/value store. Controllers own
// groups of keys (theme, overlays, catalog view, header, connectivity,
// toasts) and every change runs on a single event loop goroutine, so a
// change and all of its listeners complete before the next one starts.
// Clients follow the state through GET /api/state and the Server-Sent
// Events stream at GET /api/events.
//
// # Architecture
//
//   - internal/store: observable store with per-key and wildcard listeners
//     and bounded change history
//   - internal/uistate: typed state shape and field accessors
//   - internal/loop: single-goroutine task runner
//   - internal/controller: state owners for each UI concern
//   - internal/catalog: embedded catalog, filtering, sorting and search
//   - internal/persist: durable preferences (memory or JSON file)
//   - internal/poller: connectivity prober
//   - internal/server: chi router, JSON API and SSE
//   - internal/metrics: Prometheus collectors
//   - site: embedded page shell
//
// The internal packages are not part of the public API and may change
// without notice.
package legado
