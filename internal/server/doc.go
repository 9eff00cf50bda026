// Package server exposes the storefront over HTTP.
//
// The server renders the page shell at "/" and offers a JSON API under
// "/api" for every controller:
//
//   - GET /api/state: snapshot of the UI state
//   - GET /api/events: Server-Sent Events stream of state changes
//   - POST /api/products/...: catalog filtering, sorting and paging
//   - POST /api/quote: quote form submission
//
// Every request that reads or writes controller state runs on the shared
// [loop.Loop], so HTTP clients, timers and the connectivity prober never
// race on the store. The server shuts down gracefully when the context
// passed to [Server.Start] is cancelled, with a 5-second timeout for
// in-flight requests.
package server
