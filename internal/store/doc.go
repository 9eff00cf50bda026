// Package store provides the observable key-value store that holds the
// storefront's shared UI state.
//
// The store keeps a flat map of state keys to arbitrary values, notifies
// listeners synchronously when a key changes, and records a bounded history
// of previous values. It is the single source of truth for cross-controller
// state such as the active theme, the catalog filter, and overlay flags.
//
// The main components are:
//
//   - [Store]: the state map, listener registry and change history
//   - [Listener]: callback invoked with (value, previous, key) on change
//   - [Record]: a history entry capturing a key's previous value
//   - [Wildcard]: the reserved key whose listeners see every change
//
// Notification is depth-first and re-entrant: a listener that calls
// [Store.Set] sees that nested call complete, including its own fan-out,
// before the outer fan-out resumes. The store's maps are guarded by a mutex
// that is never held while listeners run, so reads are safe from any
// goroutine. Ordering of writes across goroutines is the caller's concern;
// the application funnels all writes through a single event loop.
//
// Listener panics are recovered, logged with the originating key and a
// correlation ID, and never reach the caller of [Store.Set].
package store
