// Package poller checks whether the storefront can reach its upstream.
//
// [Client] wraps net/http with per-request timeouts, a capped body read and
// a pooled transport. [Prober] uses it to check one URL on an interval and
// publishes a [ProbeResult] per check, which the connectivity controller
// turns into the online/offline state.
package poller
