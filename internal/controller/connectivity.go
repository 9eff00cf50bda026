package controller

import (
	"context"
	"log/slog"

	"github.com/legadomuebles/legado/internal/poller"
	"github.com/legadomuebles/legado/internal/store"
	"github.com/legadomuebles/legado/internal/uistate"
)

// ConnectionRestoredMessage is the toast shown when the connection returns.
const ConnectionRestoredMessage = "Conexión restaurada"

// Connectivity mirrors the network status into the state.
type Connectivity struct {
	store  *store.Store
	toast  *Toast
	logger *slog.Logger
}

func NewConnectivity(s *store.Store, toast *Toast, logger *slog.Logger) *Connectivity {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connectivity{store: s, toast: toast, logger: logger}
}

// HandleOnline marks the site online and announces it.
func (c *Connectivity) HandleOnline() {
	uistate.IsOnline.Set(c.store, true)
	if c.toast != nil {
		c.toast.Show(ConnectionRestoredMessage, uistate.ToastSuccess, 0)
	}
}

// HandleOffline marks the site offline. The page shows its offline banner
// while isOnline is false.
func (c *Connectivity) HandleOffline() {
	uistate.IsOnline.Set(c.store, false)
}

// Apply calls the handler for online when it differs from the current state.
func (c *Connectivity) Apply(online bool) {
	if uistate.IsOnline.Get(c.store) == online {
		return
	}
	if online {
		c.HandleOnline()
		return
	}
	c.HandleOffline()
}

// Run feeds probe results into [Connectivity.Apply] through dispatch until
// ctx ends or results is closed.
func (c *Connectivity) Run(ctx context.Context, results <-chan poller.ProbeResult, dispatch Dispatch) {
	dispatch = orInline(dispatch)
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-results:
			if !ok {
				return
			}
			if res.Err != nil {
				c.logger.Debug("connectivity probe failed", "error", res.Err, "latency", res.Latency)
			}
			online := res.Online
			dispatch(func() { c.Apply(online) })
		}
	}
}
