package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/legadomuebles/legado/internal/uistate"
)

// handleSSE streams state changes via Server-Sent Events.
//
// The first event is a "snapshot" of the whole state, followed by one
// "change" event per store change. Each client has a bounded buffer; when
// it is full, changes are dropped for that client rather than holding up
// the loop. Writes carry a deadline so a stalled client cannot block its
// handler past shutdown.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeEvent := func(event string, data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return err
		}
		return rc.Flush()
	}

	ch := make(chan uistate.Change, sseBuffer)
	var (
		unsubscribe func()
		snapshot    map[string]any
	)
	// subscribe and snapshot in the same task so no change falls between them
	err := s.cfg.Loop.Do(r.Context(), func() {
		unsubscribe = uistate.SubscribeChanges(s.cfg.Store, nil, func(c uistate.Change) {
			select {
			case ch <- c:
			default:
				s.cfg.Metrics.SSEDropped()
			}
		})
		snapshot = s.cfg.Store.Snapshot()
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer unsubscribe()
	defer s.cfg.Metrics.SSEConnected()()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("failed to encode snapshot", "error", err)
		return
	}
	if err := writeEvent("snapshot", data); err != nil {
		return
	}

	for {
		select {
		case change := <-ch:
			data, err := json.Marshal(change)
			if err != nil {
				s.logger.Warn("failed to encode change", "key", change.Key, "error", err)
				continue
			}
			if err := writeEvent("change", data); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on client disconnect and, through BaseContext, on shutdown
			return
		}
	}
}
