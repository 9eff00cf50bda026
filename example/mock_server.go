package main

import (
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// flakyLink answers connectivity probes, switching between online (204) and
// offline (503) every 20-60 seconds.
type flakyLink struct {
	mu           sync.Mutex
	online       bool
	nextChangeAt time.Time
}

func newFlakyLink() *flakyLink {
	return &flakyLink{online: true, nextChangeAt: nextFlip()}
}

func nextFlip() time.Time {
	return time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
}

func (f *flakyLink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// simulate small latency variance
	time.Sleep(time.Duration(20+rand.Intn(80)) * time.Millisecond)

	f.mu.Lock()
	if time.Now().After(f.nextChangeAt) {
		f.online = !f.online
		f.nextChangeAt = nextFlip()
		slog.Info("link flipped", "online", f.online)
	}
	online := f.online
	f.mu.Unlock()

	if !online {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartMockProbeServer serves /generate_204 on addr until the process exits.
// Call it in a goroutine before starting the app.
func StartMockProbeServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/generate_204", newFlakyLink())

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
