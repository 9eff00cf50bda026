// Standalone connectivity target for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/legado serve -c example/legado.yaml
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

func main() {
	fmt.Println("Mock connectivity target starting on :9999")
	fmt.Println("GET /generate_204 answers 204, or 503 while the link is down")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var down atomic.Bool
	go func() {
		for {
			time.Sleep(time.Duration(20+rand.Intn(41)) * time.Second)
			down.Store(!down.Load())
			slog.Info("link flipped", "online", !down.Load())
		}
	}()

	http.HandleFunc("/generate_204", func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
