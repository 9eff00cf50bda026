package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/legadomuebles/legado"
)

func main() {
	// start the flaky connectivity target (see mock_server.go)
	go StartMockProbeServer(":9999")
	time.Sleep(100 * time.Millisecond)

	app, err := legado.New(
		legado.WithPort(8080),
		legado.WithStorage("./data/state.json"),
		legado.WithProbe("http://localhost:9999/generate_204", 5*time.Second),
		legado.WithChangeCallback(func(c legado.Change) {
			if c.Key == "isOnline" {
				slog.Info("connectivity changed", "online", c.Value)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create app", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  Legado Muebles demo")
	fmt.Println()
	fmt.Println("  Site:     http://localhost:8080")
	fmt.Println("  State:    http://localhost:8080/api/state")
	fmt.Println("  Events:   curl -N http://localhost:8080/api/events")
	fmt.Println("  Metrics:  http://localhost:8080/metrics")
	fmt.Println()
	fmt.Println("  The mock link drops every 20-60s, watch isOnline flip.")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		slog.Error("legado error", "error", err)
		os.Exit(1)
	}
}
