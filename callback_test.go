package legado

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/legadomuebles/legado/internal/uistate"
)

// safeBuffer is a bytes.Buffer that can be written from the loop goroutine
// and read from the test.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWithChangeCallback_InvokedOnChange(t *testing.T) {
	var (
		mu      sync.Mutex
		changes []Change
	)
	app, err := New(
		WithPort(freePort(t)),
		WithLogger(testLogger()),
		WithChangeCallback(func(c Change) {
			mu.Lock()
			changes = append(changes, c)
			mu.Unlock()
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	base, stop := run(t, app)

	post(t, base+"/api/theme/toggle")
	if err := stop(); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	var theme []Change
	for _, c := range changes {
		if c.Key == uistate.KeyTheme {
			theme = append(theme, c)
		}
	}
	if len(theme) != 1 {
		t.Fatalf("theme changes = %+v, want exactly one", theme)
	}
	if theme[0].Value != uistate.ThemeDark || theme[0].Previous != uistate.ThemeLight {
		t.Errorf("change = %+v, want light -> dark", theme[0])
	}
	if theme[0].At.IsZero() {
		t.Error("change should carry a timestamp")
	}
}

func TestWithChangeCallback_MultipleInOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func(Change) {
		return func(c Change) {
			if c.Key != "mobileMenuOpen" {
				return
			}
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	app, err := New(
		WithPort(freePort(t)),
		WithLogger(testLogger()),
		WithChangeCallback(record("first")),
		WithChangeCallback(record("second")),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	base, stop := run(t, app)
	post(t, base+"/api/overlays/menu/open")
	_ = stop()

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(order, ",") != "first,second" {
		t.Errorf("order = %v, want [first second]", order)
	}
}

func TestWithChangeCallback_PanicRecovered(t *testing.T) {
	var logs safeBuffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	var after int
	var mu sync.Mutex
	app, err := New(
		WithPort(freePort(t)),
		WithLogger(logger),
		WithChangeCallback(func(Change) { panic("boom") }),
		WithChangeCallback(func(c Change) {
			if c.Key == "mobileMenuOpen" {
				mu.Lock()
				after++
				mu.Unlock()
			}
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	base, stop := run(t, app)

	post(t, base+"/api/overlays/menu/toggle")

	// the app keeps serving after a callback panic
	resp, err := http.Get(base + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	_ = stop()

	mu.Lock()
	defer mu.Unlock()
	if after != 1 {
		t.Errorf("callback after the panicking one ran %d times, want 1", after)
	}
	out := logs.String()
	if !strings.Contains(out, "change callback panicked") || !strings.Contains(out, "correlation_id") {
		t.Errorf("log output missing panic record: %s", out)
	}
}

func TestInvokeCallbackSafe(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	invokeCallbackSafe(func(Change) { panic("kaboom") }, Change{Key: "toast"}, logger)

	if !strings.Contains(logs.String(), "key=toast") {
		t.Errorf("log should name the key: %s", logs.String())
	}
}
