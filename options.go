package legado

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// appConfig holds mutable state during App construction.
type appConfig struct {
	title           string
	port            int
	logger          *slog.Logger
	whatsAppNumber  string
	storagePath     string
	catalogPath     string
	perPage         int
	maxHistory      int
	probeURL        string
	probeInterval   time.Duration
	probeTimeout    time.Duration
	systemDark      bool
	reducedMotion   bool
	registry        *prometheus.Registry
	changeCallbacks []func(Change)
}

// Option configures an [App] during construction. Options return an error
// if validation fails.
type Option func(*appConfig) error

// WithPort sets the HTTP port. Defaults to 8080.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *appConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the page title. Defaults to "Legado Muebles".
func WithTitle(title string) Option {
	return func(cfg *appConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithWhatsAppNumber sets the number inquiries and quotes are sent to, in
// international format without the leading "+".
func WithWhatsAppNumber(number string) Option {
	return func(cfg *appConfig) error {
		if number == "" {
			return errors.New("whatsapp number cannot be empty")
		}
		for _, r := range number {
			if r < '0' || r > '9' {
				return errors.New("whatsapp number must contain digits only")
			}
		}
		cfg.whatsAppNumber = number
		return nil
	}
}

// WithStorage persists the theme, favorites, recent views and the quote
// draft to a JSON file at path. Without it they are kept in memory.
func WithStorage(path string) Option {
	return func(cfg *appConfig) error {
		if path == "" {
			return errors.New("storage path cannot be empty")
		}
		cfg.storagePath = path
		return nil
	}
}

// WithCatalog loads the catalog from a YAML file instead of the embedded
// one. The file is validated by [New].
func WithCatalog(path string) Option {
	return func(cfg *appConfig) error {
		if path == "" {
			return errors.New("catalog path cannot be empty")
		}
		cfg.catalogPath = path
		return nil
	}
}

// WithProductsPerPage sets how many products each "load more" reveals.
// Defaults to 8.
func WithProductsPerPage(n int) Option {
	return func(cfg *appConfig) error {
		if n <= 0 {
			return errors.New("products per page must be positive")
		}
		cfg.perPage = n
		return nil
	}
}

// WithMaxHistory sets how many state changes are retained. Defaults to 10.
func WithMaxHistory(n int) Option {
	return func(cfg *appConfig) error {
		if n <= 0 {
			return errors.New("max history must be positive")
		}
		cfg.maxHistory = n
		return nil
	}
}

// WithProbe enables the connectivity prober. url is checked every interval
// and the outcome drives the isOnline state. An interval of zero uses the
// prober default of 30s.
func WithProbe(url string, interval time.Duration) Option {
	return func(cfg *appConfig) error {
		if url == "" {
			return errors.New("probe url cannot be empty")
		}
		if interval < 0 {
			return errors.New("probe interval cannot be negative")
		}
		cfg.probeURL = url
		cfg.probeInterval = interval
		return nil
	}
}

// WithProbeTimeout bounds each connectivity check. Defaults to 5s.
func WithProbeTimeout(d time.Duration) Option {
	return func(cfg *appConfig) error {
		if d <= 0 {
			return errors.New("probe timeout must be positive")
		}
		cfg.probeTimeout = d
		return nil
	}
}

// WithSystemDark reports the visitor's system colour preference. It picks
// the initial theme when none was saved.
func WithSystemDark(dark bool) Option {
	return func(cfg *appConfig) error {
		cfg.systemDark = dark
		return nil
	}
}

// WithReducedMotion disables testimonial autoplay.
func WithReducedMotion(reduced bool) Option {
	return func(cfg *appConfig) error {
		cfg.reducedMotion = reduced
		return nil
	}
}

// WithRegistry registers the metrics on registry instead of a private one.
// The same registry is served at /metrics.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(cfg *appConfig) error {
		if registry == nil {
			return errors.New("registry cannot be nil")
		}
		cfg.registry = registry
		return nil
	}
}

// WithChangeCallback registers a function called after every state change.
//
// Callbacks run on the event loop in registration order, after the store's
// own listeners for the key. They must not block. Panics are recovered and
// logged.
//
// Nil callbacks are silently ignored.
func WithChangeCallback(cb func(Change)) Option {
	return func(cfg *appConfig) error {
		if cb == nil {
			return nil
		}
		cfg.changeCallbacks = append(cfg.changeCallbacks, cb)
		return nil
	}
}
