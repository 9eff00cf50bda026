package config

import (
	"log/slog"

	"github.com/legadomuebles/legado"
)

// BuildOptions converts parsed configuration into [legado.Option] values.
// logger, when non-nil, is passed through [legado.WithLogger].
func BuildOptions(cfg *Config, logger *slog.Logger) []legado.Option {
	opts := []legado.Option{
		legado.WithPort(cfg.Port),
	}

	if logger != nil {
		opts = append(opts, legado.WithLogger(logger))
	}
	if cfg.Title != "" {
		opts = append(opts, legado.WithTitle(cfg.Title))
	}
	if cfg.WhatsAppNumber != "" {
		opts = append(opts, legado.WithWhatsAppNumber(cfg.WhatsAppNumber))
	}
	if cfg.StoragePath != "" {
		opts = append(opts, legado.WithStorage(cfg.StoragePath))
	}
	if cfg.CatalogFile != "" {
		opts = append(opts, legado.WithCatalog(cfg.CatalogFile))
	}
	if cfg.ProductsPerPage > 0 {
		opts = append(opts, legado.WithProductsPerPage(cfg.ProductsPerPage))
	}
	if cfg.MaxHistory > 0 {
		opts = append(opts, legado.WithMaxHistory(cfg.MaxHistory))
	}

	if p := cfg.Probe; p != nil {
		opts = append(opts, legado.WithProbe(p.URL, p.Interval.Duration()))
		if p.Timeout > 0 {
			opts = append(opts, legado.WithProbeTimeout(p.Timeout.Duration()))
		}
	}

	return opts
}
