package main

import (
	"fmt"

	"github.com/legadomuebles/legado"
	"github.com/legadomuebles/legado/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a legado configuration file without starting the server.

This command parses the YAML, expands environment variables, validates
all fields and loads the catalog file, if one is set. It's useful for CI/CD
pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  legado validate -c legado.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// storage is opened by serve only, validate must not create directories
	check := *cfg
	check.StoragePath = ""
	app, err := legado.New(config.BuildOptions(&check, nil)...)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cat := app.Catalog()
	probe := "disabled"
	if cfg.Probe != nil {
		probe = fmt.Sprintf("%s every %s", cfg.Probe.URL, cfg.Probe.Interval.Duration())
	}
	storage := "memory"
	if cfg.StoragePath != "" {
		storage = cfg.StoragePath
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:     %d\n", app.Port())
	fmt.Fprintf(out, "  Title:    %s\n", app.Title())
	fmt.Fprintf(out, "  Catalog:  %d products in %d categories\n", len(cat.Products), len(cat.Categories))
	fmt.Fprintf(out, "  Storage:  %s\n", storage)
	fmt.Fprintf(out, "  Probe:    %s\n", probe)

	return nil
}
