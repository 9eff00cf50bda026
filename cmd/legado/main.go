// Package main is the entry point for the legado CLI.
//
// The storefront can be embedded as a library or run as a standalone binary
// configured with YAML. This CLI is the standalone binary.
//
// Usage:
//
//	legado serve -c legado.yaml    # Start the storefront
//	legado validate -c legado.yaml # Validate configuration
//	legado version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time via ldflags, e.g. go build -ldflags "-X main.version=1.0.0".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "legado",
	Short: "Legado Muebles storefront server",
	Long: `legado serves the Legado Muebles catalog with a server-side UI state
store, live state changes over Server-Sent Events and WhatsApp quote links.

Quick start:
  1. Create a config file (legado.yaml)
  2. Run: legado serve -c legado.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  whatsapp_number: "5492604364497"
  storage_path: ./data/state.json
  probe:
    url: https://www.google.com/generate_204
    interval: 30s`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this legado binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "legado %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
