// Package main provides the evidence-copier CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alianza/evidence-copier/internal/config"
	"github.com/alianza/evidence-copier/internal/logging"
	"github.com/alianza/evidence-copier/internal/metrics"
)

// Version and GitSHA are stamped at build time via -ldflags.
var (
	Version = "0.1.0"
	GitSHA  = "dev"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// jsonOutput switches command output to JSON.
	jsonOutput bool

	// cfg is the loaded configuration, initialized on startup.
	cfg config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "evidence-copier",
	Short: "Evidence copier captures and archives search evidence",
	Long: `Evidence copier drives a browser through find-in-page searches over a
shared document, capturing a screenshot per name, and archives the
evidence into per-sector, per-ally remote folders with a durable index
and a tamper-evident audit trail.`,
	PersistentPreRunE: initApp,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "evidence-copier.yaml", "config file (missing file falls back to defaults and EVIDENCE_* env)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(sectorsCmd)
	rootCmd.AddCommand(bundleCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("evidence-copier %s (%s)\n", Version, GitSHA)
	},
}

// initApp loads configuration and wires the ambient stack.
func initApp(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Setup(logging.Config{Format: cfg.Log.Format, Level: cfg.Log.Level})
	metrics.Init("evidence_copier")

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartServer(cfg.Metrics.Address); err != nil {
				logging.Component("metrics").Error("metrics server exited", "error", err)
			}
		}()
	}

	return nil
}
