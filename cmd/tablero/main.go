package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "time/tzdata" // Market timezone on hosts without zoneinfo.

	"tablero/internal/config"
)

const defaultConfigPath = "config/tablero.yaml"

var (
	cfgPath  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "tablero",
		Short: "Live market tables with change highlights",
		Long: `tablero polls market-data endpoints once a second and shows each
stream as a table, briefly highlighting cells whose value went up or down.`,
		SilenceUsage: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $TABLERO_CONFIG or "+defaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")

	rootCmd.AddCommand(watchCmd, serveCmd, exportCmd, statusCmd)
}

// loadConfig resolves the config path and loads it. A missing file at the
// default location falls back to the built-in configuration.
func loadConfig() (*config.Config, error) {
	path := cfgPath
	explicit := path != ""
	if !explicit {
		if p := os.Getenv("TABLERO_CONFIG"); p != "" {
			path, explicit = p, true
		} else {
			path = defaultConfigPath
		}
	}

	var cfg *config.Config
	var err error
	if _, statErr := os.Stat(path); statErr != nil && !explicit && os.IsNotExist(statErr) {
		cfg, err = config.Default()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}
