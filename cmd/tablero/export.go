package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tablero/internal/journal"
	"tablero/internal/util"
)

var (
	exportStream string
	exportOut    string

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export journaled polls to Parquet",
		RunE:  runExport,
	}
)

func init() {
	exportCmd.Flags().StringVar(&exportStream, "stream", "", "stream to export (default: all streams)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: <journal.export_dir>/<stream>/<date>.parquet)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled {
		return fmt.Errorf("journal is disabled; set journal.enabled or TABLERO_SQLITE_PATH")
	}
	logger := util.NewLogger(cfg.Logging.Level, "text", os.Stderr)

	if exportStream != "" {
		if _, ok := cfg.Stream(exportStream); !ok {
			return fmt.Errorf("unknown stream %q", exportStream)
		}
	}

	j, err := journal.Open(cfg.Journal.SQLitePath, logger)
	if err != nil {
		return err
	}
	defer j.Close()

	now := time.Now()
	path := exportOut
	if path == "" {
		path = journal.ExportPath(cfg.Journal.ExportDir, exportStream, now)
	}

	n, err := j.Export(cmd.Context(), exportStream, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s polls to %s in %s\n",
		humanize.Comma(int64(n)), path, time.Since(now).Round(time.Millisecond))
	return nil
}
