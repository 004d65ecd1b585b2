package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"tablero/internal/live"
	"tablero/internal/tui"
	"tablero/internal/util"
	"tablero/pkg/tablero"
)

var (
	watchRemote string

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Show the live tables in the terminal",
		Long: `watch polls every enabled stream itself and renders the tables in the
terminal. With --remote it mirrors a running "tablero serve" instead.`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVar(&watchRemote, "remote", "", "base URL of a tablero server to mirror (e.g. http://host:8090)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := util.OpenLogFile(cfg.Logging.Dir, "tablero-watch", time.Now())
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, "text", logFile)
	util.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := tui.Options{
		Window:  cfg.Dashboard.HighlightWindow,
		Timeout: cfg.Upstream.Timeout,
		Logger:  logger,
	}

	var model tui.Model
	if watchRemote != "" {
		url := tablero.NewClient(watchRemote).WebsocketURL()
		logger.Info("mirroring remote board", "url", url)
		model = tui.NewRemote(ctx, live.NewClient(url, logger), url, opts)
	} else {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		streams := make([]tui.Stream, 0, len(a.panels))
		for _, p := range a.panels {
			s, _ := cfg.Stream(p.Name)
			streams = append(streams, tui.Stream{
				Panel:    p,
				Source:   a.recordingSource(s),
				Interval: s.Interval,
			})
		}
		model = tui.New(ctx, streams, opts)
	}

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}
