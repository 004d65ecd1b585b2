package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tablero/internal/feed"
	"tablero/internal/httpapi"
	"tablero/internal/live"
	"tablero/internal/util"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll every stream and serve the tables over HTTP and websocket",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	util.SetDefault(logger)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	board := live.NewBoard(a.panels, cfg.Dashboard.HighlightWindow, logger)
	defer board.Close()

	var history httpapi.History
	if a.journal != nil {
		history = a.journal
	}

	pollers := make([]*feed.Poller, 0, len(a.panels))
	for _, s := range cfg.Enabled() {
		var handler feed.Handler = board
		if a.journal != nil && s.Kind != "replay" {
			handler = feed.Handlers(board, a.journal)
		}
		pollers = append(pollers, feed.NewPoller(s.Name,
			feed.PollerConfig{Interval: s.Interval, Timeout: cfg.Upstream.Timeout},
			a.sources[s.Name], handler, logger))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           httpapi.NewBoardServer(board, history, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	for _, p := range pollers {
		if err := p.Start(gctx); err != nil {
			return fmt.Errorf("starting poller %s: %w", p.Name(), err)
		}
	}

	g.Go(func() error {
		logger.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, p := range pollers {
			if err := p.Stop(sctx); err != nil {
				logger.Warn("stopping poller", "stream", p.Name(), "error", err)
			}
		}
		// Closing the board ends every websocket stream before Shutdown
		// waits on the remaining connections.
		board.Close()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
