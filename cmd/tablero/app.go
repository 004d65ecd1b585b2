package main

import (
	"context"
	"log/slog"

	"tablero/internal/config"
	"tablero/internal/dashboard"
	"tablero/internal/domain"
	"tablero/internal/feed"
	"tablero/internal/journal"
)

// app is the wiring shared by every command that polls: one panel and one
// source per enabled stream, plus the optional journal.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	panels  []*dashboard.Panel
	sources map[string]feed.Source
	journal *journal.SQLiteJournal
}

func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, sources: make(map[string]feed.Source)}

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		a.journal = j
	}

	deps := feed.Deps{
		Client: feed.NewUpstreamClient(cfg, log),
		Logger: log,
	}
	if cfg.Alpaca.Enabled() {
		deps.Broker = feed.NewAlpacaClient(cfg.Alpaca)
	}
	if a.journal != nil {
		deps.Loader = a.journal
	}

	panels, err := dashboard.NewPanels(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.panels = panels

	for _, s := range cfg.Enabled() {
		src, err := feed.NewSource(s, deps)
		if err != nil {
			a.close()
			return nil, err
		}
		a.sources[s.Name] = src
	}

	log.Info("streams configured", "count", len(a.panels), "upstream", cfg.Upstream.BaseURL,
		"journal", a.journal != nil, "alpaca", deps.Broker != nil)
	return a, nil
}

// recordingSource journals every completed poll of src. Replayed streams
// are never recorded again.
func (a *app) recordingSource(s config.Stream) feed.Source {
	src := a.sources[s.Name]
	if a.journal == nil || s.Kind == "replay" {
		return src
	}
	j := a.journal
	return feed.SourceFunc(func(ctx context.Context) domain.Snapshot {
		snap := src.Poll(ctx)
		if ctx.Err() == nil {
			j.HandleSnapshot(snap)
		}
		return snap
	})
}

func (a *app) close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn("closing journal", "error", err)
		}
	}
}
