package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"tablero/internal/domain"
	"tablero/internal/metrics"
)

// Handler receives every snapshot a poller produces.
type Handler interface {
	HandleSnapshot(snapshot domain.Snapshot)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(domain.Snapshot)

func (f HandlerFunc) HandleSnapshot(s domain.Snapshot) {
	f(s)
}

// Handlers fans every snapshot out to each handler in order. Refresh
// notifications reach the handlers that observe them.
func Handlers(hs ...Handler) Handler { return multiHandler(hs) }

type multiHandler []Handler

func (m multiHandler) HandleSnapshot(s domain.Snapshot) {
	for _, h := range m {
		h.HandleSnapshot(s)
	}
}

func (m multiHandler) SetRefreshing(stream string, v bool) {
	for _, h := range m {
		if r, ok := h.(RefreshObserver); ok {
			r.SetRefreshing(stream, v)
		}
	}
}

// RefreshObserver is optionally implemented by a Handler that wants to know
// when a poll starts and ends.
type RefreshObserver interface {
	SetRefreshing(stream string, refreshing bool)
}

// PollerConfig holds poller configuration.
type PollerConfig struct {
	Interval time.Duration // Poll interval (default: 1s)
	Timeout  time.Duration // Per-poll timeout (default: 5s)
}

// DefaultPollerConfig returns the reference one-second cadence.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval: time.Second,
		Timeout:  5 * time.Second,
	}
}

// Poller polls one Source on a fixed interval. Polls never overlap: a slow
// poll delays the next tick instead of stacking requests.
type Poller struct {
	name    string
	cfg     PollerConfig
	source  Source
	handler Handler
	logger  *slog.Logger

	refreshing atomic.Bool
	polls      atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller for the named stream.
func NewPoller(name string, cfg PollerConfig, source Source, handler Handler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultPollerConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Poller{
		name:    name,
		cfg:     cfg,
		source:  source,
		handler: handler,
		logger:  logger.With("stream", name),
	}
}

// Name returns the stream name.
func (p *Poller) Name() string { return p.name }

// Refreshing reports whether a poll is in flight.
func (p *Poller) Refreshing() bool { return p.refreshing.Load() }

// Polls returns the number of completed polls.
func (p *Poller) Polls() int64 { return p.polls.Load() }

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started", "interval", p.cfg.Interval)

	return nil
}

// Stop cancels any in-flight poll and waits for the loop to exit. Snapshots
// from a cancelled poll are discarded.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.pollOnce()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

func (p *Poller) pollOnce() {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	p.setRefreshing(true)
	snap := p.source.Poll(ctx)
	p.setRefreshing(false)

	// Torn down mid-poll: nobody is observing this stream any more.
	if p.ctx.Err() != nil {
		return
	}
	p.polls.Add(1)

	metrics.ObservePoll(p.name, snap.Success, len(snap.Rows), time.Since(start))
	if snap.Failed() {
		p.logger.Warn("poll returned failure", "message", snap.Message)
	} else {
		p.logger.Debug("poll ok", "rows", len(snap.Rows), "duration", time.Since(start))
	}

	if p.handler != nil {
		p.handler.HandleSnapshot(snap)
	}
}

func (p *Poller) setRefreshing(v bool) {
	p.refreshing.Store(v)
	if r, ok := p.handler.(RefreshObserver); ok {
		r.SetRefreshing(p.name, v)
	}
}
