package feed

import (
	"fmt"
	"log/slog"

	"tablero/internal/config"
	"tablero/internal/util"
)

// Deps carries the shared collaborators sources are built from. Broker and
// Loader may be nil when no stream needs them.
type Deps struct {
	Client *Client
	Broker Broker
	Loader SnapshotLoader
	Logger *slog.Logger
}

// NewUpstreamClient builds the client shared by every http stream. The rate
// limiter's burst allows one request per enabled stream.
func NewUpstreamClient(cfg *config.Config, logger *slog.Logger) *Client {
	return NewClient(cfg.Upstream.BaseURL,
		WithTimeout(cfg.Upstream.Timeout),
		WithRetries(cfg.Upstream.Retries, cfg.Upstream.RetryBackoff),
		WithRateLimiter(util.NewRateLimiter(cfg.Upstream.RateLimitPerMin, len(cfg.Enabled()))),
		WithLogger(logger),
	)
}

// NewSource builds the source for one configured stream.
func NewSource(s config.Stream, deps Deps) (Source, error) {
	switch s.Kind {
	case "http", "":
		if deps.Client == nil {
			return nil, fmt.Errorf("stream %s: no upstream client", s.Name)
		}
		return NewHTTPSource(s, deps.Client, deps.Logger)
	case "alpaca_positions":
		if deps.Broker == nil {
			return nil, fmt.Errorf("stream %s: no broker client", s.Name)
		}
		return NewPositionsSource(s.Name, s.AssetClass, deps.Broker, deps.Logger), nil
	case "alpaca_orders":
		if deps.Broker == nil {
			return nil, fmt.Errorf("stream %s: no broker client", s.Name)
		}
		limit := s.Limit
		if limit == 0 {
			limit = 50
		}
		return NewOrdersSource(s.Name, limit, deps.Broker, deps.Logger), nil
	case "replay":
		if deps.Loader == nil {
			return nil, fmt.Errorf("stream %s: no journal to replay", s.Name)
		}
		return NewReplaySource(s.Name, s.From, deps.Loader, s.Limit), nil
	default:
		return nil, fmt.Errorf("stream %s: unknown kind %q", s.Name, s.Kind)
	}
}
