package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tablero/internal/config"
	"tablero/internal/domain"
)

// User-facing failure messages.
const (
	MsgUnavailable = "Servidor no disponible"
	MsgInvalid     = "Respuesta inválida del servidor"
	MsgNoData      = "Sin datos registrados"
)

// Source performs one poll of one stream. Poll never fails: any error is
// reported as a snapshot with Success=false.
type Source interface {
	Poll(ctx context.Context) domain.Snapshot
}

// SourceFunc is a function adapter for Source.
type SourceFunc func(ctx context.Context) domain.Snapshot

func (f SourceFunc) Poll(ctx context.Context) domain.Snapshot {
	return f(ctx)
}

// HTTPSource polls one path on the upstream host.
type HTTPSource struct {
	name   string
	path   string
	client *Client
	shape  *Shape
	logger *slog.Logger
	now    func() time.Time
}

// NewHTTPSource builds a source for stream s.
func NewHTTPSource(s config.Stream, client *Client, logger *slog.Logger) (*HTTPSource, error) {
	shape, err := CompileShape(s.Shape)
	if err != nil {
		return nil, fmt.Errorf("stream %s: %w", s.Name, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{
		name:   s.Name,
		path:   s.Path,
		client: client,
		shape:  shape,
		logger: logger.With("stream", s.Name),
		now:    time.Now,
	}, nil
}

// Poll fetches and decodes the stream's document.
func (s *HTTPSource) Poll(ctx context.Context) domain.Snapshot {
	body, err := s.client.Get(ctx, s.path)
	at := s.now()
	if err != nil {
		s.logger.Debug("poll failed", "path", s.path, "err", err)

		// Prefer the server's own explanation when it sent one.
		var apiErr *APIError
		if errors.As(err, &apiErr) && len(apiErr.Body) > 0 {
			snap, derr := s.shape.Decode(s.name, apiErr.Body, at)
			if derr == nil && snap.Message != "" {
				snap.Success = false
				return snap
			}
		}
		return domain.Failure(s.name, MsgUnavailable, at)
	}

	snap, err := s.shape.Decode(s.name, body, at)
	if err != nil {
		s.logger.Debug("decode failed", "path", s.path, "err", err)
		return domain.Failure(s.name, MsgInvalid, at)
	}
	return snap
}
