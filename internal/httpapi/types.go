// Package httpapi provides an HTTP REST API for the board, serving the same
// panels as the TUI in JSON format, plus a websocket push channel.
package httpapi

import (
	"tablero/internal/dashboard"
	"tablero/internal/domain"
)

// StreamsResponse lists every panel in display order.
type StreamsResponse struct {
	Streams []dashboard.View `json:"streams"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status      string                     `json:"status"`
	Uptime      string                     `json:"uptime"`
	Subscribers int                        `json:"subscribers"`
	Streams     map[string]dashboard.State `json:"streams"`
	Loaded      int                        `json:"loaded"`
	Failed      int                        `json:"failed"`
}

// HistoryResponse carries journaled polls of one stream, oldest first.
type HistoryResponse struct {
	Stream string            `json:"stream"`
	Count  int               `json:"count"`
	Polls  []domain.Snapshot `json:"polls"`
}
