// Package tablero is a Go client for the board HTTP API served by
// "tablero serve".
package tablero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tablero/internal/dashboard"
	"tablero/internal/httpapi"
)

// Client provides a Go SDK for interacting with the board API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new board API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Error is returned for non-2xx responses.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("board API error %d: %s", e.StatusCode, e.Message)
}

// Streams retrieves every panel in display order.
func (c *Client) Streams(ctx context.Context) ([]dashboard.View, error) {
	var resp httpapi.StreamsResponse
	if err := c.get(ctx, "/api/streams", &resp); err != nil {
		return nil, err
	}
	return resp.Streams, nil
}

// Stream retrieves one panel.
func (c *Client) Stream(ctx context.Context, name string) (dashboard.View, error) {
	var v dashboard.View
	err := c.get(ctx, "/api/streams/"+url.PathEscape(name), &v)
	return v, err
}

// History retrieves up to limit journaled polls of a stream.
func (c *Client) History(ctx context.Context, name string, limit int) (httpapi.HistoryResponse, error) {
	var resp httpapi.HistoryResponse
	path := "/api/streams/" + url.PathEscape(name) + "/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	err := c.get(ctx, path, &resp)
	return resp, err
}

// Health retrieves the server's health summary.
func (c *Client) Health(ctx context.Context) (httpapi.HealthResponse, error) {
	var resp httpapi.HealthResponse
	err := c.get(ctx, "/healthz", &resp)
	return resp, err
}

// WebsocketURL returns the push channel URL for this server.
func (c *Client) WebsocketURL() string {
	u := c.baseURL + "/api/ws"
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	default:
		return u
	}
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
