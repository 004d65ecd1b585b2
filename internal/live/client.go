package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
)

// Client connects to a board's websocket endpoint and hands every update to
// a callback, mirroring a remote server's panels locally.
type Client struct {
	url    string
	log    *slog.Logger
	dialer *websocket.Dialer
}

// NewClient creates a client targeting the given ws:// or wss:// URL.
func NewClient(url string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{url: url, log: log, dialer: websocket.DefaultDialer}
}

// Sync connects and calls fn for each update received. It blocks until ctx
// is cancelled (returning nil) or the stream fails.
func (c *Client) Sync(ctx context.Context, fn func(Update)) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c.log.Info("connected to board stream", "url", c.url)

	for {
		var u Update
		if err := conn.ReadJSON(&u); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) && (ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("receiving update: %w", err)
		}
		fn(u)
	}
}
