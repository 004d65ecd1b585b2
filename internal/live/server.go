package live

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tablero/internal/metrics"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
)

// Server streams board updates to websocket clients.
type Server struct {
	board    *Board
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a websocket server backed by the given Board.
func NewServer(board *Board, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		board: board,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The API is read-only and already served with permissive CORS.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and streams until the client goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if err := s.Stream(r.Context(), conn); err != nil {
		s.log.Debug("websocket stream ended", "error", err)
	}
}

// Stream sends the current view of every panel, then streams updates as
// they arrive. It returns when ctx is done, the client disconnects or the
// board is closed.
func (s *Server) Stream(ctx context.Context, conn *websocket.Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Subscribe before sending the initial views so nothing published in
	// between is lost.
	subID, ch := s.board.Subscribe(256)
	defer s.board.Unsubscribe(subID)

	metrics.WSConnected(1)
	defer metrics.WSConnected(-1)
	s.log.Info("websocket client subscribed", "subID", subID, "remote", conn.RemoteAddr().String())

	go s.readPump(conn, cancel)

	for _, v := range s.board.Views() {
		if err := s.write(conn, Update{Stream: v.Name, Reason: ReasonSnapshot, View: v}); err != nil {
			return err
		}
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("websocket client disconnected", "subID", subID)
			return nil
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case u, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return nil
			}
			if err := s.write(conn, u); err != nil {
				return err
			}
		}
	}
}

func (s *Server) write(conn *websocket.Conn, u Update) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(u)
}

// readPump discards client messages and cancels the stream once the
// connection fails or the peer stops answering pings.
func (s *Server) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
