// Package live holds the server-side board of stream panels, with timed
// highlight expiry and pub/sub for websocket streaming.
package live

import (
	"log/slog"
	"sync"
	"time"

	"tablero/internal/dashboard"
	"tablero/internal/domain"
	"tablero/internal/highlight"
	"tablero/internal/metrics"
)

// Reasons an Update is published.
const (
	ReasonSnapshot   = "snapshot"
	ReasonExpire     = "expire"
	ReasonRefreshing = "refreshing"
)

// Update is emitted to subscribers whenever a panel's view changes.
type Update struct {
	Stream string         `json:"stream"`
	Reason string         `json:"reason"`
	View   dashboard.View `json:"view"`
}

// Board holds one panel per stream, each with its own expiry timer, and
// fans view changes out to subscribers. Streams never affect each other.
type Board struct {
	window time.Duration
	log    *slog.Logger

	order  []string
	panels map[string]*dashboard.Panel
	timers map[string]*highlight.Timer

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan Update
	closed    bool
}

// NewBoard creates a board over panels, in the given order. A non-positive
// window uses highlight.DefaultWindow.
func NewBoard(panels []*dashboard.Panel, window time.Duration, log *slog.Logger) *Board {
	if window <= 0 {
		window = highlight.DefaultWindow
	}
	if log == nil {
		log = slog.Default()
	}
	b := &Board{
		window: window,
		log:    log,
		panels: make(map[string]*dashboard.Panel, len(panels)),
		timers: make(map[string]*highlight.Timer, len(panels)),
		subs:   make(map[int]chan Update),
	}
	for _, p := range panels {
		b.order = append(b.order, p.Name)
		b.panels[p.Name] = p
		b.timers[p.Name] = &highlight.Timer{}
	}
	return b
}

// Streams returns the stream names in display order.
func (b *Board) Streams() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Panel returns the named panel.
func (b *Board) Panel(name string) (*dashboard.Panel, bool) {
	p, ok := b.panels[name]
	return p, ok
}

// HandleSnapshot applies a snapshot to its stream's panel, arms the expiry
// of the new highlights and notifies subscribers. A new snapshot replaces
// any pending expiry, so highlights always last the full window after the
// latest update.
func (b *Board) HandleSnapshot(snap domain.Snapshot) {
	p, ok := b.panels[snap.Stream]
	if !ok {
		b.log.Warn("snapshot for unknown stream", "stream", snap.Stream)
		return
	}

	styles, gen := p.Apply(snap)
	inc, dec := styles.Count(highlight.Increase), styles.Count(highlight.Decrease)
	metrics.ObserveHighlights(snap.Stream, inc, dec)

	if inc+dec > 0 {
		name := snap.Stream
		b.timers[name].Schedule(b.window, func() { b.expire(name, gen) })
	}

	b.publish(Update{Stream: snap.Stream, Reason: ReasonSnapshot, View: p.View()})
}

func (b *Board) expire(name string, gen uint64) {
	p := b.panels[name]
	if !p.Expire(gen) {
		return
	}
	metrics.ObserveExpiry(name)
	b.publish(Update{Stream: name, Reason: ReasonExpire, View: p.View()})
}

// SetRefreshing records whether a poll for stream is in flight.
func (b *Board) SetRefreshing(stream string, refreshing bool) {
	p, ok := b.panels[stream]
	if !ok {
		return
	}
	p.SetRefreshing(refreshing)
	b.publish(Update{Stream: stream, Reason: ReasonRefreshing, View: p.View()})
}

// Views renders every panel in display order.
func (b *Board) Views() []dashboard.View {
	out := make([]dashboard.View, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.panels[name].View())
	}
	return out
}

// View renders the named panel.
func (b *Board) View(name string) (dashboard.View, bool) {
	p, ok := b.panels[name]
	if !ok {
		return dashboard.View{}, false
	}
	return p.View(), true
}

func (b *Board) publish(u Update) {
	// Non-blocking send; slow subscribers miss updates and catch up on the
	// next one, since every Update carries the full view.
	b.subsMu.Lock()
	for _, ch := range b.subs {
		select {
		case ch <- u:
		default:
		}
	}
	b.subsMu.Unlock()
}

// Subscribe creates a new subscription channel for board updates. After
// Close the returned channel is already closed.
func (b *Board) Subscribe(bufSize int) (id int, ch <-chan Update) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	id = b.nextSubID
	b.nextSubID++
	c := make(chan Update, bufSize)
	if b.closed {
		close(c)
		return id, c
	}
	b.subs[id] = c
	return id, c
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Board) Unsubscribe(id int) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Board) Subscribers() int {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	return len(b.subs)
}

// Close stops every pending expiry and closes all subscriptions. Snapshots
// handled after Close still update panels but never schedule timers.
func (b *Board) Close() {
	for _, t := range b.timers {
		t.Stop()
	}
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
