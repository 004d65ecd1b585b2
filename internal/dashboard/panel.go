package dashboard

import (
	"fmt"
	"sync"
	"time"

	"tablero/internal/domain"
	"tablero/internal/highlight"
)

// State is a panel's display state.
type State int

const (
	// StateLoading: no snapshot received yet.
	StateLoading State = iota
	// StateFailed: the latest snapshot reported failure.
	StateFailed
	// StateLoaded: the latest snapshot succeeded, possibly with no rows.
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateFailed:
		return "failed"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "loading":
		*s = StateLoading
	case "failed":
		*s = StateFailed
	case "loaded":
		*s = StateLoaded
	default:
		return fmt.Errorf("unknown panel state %q", text)
	}
	return nil
}

// SkeletonRows is how many placeholder rows a loading panel shows.
const SkeletonRows = 5

// Panel is the per-stream view model: latest snapshot, diff tracker and
// refreshing flag. Panels share nothing with each other.
type Panel struct {
	Name       string
	Title      string
	ErrorTitle string

	preset  Preset
	tracker *highlight.Tracker

	mu         sync.RWMutex
	snap       *domain.Snapshot
	refreshing bool
}

// NewPanel creates a panel in the loading state. errorTitle defaults to
// title.
func NewPanel(name, title, errorTitle string, preset Preset) *Panel {
	if errorTitle == "" {
		errorTitle = title
	}
	return &Panel{
		Name:       name,
		Title:      title,
		ErrorTitle: errorTitle,
		preset:     preset,
		tracker:    highlight.NewTracker(),
	}
}

// Apply diffs snap against the previous snapshot, stores it and returns the
// new StyleMap with the generation its expiry must present. Readers see the
// snapshot and its StyleMap change together.
func (p *Panel) Apply(snap domain.Snapshot) (highlight.StyleMap, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	styles, gen := p.tracker.Observe(snap)
	s := snap
	p.snap = &s
	return styles, gen
}

// Expire clears highlights for generation gen if nothing newer arrived.
func (p *Panel) Expire(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.Expire(gen)
}

// Styles returns the live StyleMap.
func (p *Panel) Styles() highlight.StyleMap {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracker.Styles()
}

// SetRefreshing records whether a poll is in flight.
func (p *Panel) SetRefreshing(v bool) {
	p.mu.Lock()
	p.refreshing = v
	p.mu.Unlock()
}

// Refreshing reports whether a poll is in flight.
func (p *Panel) Refreshing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.refreshing
}

// State returns the display state of the latest snapshot.
func (p *Panel) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return stateOf(p.snap)
}

func stateOf(snap *domain.Snapshot) State {
	switch {
	case snap == nil:
		return StateLoading
	case snap.Failed():
		return StateFailed
	default:
		return StateLoaded
	}
}

// Snapshot returns the latest snapshot, if any.
func (p *Panel) Snapshot() (domain.Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snap == nil {
		return domain.Snapshot{}, false
	}
	return *p.snap, true
}

// Table renders the latest snapshot with the live highlights. The footer is
// only produced when the snapshot carries totals.
func (p *Panel) Table() Table {
	p.mu.RLock()
	snap, styles := p.snap, p.tracker.Styles()
	p.mu.RUnlock()
	return p.render(snap, styles)
}

func (p *Panel) render(snap *domain.Snapshot, styles highlight.StyleMap) Table {
	if snap == nil {
		return Table{}
	}
	var footer func() []Cell
	if p.preset.Footer != nil && snap.HasTotals() {
		totals := snap.Totals
		footer = func() []Cell { return p.preset.Footer(totals) }
	}
	var cols []Column
	if p.preset.Columns != nil {
		cols = p.preset.Columns(snap.Rows)
	}
	return Render(cols, snap.Rows, styles, footer)
}

// View is a point-in-time rendering of a panel for display or transport.
type View struct {
	Name       string    `json:"name"`
	Title      string    `json:"title"`
	State      State     `json:"state"`
	Message    string    `json:"message,omitempty"`
	Refreshing bool      `json:"refreshing"`
	UpdatedAt  time.Time `json:"updated_at"`
	Highlights int       `json:"highlights"`
	Table      *Table    `json:"table,omitempty"`
}

// View renders the panel. Loading panels carry no table; failed panels
// carry the error title and message instead of a table.
func (p *Panel) View() View {
	p.mu.RLock()
	snap := p.snap
	refreshing := p.refreshing
	styles := p.tracker.Styles()
	p.mu.RUnlock()

	v := View{
		Name:       p.Name,
		Title:      p.Title,
		State:      stateOf(snap),
		Refreshing: refreshing,
		Highlights: styles.Cells(),
	}
	if snap != nil {
		v.UpdatedAt = snap.ReceivedAt
	}

	switch v.State {
	case StateFailed:
		v.Title = p.ErrorTitle
		v.Message = snap.Message
	case StateLoaded:
		t := p.render(snap, styles)
		v.Table = &t
	}
	return v
}
