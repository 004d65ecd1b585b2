// Package highlight computes per-cell change tags between consecutive
// snapshots of a stream and tracks their timed expiry.
package highlight

import (
	"sync"
	"time"

	"tablero/internal/domain"
)

// DefaultWindow is how long a computed StyleMap stays live.
const DefaultWindow = 2000 * time.Millisecond

// Tag marks the direction a numeric cell moved since the previous snapshot.
type Tag string

const (
	Increase Tag = "increase"
	Decrease Tag = "decrease"
)

// StyleMap maps row index to column key to tag. Cells that did not change
// have no entry.
type StyleMap map[int]map[string]Tag

// Tag returns the tag for a cell, or "" when the cell is not highlighted.
func (s StyleMap) Tag(row int, key string) Tag {
	cols, ok := s[row]
	if !ok {
		return ""
	}
	return cols[key]
}

// Cells returns the number of tagged cells.
func (s StyleMap) Cells() int {
	n := 0
	for _, cols := range s {
		n += len(cols)
	}
	return n
}

// Count returns how many cells carry the given tag.
func (s StyleMap) Count(tag Tag) int {
	n := 0
	for _, cols := range s {
		for _, t := range cols {
			if t == tag {
				n++
			}
		}
	}
	return n
}

func (s StyleMap) set(row int, key string, tag Tag) {
	cols, ok := s[row]
	if !ok {
		cols = make(map[string]Tag)
		s[row] = cols
	}
	cols[key] = tag
}

// Compute compares cur against prev position by position. Only cells that
// are JSON numbers on both sides are compared; rows past the end of prev are
// skipped. A nil prev yields an empty map.
func Compute(prev *domain.Snapshot, cur domain.Snapshot) StyleMap {
	styles := make(StyleMap)
	if prev == nil {
		return styles
	}

	for i, row := range cur.Rows {
		if i >= len(prev.Rows) {
			break
		}
		old := prev.Rows[i]
		for key, v := range row {
			c, ok := v.Float()
			if !ok {
				continue
			}
			p, ok := old.Get(key).Float()
			if !ok {
				continue
			}
			switch {
			case c > p:
				styles.set(i, key, Increase)
			case c < p:
				styles.set(i, key, Decrease)
			}
		}
	}
	return styles
}

// Tracker holds one stream's previous snapshot and live StyleMap. Each
// Observe starts a new generation; Expire only clears the generation it was
// scheduled for, so a late expiry never wipes a fresher StyleMap.
type Tracker struct {
	mu     sync.Mutex
	prev   *domain.Snapshot
	styles StyleMap
	gen    uint64
}

// NewTracker returns a tracker with no baseline.
func NewTracker() *Tracker {
	return &Tracker{styles: StyleMap{}}
}

// Observe diffs snap against the stored baseline, then makes snap the new
// baseline whether or not it succeeded. It returns the new StyleMap and the
// generation to pass to Expire.
func (t *Tracker) Observe(snap domain.Snapshot) (StyleMap, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	styles := Compute(t.prev, snap)
	s := snap
	t.prev = &s
	t.styles = styles
	t.gen++
	return styles, t.gen
}

// Expire clears the StyleMap if gen is still current. It reports whether
// anything was cleared.
func (t *Tracker) Expire(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen {
		return false
	}
	t.styles = StyleMap{}
	return true
}

// Styles returns the live StyleMap.
func (t *Tracker) Styles() StyleMap {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.styles
}

// Generation returns the current generation.
func (t *Tracker) Generation() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Previous returns the stored baseline, or nil before the first Observe.
func (t *Tracker) Previous() *domain.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prev
}

// Reset drops the baseline and any live highlights.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prev = nil
	t.styles = StyleMap{}
	t.gen++
}
