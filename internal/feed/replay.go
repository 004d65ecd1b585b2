package feed

import (
	"context"
	"sync"
	"time"

	"tablero/internal/domain"
)

// SnapshotLoader reads recorded snapshots for a stream, oldest first.
type SnapshotLoader interface {
	Load(ctx context.Context, stream string, limit int) ([]domain.Snapshot, error)
}

// ReplaySource plays back recorded snapshots one per poll, looping at the
// end. It is used for demos and for reproducing a session offline.
type ReplaySource struct {
	name   string
	from   string
	loader SnapshotLoader
	limit  int
	now    func() time.Time

	mu     sync.Mutex
	frames []domain.Snapshot
	next   int
	loaded bool
}

// NewReplaySource replays the recordings of stream from under the name
// name. limit caps how many recordings are loaded; 0 loads all.
func NewReplaySource(name, from string, loader SnapshotLoader, limit int) *ReplaySource {
	if from == "" {
		from = name
	}
	return &ReplaySource{name: name, from: from, loader: loader, limit: limit, now: time.Now}
}

// Poll returns the next recorded snapshot, stamped with the current time.
func (s *ReplaySource) Poll(ctx context.Context) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		frames, err := s.loader.Load(ctx, s.from, s.limit)
		if err != nil {
			return domain.Failure(s.name, MsgUnavailable, s.now())
		}
		s.frames = frames
		s.loaded = true
	}
	if len(s.frames) == 0 {
		return domain.Failure(s.name, MsgNoData, s.now())
	}

	snap := s.frames[s.next]
	s.next = (s.next + 1) % len(s.frames)
	snap.Stream = s.name
	snap.ReceivedAt = s.now()
	return snap
}
