// Package journal records every poll of every stream to SQLite, for replay
// and for export to Parquet. Highlight state is never journaled; it is
// rebuilt from consecutive snapshots.
package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"tablero/internal/domain"
)

// PollRecord is one journaled poll, and the Parquet schema of exports.
type PollRecord struct {
	ID       string `parquet:"id"`
	Stream   string `parquet:"stream"`
	PolledAt int64  `parquet:"polled_at,timestamp(millisecond)"` // Unix ms
	Success  bool   `parquet:"success"`
	Message  string `parquet:"message"`
	Rows     int64  `parquet:"rows"`
	Payload  string `parquet:"payload"` // JSON {"rows": [...], "totals": {...}}
}

type payload struct {
	Rows   []domain.Row  `json:"rows"`
	Totals domain.Totals `json:"totals,omitempty"`
}

func toRecord(id string, snap domain.Snapshot) (PollRecord, error) {
	body, err := json.Marshal(payload{Rows: snap.Rows, Totals: snap.Totals})
	if err != nil {
		return PollRecord{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	return PollRecord{
		ID:       id,
		Stream:   snap.Stream,
		PolledAt: snap.ReceivedAt.UnixMilli(),
		Success:  snap.Success,
		Message:  snap.Message,
		Rows:     int64(len(snap.Rows)),
		Payload:  string(body),
	}, nil
}

// Snapshot decodes the record back into a snapshot.
func (r PollRecord) Snapshot() (domain.Snapshot, error) {
	var p payload
	if err := json.Unmarshal([]byte(r.Payload), &p); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decoding poll %s: %w", r.ID, err)
	}
	if p.Rows == nil {
		p.Rows = []domain.Row{}
	}
	return domain.Snapshot{
		Stream:     r.Stream,
		Success:    r.Success,
		Message:    r.Message,
		Rows:       p.Rows,
		Totals:     p.Totals,
		ReceivedAt: time.UnixMilli(r.PolledAt),
	}, nil
}
