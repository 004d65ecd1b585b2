package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"tablero/internal/config"
	"tablero/internal/domain"
)

type evaluator func(ctx context.Context, data any) (any, error)

// Shape locates the canonical snapshot fields inside an upstream payload.
type Shape struct {
	success evaluator
	message evaluator
	rows    evaluator
	totals  map[string]evaluator
}

func compile(expr string) (evaluator, error) {
	if expr == "" {
		return nil, nil
	}
	ev, err := jsonpath.New(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling jsonpath %q: %w", expr, err)
	}
	return evaluator(ev), nil
}

// CompileShape prepares the JSONPath expressions of cfg. Empty expressions
// are skipped.
func CompileShape(cfg config.Shape) (*Shape, error) {
	s := &Shape{totals: make(map[string]evaluator, len(cfg.Totals))}

	var err error
	if s.success, err = compile(cfg.Success); err != nil {
		return nil, err
	}
	if s.message, err = compile(cfg.Message); err != nil {
		return nil, err
	}
	if s.rows, err = compile(cfg.Rows); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(cfg.Totals))
	for k := range cfg.Totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev, err := compile(cfg.Totals[k])
		if err != nil {
			return nil, fmt.Errorf("totals %s: %w", k, err)
		}
		if ev != nil {
			s.totals[k] = ev
		}
	}
	return s, nil
}

// lookup evaluates ev against doc. Missing keys and type mismatches are
// reported as not found rather than as errors.
func lookup(ev evaluator, doc any) (any, bool) {
	if ev == nil {
		return nil, false
	}
	v, err := ev(context.Background(), doc)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Decode parses body and maps it onto a snapshot. Only invalid JSON is an
// error; a document without rows decodes to zero rows, and a document
// without a success flag counts as successful.
func (s *Shape) Decode(stream string, body []byte, at time.Time) (domain.Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decoding payload: %w", err)
	}

	snap := domain.Snapshot{
		Stream:     stream,
		Success:    true,
		ReceivedAt: at,
	}

	if v, ok := lookup(s.success, doc); ok {
		if b, isBool := v.(bool); isBool && !b {
			snap.Success = false
		}
	}
	if v, ok := lookup(s.message, doc); ok {
		if msg, isStr := v.(string); isStr {
			snap.Message = msg
		}
	}

	if v, ok := lookup(s.rows, doc); ok {
		if items, isArr := v.([]any); isArr {
			snap.Rows = make([]domain.Row, 0, len(items))
			for _, item := range items {
				row := domain.RowFromAny(item)
				if row == nil {
					row = domain.Row{}
				}
				snap.Rows = append(snap.Rows, row)
			}
		}
	}

	for key, ev := range s.totals {
		v, ok := lookup(ev, doc)
		if !ok || v == nil {
			continue
		}
		if snap.Totals == nil {
			snap.Totals = make(domain.Totals, len(s.totals))
		}
		snap.Totals[key] = domain.FromAny(v)
	}

	return snap, nil
}
