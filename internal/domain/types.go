// Package domain defines the canonical data shapes shared by every stream:
// cell values, rows, aggregate totals and the per-poll snapshot.
package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Kind classifies a cell value.
type Kind uint8

const (
	KindAbsent Kind = iota // key not present in the row
	KindNull
	KindNumber
	KindString
	KindBool
	KindObject // JSON object or array, kept as raw bytes
)

// Value is a single cell as received from upstream. A value is numeric only
// when it arrived as a JSON number; numeric-looking strings stay strings.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
	Raw  json.RawMessage
}

func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func Null() Value            { return Value{Kind: KindNull} }

// Object wraps an already-encoded JSON object or array.
func Object(raw json.RawMessage) Value { return Value{Kind: KindObject, Raw: raw} }

// IsNumber reports whether v holds a JSON number.
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// Float returns the numeric value and true, or 0 and false for anything that
// is not a number.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// Truthy mirrors the loose truthiness used by the fallback formatters: empty
// strings, zero, false, null and absent values are falsy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNumber:
		return v.Num != 0
	case KindString:
		return v.Str != ""
	case KindBool:
		return v.Bool
	case KindObject:
		return true
	default:
		return false
	}
}

// String is the default stringification: null and absent render empty,
// objects render as compact JSON and everything else in its natural form.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindString:
		return v.Str
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindObject:
		var buf bytes.Buffer
		if err := json.Compact(&buf, v.Raw); err != nil {
			return string(v.Raw)
		}
		return buf.String()
	default:
		return ""
	}
}

// MarshalJSON encodes v back into plain JSON. Absent values encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Num)
	case KindString:
		return json.Marshal(v.Str)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindObject:
		if len(v.Raw) == 0 {
			return []byte("null"), nil
		}
		return v.Raw, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON value into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

// FromAny converts a value produced by encoding/json (decoded with or
// without UseNumber) into a Value.
func FromAny(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return String(x.String())
		}
		return Number(f)
	case float64:
		return Number(x)
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case string:
		return String(x)
	case bool:
		return Bool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return Null()
		}
		return Object(b)
	}
}

// Row maps column keys to cell values.
type Row map[string]Value

// Get returns the value stored under key, or an absent value.
func (r Row) Get(key string) Value {
	v, ok := r[key]
	if !ok {
		return Value{}
	}
	return v
}

// RowFromAny converts a decoded JSON object into a Row. Anything that is
// not an object yields nil.
func RowFromAny(raw any) Row {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	row := make(Row, len(obj))
	for k, v := range obj {
		row[k] = FromAny(v)
	}
	return row
}

// Canonical totals keys. Upstream payloads name these differently per feed;
// the feed adapter maps them onto these keys.
const (
	TotalValuation      = "valuation"
	TotalPnL            = "pnl"
	TotalPnLAccumulated = "pnl_accumulated"
)

// Totals holds aggregate values for a snapshot's footer.
type Totals map[string]Value

// Get returns the total stored under key, or an absent value.
func (t Totals) Get(key string) Value {
	v, ok := t[key]
	if !ok {
		return Value{}
	}
	return v
}

// Snapshot is the full result of one poll of one stream. It is never
// mutated after the source produces it.
type Snapshot struct {
	Stream     string    `json:"stream"`
	Success    bool      `json:"success"`
	Message    string    `json:"message,omitempty"`
	Rows       []Row     `json:"rows"`
	Totals     Totals    `json:"totals,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Failed reports whether the upstream signalled failure or the poll itself
// could not complete.
func (s Snapshot) Failed() bool { return !s.Success }

// HasTotals reports whether any aggregate values are present.
func (s Snapshot) HasTotals() bool { return len(s.Totals) > 0 }

// Failure builds a failed snapshot carrying a user-facing message.
func Failure(stream, message string, at time.Time) Snapshot {
	return Snapshot{Stream: stream, Success: false, Message: message, ReceivedAt: at}
}
