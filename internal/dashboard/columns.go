package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"tablero/internal/domain"
	"tablero/internal/util"
)

// Preset describes how one kind of stream turns snapshot rows into columns
// and totals into a footer.
type Preset struct {
	Name string
	// Columns returns the columns for a snapshot's rows.
	// Fixed presets ignore rows; discovering presets read the first row.
	Columns func(rows []domain.Row) []Column
	// Footer renders the totals row, or is nil when the stream has none.
	Footer func(totals domain.Totals) []Cell
}

// PresetOptions carries the collaborators presets format with.
type PresetOptions struct {
	Formatter *Formatter
	Calendar  *util.Calendar
	Hidden    []string
}

// intradayOrder is the upstream's documented field order. Rows arrive as
// JSON objects, so discovered columns follow this order rather than the
// order keys happened to be decoded in.
var intradayOrder = []string{
	"Titulo", "Nominales", "Px Mercado", "PPP intra",
	"PPP1", "Intraday", "PPP2", "Valuacion", "PnL", "PnL-acumulado",
}

// NewPreset returns the named preset.
func NewPreset(name string, opts PresetOptions) (Preset, error) {
	if opts.Formatter == nil {
		opts.Formatter = defaultFormatter
	}
	if opts.Calendar == nil {
		opts.Calendar = util.NewCalendar("")
	}

	f := opts.Formatter
	switch name {
	case "intraday":
		return Preset{
			Name: name,
			Columns: func(rows []domain.Row) []Column {
				if len(rows) == 0 {
					return nil
				}
				keys := DiscoverKeys(rows[0], intradayOrder, opts.Hidden)
				cols := make([]Column, 0, len(keys))
				for _, k := range keys {
					cols = append(cols, intradayColumn(k, f))
				}
				return cols
			},
			Footer: totalsFooter(f),
		}, nil

	case "crypto":
		cols := filterHidden([]Column{
			{Key: "Titulo", Header: "Titulo", Format: textOr},
			{Key: "Nominales", Header: "Nominales", Format: numberOr(f.Nominal)},
			{Key: "Px Mercado", Header: "Px Mercado", Format: numberOr(f.Price)},
			{Key: "Valuacion", Header: "Valuacion", Format: numberOr(wholeMoney(f))},
			{Key: "PnL", Header: "PnL", Format: numberOr(wholeMoney(f)), Class: signClass},
		}, opts.Hidden)
		return Preset{Name: name, Columns: fixed(cols), Footer: totalsFooter(f)}, nil

	case "last_orders":
		cal := opts.Calendar
		return Preset{Name: name, Columns: fixed([]Column{
			{
				Key:    "Ultimas 10 ordenes",
				Header: "Fecha",
				Format: textOr,
				Class: func(v domain.Value, _ domain.Row, _ int) string {
					if v.Kind == domain.KindString && isDate(v.Str, cal.Yesterday()) {
						return ClassWarnBold
					}
					return ""
				},
			},
			{Key: "TICKER", Header: "TICKER", Format: textOr},
			{Key: "VN", Header: "V/N", Format: numberOr(f.Nominal), Class: negativeClass},
			{Key: "PX", Header: "PX", Format: numberOr(f.Price), Class: negativeClass},
		})}, nil

	case "pending":
		return Preset{Name: name, Columns: fixed([]Column{
			{Key: "Ticker", Header: "Ticker", Format: textOr},
			{Key: "TIPO", Header: "TIPO", Format: textOr},
			{Key: "VN", Header: "VN", Format: numberOr(f.Nominal)},
			{Key: "PX", Header: "PX", Format: numberOr(f.Price)},
		})}, nil

	case "generic":
		return Preset{
			Name: name,
			Columns: func(rows []domain.Row) []Column {
				if len(rows) == 0 {
					return nil
				}
				keys := DiscoverKeys(rows[0], nil, opts.Hidden)
				cols := make([]Column, len(keys))
				for i, k := range keys {
					cols[i] = Column{Key: k, Header: k}
				}
				return cols
			},
		}, nil

	default:
		return Preset{}, fmt.Errorf("unknown column preset %q", name)
	}
}

func fixed(cols []Column) func([]domain.Row) []Column {
	return func([]domain.Row) []Column { return cols }
}

func wholeMoney(f *Formatter) func(float64) string {
	return func(v float64) string { return f.Money(v, 0) }
}

func intradayColumn(key string, f *Formatter) Column {
	col := Column{Key: key, Header: key}
	switch key {
	case "Px Mercado", "PPP intra":
		col.Format = numberOr(f.Price)
	case "Valuacion", "PnL":
		col.Format = numberOr(wholeMoney(f))
	case "Nominales":
		col.Format = numberOr(f.Nominal)
	}
	if key == "PnL" {
		col.Class = signClass
	}
	return col
}

// totalsFooter renders "Totales" across the first three columns followed by
// the valuation and PnL totals. A missing total prints as zero.
func totalsFooter(f *Formatter) func(domain.Totals) []Cell {
	amount := func(v domain.Value) string {
		n, _ := v.Float()
		return f.Money(n, 0)
	}
	return func(t domain.Totals) []Cell {
		val := t.Get(domain.TotalValuation)
		pnl := t.Get(domain.TotalPnL)
		return []Cell{
			{Text: "Totales", Span: 3, Class: ClassStrong},
			{Text: amount(val), Class: ClassStrong},
			{Text: amount(pnl), Class: totalClass(pnl)},
		}
	}
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// IsHidden reports whether key matches any hidden column, ignoring case
// and surrounding space.
func IsHidden(key string, hidden []string) bool {
	k := normalize(key)
	for _, h := range hidden {
		if normalize(h) == k {
			return true
		}
	}
	return false
}

func filterHidden(cols []Column, hidden []string) []Column {
	out := cols[:0:0]
	for _, c := range cols {
		if !IsHidden(c.Key, hidden) {
			out = append(out, c)
		}
	}
	return out
}

// DiscoverKeys lists row's keys minus hidden ones: keys named in order
// first, in that order, then the remaining keys sorted.
func DiscoverKeys(row domain.Row, order []string, hidden []string) []string {
	keys := make([]string, 0, len(row))
	seen := make(map[string]bool, len(row))
	for _, k := range order {
		if _, ok := row[k]; ok && !IsHidden(k, hidden) {
			keys = append(keys, k)
			seen[k] = true
		}
	}

	rest := make([]string, 0, len(row))
	for k := range row {
		if !seen[k] && !IsHidden(k, hidden) {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// isDate reports whether s is the date day, either exactly or as the date
// part of a timestamp.
func isDate(s, day string) bool {
	s = strings.TrimSpace(s)
	if len(s) < len(day) {
		return false
	}
	return s[:len(day)] == day && (len(s) == len(day) || s[len(day)] == 'T' || s[len(day)] == ' ')
}
