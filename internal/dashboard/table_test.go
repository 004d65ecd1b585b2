package dashboard

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"tablero/internal/domain"
	"tablero/internal/highlight"
	"tablero/internal/util"
)

func TestRenderDefaultStringification(t *testing.T) {
	cols := []Column{{Key: "a", Header: "A"}, {Key: "b", Header: "B"}, {Key: "c", Header: "C"}, {Key: "d", Header: "D"}}
	rows := []domain.Row{{
		"a": domain.Null(),
		"b": domain.Object(json.RawMessage(`{"x": 1}`)),
		"c": domain.Number(1.5),
	}}

	table := Render(cols, rows, nil, nil)
	want := []string{"", `{"x":1}`, "1.5", ""}
	for i, cell := range table.Rows[0] {
		if cell.Text != want[i] {
			t.Errorf("cell %d = %q, want %q", i, cell.Text, want[i])
		}
	}
	if strings.Join(table.Header, ",") != "A,B,C,D" {
		t.Errorf("Header = %v", table.Header)
	}
	if table.Footer != nil {
		t.Errorf("Footer = %v, want none", table.Footer)
	}
}

func TestRenderEmptyBody(t *testing.T) {
	called := false
	table := Render([]Column{{Key: "a", Header: "A"}}, nil, highlight.StyleMap{}, func() []Cell {
		called = true
		return []Cell{{Text: "Totales"}}
	})
	if !table.Empty() {
		t.Errorf("Rows = %v, want empty", table.Rows)
	}
	if table.Rows == nil {
		t.Error("Rows is nil, want empty slice")
	}
	if !called || len(table.Footer) != 1 {
		t.Error("footer not rendered for empty body")
	}
}

func TestRenderFormatterSeesRowAndIndex(t *testing.T) {
	cols := []Column{{
		Key:    "qty",
		Header: "Qty",
		Format: func(v domain.Value, row domain.Row, i int) string {
			return row.Get("sym").String() + "#" + string(rune('0'+i)) + "=" + v.String()
		},
	}}
	rows := []domain.Row{
		{"sym": domain.String("AL30"), "qty": domain.Number(1)},
		{"sym": domain.String("GD30"), "qty": domain.Number(2)},
	}
	table := Render(cols, rows, nil, nil)
	if got := table.Rows[1][0].Text; got != "GD30#1=2" {
		t.Errorf("cell = %q, want %q", got, "GD30#1=2")
	}
}

func TestResolveCellClass(t *testing.T) {
	styles := highlight.StyleMap{0: {"PnL": highlight.Increase}, 1: {"PnL": highlight.Decrease}}
	col := Column{Key: "PnL", Class: signClass}

	tests := []struct {
		name  string
		row   int
		value domain.Value
		want  string
	}{
		{"highlight and static both kept", 0, domain.Number(-5), "hl-increase fg-negative"},
		{"highlight only", 1, domain.Number(0), "hl-decrease"},
		{"static only", 2, domain.Number(7), "fg-positive"},
		{"neither", 2, domain.String("x"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveCellClass(styles, tt.row, col, tt.value, domain.Row{"PnL": tt.value})
			if got != tt.want {
				t.Errorf("ResolveCellClass = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDiscoverKeys(t *testing.T) {
	row := domain.Row{
		"PnL": domain.Number(1), "Titulo": domain.String("AL30"), "Valuacion": domain.Number(2),
		"ppp1": domain.Number(3), "Intraday": domain.Number(4), "Zeta": domain.Number(5),
		"Nominales": domain.Number(6), "Px Mercado": domain.Number(7), " PnL-Acumulado ": domain.Number(8),
	}
	got := DiscoverKeys(row, intradayOrder, []string{"PPP1", "Intraday", "PPP2", "PnL-acumulado"})
	want := "Titulo,Nominales,Px Mercado,Valuacion,PnL,Zeta"
	if strings.Join(got, ",") != want {
		t.Errorf("DiscoverKeys = %v, want %s", got, want)
	}
}

func TestIntradayPreset(t *testing.T) {
	p, err := NewPreset("intraday", PresetOptions{Hidden: []string{"PPP1"}})
	if err != nil {
		t.Fatalf("NewPreset: %v", err)
	}
	rows := []domain.Row{{
		"Titulo": domain.String("AL30"), "Nominales": domain.Number(1234567),
		"Px Mercado": domain.Number(71.5), "PPP1": domain.Number(70),
		"Valuacion": domain.Number(71500), "PnL": domain.Number(-250),
	}}
	cols := p.Columns(rows)
	table := Render(cols, rows, nil, nil)

	if got := strings.Join(table.Header, ","); got != "Titulo,Nominales,Px Mercado,Valuacion,PnL" {
		t.Fatalf("Header = %q", got)
	}
	cells := table.Rows[0]
	if cells[1].Text != "1.234.567" {
		t.Errorf("Nominales = %q, want %q", cells[1].Text, "1.234.567")
	}
	if cells[2].Text != "71,5" {
		t.Errorf("Px Mercado = %q, want %q", cells[2].Text, "71,5")
	}
	if cells[3].Text != "$ 71.500" {
		t.Errorf("Valuacion = %q, want %q", cells[3].Text, "$ 71.500")
	}
	if cells[4].Class != ClassNegative {
		t.Errorf("PnL class = %q, want %q", cells[4].Class, ClassNegative)
	}

	if cols := p.Columns(nil); len(cols) != 0 {
		t.Errorf("Columns(nil) = %v, want none", cols)
	}
}

func TestTotalsFooter(t *testing.T) {
	p, err := NewPreset("crypto", PresetOptions{})
	if err != nil {
		t.Fatalf("NewPreset: %v", err)
	}
	footer := p.Footer(domain.Totals{
		domain.TotalValuation: domain.Number(107500),
		domain.TotalPnL:       domain.Number(240),
	})
	if len(footer) != 3 || footer[0].Text != "Totales" || footer[0].Span != 3 {
		t.Fatalf("footer = %+v", footer)
	}
	if footer[1].Text != "$ 107.500" {
		t.Errorf("valuation = %q, want %q", footer[1].Text, "$ 107.500")
	}
	if footer[2].Class != ClassPositive {
		t.Errorf("pnl class = %q, want %q", footer[2].Class, ClassPositive)
	}

	footer = p.Footer(domain.Totals{domain.TotalValuation: domain.Number(1)})
	if footer[2].Text != "$ 0" || footer[2].Class != ClassMuted {
		t.Errorf("missing pnl = %+v, want $ 0 muted", footer[2])
	}
}

func TestCryptoPresetHidden(t *testing.T) {
	p, err := NewPreset("crypto", PresetOptions{Hidden: []string{" px mercado "}})
	if err != nil {
		t.Fatalf("NewPreset: %v", err)
	}
	for _, c := range p.Columns(nil) {
		if c.Key == "Px Mercado" {
			t.Error("hidden column Px Mercado still present")
		}
	}
}

func TestLastOrdersPreset(t *testing.T) {
	cal := util.NewCalendar("UTC").WithClock(func() time.Time {
		return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	})
	p, err := NewPreset("last_orders", PresetOptions{Calendar: cal})
	if err != nil {
		t.Fatalf("NewPreset: %v", err)
	}
	rows := []domain.Row{
		{"Ultimas 10 ordenes": domain.String("2026-03-01"), "TICKER": domain.String("AL30"), "VN": domain.Number(-100), "PX": domain.Number(71.2)},
		{"Ultimas 10 ordenes": domain.String("2026-03-02 10:15"), "TICKER": domain.String("GD30"), "VN": domain.Number(50), "PX": domain.String("MKT")},
		{"Ultimas 10 ordenes": domain.String("2026-03-01T09:00:00"), "VN": domain.Null()},
	}
	table := Render(p.Columns(rows), rows, nil, nil)

	if got := strings.Join(table.Header, ","); got != "Fecha,TICKER,V/N,PX" {
		t.Errorf("Header = %q", got)
	}
	if table.Rows[0][0].Class != ClassWarnBold {
		t.Errorf("yesterday class = %q, want %q", table.Rows[0][0].Class, ClassWarnBold)
	}
	if table.Rows[1][0].Class != "" {
		t.Errorf("today class = %q, want none", table.Rows[1][0].Class)
	}
	if table.Rows[2][0].Class != ClassWarnBold {
		t.Errorf("yesterday timestamp class = %q, want %q", table.Rows[2][0].Class, ClassWarnBold)
	}
	if table.Rows[0][2].Text != "-100" || table.Rows[0][2].Class != ClassNegative {
		t.Errorf("V/N = %+v, want -100 negative", table.Rows[0][2])
	}
	if table.Rows[1][3].Text != "MKT" {
		t.Errorf("PX fallback = %q, want %q", table.Rows[1][3].Text, "MKT")
	}
	if table.Rows[2][2].Text != "" {
		t.Errorf("null V/N = %q, want empty", table.Rows[2][2].Text)
	}
}

func TestUnknownPreset(t *testing.T) {
	if _, err := NewPreset("heatmap", PresetOptions{}); err == nil {
		t.Error("NewPreset(heatmap) returned nil error")
	}
}
