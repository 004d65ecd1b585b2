package highlight

import (
	"sync/atomic"
	"testing"
	"time"

	"tablero/internal/domain"
)

func snap(rows ...domain.Row) domain.Snapshot {
	return domain.Snapshot{Success: true, Rows: rows}
}

func num(f float64) domain.Value { return domain.Number(f) }

func TestComputeNoPrevious(t *testing.T) {
	got := Compute(nil, snap(domain.Row{"a": num(1)}, domain.Row{"a": num(2)}))
	if got == nil {
		t.Fatal("Compute returned nil map")
	}
	if n := got.Cells(); n != 0 {
		t.Errorf("Cells() = %d, want 0", n)
	}
}

func TestComputeNumericOnly(t *testing.T) {
	tests := []struct {
		name string
		prev domain.Value
		cur  domain.Value
	}{
		{"number to numeric string", num(5), domain.String("5")},
		{"numeric string to number", domain.String("5"), num(6)},
		{"null to number", domain.Null(), num(6)},
		{"absent to number", domain.Value{}, num(6)},
		{"number to null", num(6), domain.Null()},
		{"bool to number", domain.Bool(true), num(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := snap(domain.Row{"a": tt.prev})
			got := Compute(&prev, snap(domain.Row{"a": tt.cur}))
			if tag := got.Tag(0, "a"); tag != "" {
				t.Errorf("Tag(0, a) = %q, want none", tag)
			}
		})
	}
}

func TestComputeDirection(t *testing.T) {
	tests := []struct {
		name    string
		from    float64
		to      float64
		want    Tag
		wantLen int
	}{
		{"increase", 10, 15, Increase, 1},
		{"decrease", 10, 5, Decrease, 1},
		{"equal", 10, 10, "", 0},
		{"negative increase", -3, -1, Increase, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := snap(domain.Row{"a": num(tt.from)})
			got := Compute(&prev, snap(domain.Row{"a": num(tt.to)}))
			if tag := got.Tag(0, "a"); tag != tt.want {
				t.Errorf("Tag(0, a) = %q, want %q", tag, tt.want)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len(StyleMap) = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestComputeSkipsNewRows(t *testing.T) {
	prev := snap(domain.Row{"a": num(1)}, domain.Row{"a": num(1)})
	cur := snap(domain.Row{"a": num(2)}, domain.Row{"a": num(0)}, domain.Row{"a": num(100)})

	got := Compute(&prev, cur)
	if _, ok := got[2]; ok {
		t.Error("new row index 2 appears in StyleMap")
	}
	if tag := got.Tag(0, "a"); tag != Increase {
		t.Errorf("Tag(0, a) = %q, want %q", tag, Increase)
	}
	if tag := got.Tag(1, "a"); tag != Decrease {
		t.Errorf("Tag(1, a) = %q, want %q", tag, Decrease)
	}
}

func TestComputeMixedColumns(t *testing.T) {
	prev := snap(domain.Row{"Titulo": domain.String("AL30"), "PnL": num(100), "Valuacion": num(5000)})
	cur := snap(domain.Row{"Titulo": domain.String("GD30"), "PnL": num(90), "Valuacion": num(5000), "Nuevo": num(1)})

	got := Compute(&prev, cur)
	if tag := got.Tag(0, "PnL"); tag != Decrease {
		t.Errorf("Tag(0, PnL) = %q, want %q", tag, Decrease)
	}
	for _, key := range []string{"Titulo", "Valuacion", "Nuevo"} {
		if tag := got.Tag(0, key); tag != "" {
			t.Errorf("Tag(0, %s) = %q, want none", key, tag)
		}
	}
	if got.Count(Decrease) != 1 || got.Count(Increase) != 0 {
		t.Errorf("Count = %d/%d, want 0 increase, 1 decrease", got.Count(Increase), got.Count(Decrease))
	}
}

func TestTrackerFailureBecomesBaseline(t *testing.T) {
	tr := NewTracker()

	styles, _ := tr.Observe(snap(domain.Row{"a": num(10)}))
	if styles.Cells() != 0 {
		t.Fatalf("first Observe produced %d highlights, want 0", styles.Cells())
	}

	styles, _ = tr.Observe(domain.Snapshot{Success: false, Message: "Servidor no disponible"})
	if styles.Cells() != 0 {
		t.Errorf("failure Observe produced %d highlights, want 0", styles.Cells())
	}
	if prev := tr.Previous(); prev == nil || prev.Success {
		t.Fatal("failure snapshot did not become the baseline")
	}

	styles, _ = tr.Observe(snap(domain.Row{"a": num(20)}))
	if tag := styles.Tag(0, "a"); tag != "" {
		t.Errorf("Tag(0, a) after failure = %q, want none", tag)
	}
}

func TestTrackerAdvancesAfterDiff(t *testing.T) {
	tr := NewTracker()
	tr.Observe(snap(domain.Row{"a": num(1)}))
	styles, _ := tr.Observe(snap(domain.Row{"a": num(2)}))
	if tag := styles.Tag(0, "a"); tag != Increase {
		t.Errorf("second Observe Tag = %q, want %q", tag, Increase)
	}
	styles, _ = tr.Observe(snap(domain.Row{"a": num(2)}))
	if styles.Cells() != 0 {
		t.Errorf("third Observe produced %d highlights, want 0", styles.Cells())
	}
}

func TestTrackerExpireIgnoresStaleGeneration(t *testing.T) {
	tr := NewTracker()
	tr.Observe(snap(domain.Row{"a": num(1)}))
	_, gen1 := tr.Observe(snap(domain.Row{"a": num(2)}))
	_, gen2 := tr.Observe(snap(domain.Row{"a": num(3)}))

	if tr.Expire(gen1) {
		t.Error("Expire with stale generation cleared the StyleMap")
	}
	if tag := tr.Styles().Tag(0, "a"); tag != Increase {
		t.Errorf("Tag after stale expire = %q, want %q", tag, Increase)
	}
	if !tr.Expire(gen2) {
		t.Error("Expire with current generation reported false")
	}
	if n := tr.Styles().Cells(); n != 0 {
		t.Errorf("Cells after expire = %d, want 0", n)
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.Observe(snap(domain.Row{"a": num(1)}))
	tr.Reset()
	if tr.Previous() != nil {
		t.Error("Previous() not nil after Reset")
	}
	styles, _ := tr.Observe(snap(domain.Row{"a": num(5)}))
	if styles.Cells() != 0 {
		t.Errorf("Observe after Reset produced %d highlights, want 0", styles.Cells())
	}
}

func TestTimerCancelAndReplace(t *testing.T) {
	var x Timer
	var first, second atomic.Int32

	x.Schedule(30*time.Millisecond, func() { first.Add(1) })
	x.Schedule(60*time.Millisecond, func() { second.Add(1) })

	time.Sleep(150 * time.Millisecond)
	if n := first.Load(); n != 0 {
		t.Errorf("replaced callback fired %d times, want 0", n)
	}
	if n := second.Load(); n != 1 {
		t.Errorf("replacement callback fired %d times, want 1", n)
	}
}

func TestTimerStop(t *testing.T) {
	var x Timer
	var fired atomic.Int32

	x.Schedule(20*time.Millisecond, func() { fired.Add(1) })
	x.Stop()
	x.Schedule(20*time.Millisecond, func() { fired.Add(1) })

	time.Sleep(80 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Errorf("callback fired %d times after Stop, want 0", n)
	}
}
