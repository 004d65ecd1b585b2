package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"absent", Value{}, ""},
		{"null", Null(), ""},
		{"integer", Number(42), "42"},
		{"fraction", Number(1234.5), "1234.5"},
		{"negative", Number(-3), "-3"},
		{"string", String("AL30"), "AL30"},
		{"bool", Bool(true), "true"},
		{"object", Object(json.RawMessage(`{ "a": 1 }`)), `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueUnmarshalKeepsKinds(t *testing.T) {
	var row Row
	data := []byte(`{"a": 5, "b": "5", "c": null, "d": {"x": [1,2]}, "e": false}`)
	if err := json.Unmarshal(data, &row); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !row.Get("a").IsNumber() {
		t.Errorf("a kind = %v, want number", row.Get("a").Kind)
	}
	if row.Get("b").IsNumber() {
		t.Error("numeric string decoded as a number")
	}
	if row.Get("b").Kind != KindString {
		t.Errorf("b kind = %v, want string", row.Get("b").Kind)
	}
	if row.Get("c").Kind != KindNull {
		t.Errorf("c kind = %v, want null", row.Get("c").Kind)
	}
	if row.Get("d").Kind != KindObject {
		t.Errorf("d kind = %v, want object", row.Get("d").Kind)
	}
	if row.Get("missing").Kind != KindAbsent {
		t.Errorf("missing kind = %v, want absent", row.Get("missing").Kind)
	}
	if got := row.Get("d").String(); got != `{"x":[1,2]}` {
		t.Errorf("d String() = %q, want %q", got, `{"x":[1,2]}`)
	}
}

func TestValueFloat(t *testing.T) {
	if f, ok := Number(2.5).Float(); !ok || f != 2.5 {
		t.Errorf("Float() = %v, %v; want 2.5, true", f, ok)
	}
	if _, ok := String("2.5").Float(); ok {
		t.Error("Float() on string should report false")
	}
	if _, ok := Null().Float(); ok {
		t.Error("Float() on null should report false")
	}
}

func TestValueTruthy(t *testing.T) {
	truthy := []Value{Number(1), String("x"), Bool(true), Object(json.RawMessage(`{}`))}
	falsy := []Value{{}, Null(), Number(0), String(""), Bool(false)}
	for _, v := range truthy {
		if !v.Truthy() {
			t.Errorf("Truthy(%#v) = false, want true", v)
		}
	}
	for _, v := range falsy {
		if v.Truthy() {
			t.Errorf("Truthy(%#v) = true, want false", v)
		}
	}
}

func TestSnapshotFailed(t *testing.T) {
	s := Failure("intraday", "Servidor no disponible", time.Time{})
	if !s.Failed() {
		t.Error("Failure snapshot should report Failed")
	}
	if s.Message != "Servidor no disponible" {
		t.Errorf("Message = %q, want %q", s.Message, "Servidor no disponible")
	}
	ok := Snapshot{Success: true}
	if ok.Failed() {
		t.Error("successful snapshot reports Failed")
	}
	if ok.HasTotals() {
		t.Error("snapshot without totals reports HasTotals")
	}
}
