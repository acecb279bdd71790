package model

import (
	"encoding/json"
	"testing"
)

func TestValueZeroIsInvalid(t *testing.T) {
	params := map[string]Value{}
	v := params["absent"]

	if v.Kind() != KindInvalid {
		t.Errorf("expected KindInvalid, got %v", v.Kind())
	}
	if _, ok := v.Str(); ok {
		t.Error("absent value reported as string")
	}
	if _, ok := v.Seq(); ok {
		t.Error("absent value reported as sequence")
	}
	if _, ok := v.Map(); ok {
		t.Error("absent value reported as mapping")
	}
}

func TestValueAccessors(t *testing.T) {
	if s, ok := StringValue("hello").Str(); !ok || s != "hello" {
		t.Errorf("Str() = %q, %v", s, ok)
	}
	if n, ok := NumberValue(1.5).Num(); !ok || n != 1.5 {
		t.Errorf("Num() = %v, %v", n, ok)
	}
	if b, ok := BoolValue(true).Bool(); !ok || !b {
		t.Errorf("Bool() = %v, %v", b, ok)
	}
	if items, ok := SequenceValue(StringValue("a"), StringValue("b")).Seq(); !ok || len(items) != 2 {
		t.Errorf("Seq() = %v, %v", items, ok)
	}
	if m, ok := MappingValue(map[string]Value{"k": NumberValue(1)}).Map(); !ok || len(m) != 1 {
		t.Errorf("Map() = %v, %v", m, ok)
	}
	if !PlaceholderValue("x").IsPlaceholder() {
		t.Error("PlaceholderValue not reported as placeholder")
	}
	if StringValue("x").IsPlaceholder() {
		t.Error("string reported as placeholder")
	}
}

func TestValueText(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"string", StringValue("hi"), "hi"},
		{"number", NumberValue(3), "3"},
		{"bool", BoolValue(false), "false"},
		{"sequence", SequenceValue(NumberValue(1), NumberValue(2)), "[1, 2]"},
		{"mapping", MappingValue(map[string]Value{"b": NumberValue(2), "a": NumberValue(1)}), "{a: 1, b: 2}"},
		{"named placeholder", PlaceholderValue("msgs"), "<variable:msgs>"},
		{"opaque placeholder", OpaqueValue(), "<complex_expression>"},
	}
	for _, tt := range tests {
		if got := tt.v.Text(); got != tt.want {
			t.Errorf("%s: Text() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	original := MappingValue(map[string]Value{
		"model":       StringValue("gpt-4"),
		"temperature": NumberValue(0.7),
		"stream":      BoolValue(false),
		"stop":        SequenceValue(StringValue("\n")),
	})

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored Value
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	m, ok := restored.Map()
	if !ok {
		t.Fatalf("restored value is not a mapping: %v", restored.Kind())
	}
	if s, _ := m["model"].Str(); s != "gpt-4" {
		t.Errorf("model = %q", s)
	}
	if n, _ := m["temperature"].Num(); n != 0.7 {
		t.Errorf("temperature = %v", n)
	}
	if b, _ := m["stream"].Bool(); b {
		t.Error("stream should be false")
	}
	if items, _ := m["stop"].Seq(); len(items) != 1 {
		t.Errorf("stop has %d items", len(items))
	}
}

func TestPlaceholderMarshalsAsText(t *testing.T) {
	data, err := json.Marshal(PlaceholderValue("messages"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"<variable:messages>"` {
		t.Errorf("got %s", data)
	}
}
