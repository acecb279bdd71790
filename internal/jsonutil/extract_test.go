package jsonutil

import (
	"strings"
	"testing"
)

type args struct {
	Location string `json:"location"`
	Unit     string `json:"unit"`
}

func TestExtractPureObject(t *testing.T) {
	raw, err := ExtractObject(`{"location": "Berlin", "unit": "celsius"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(raw), "{") {
		t.Errorf("raw = %s", raw)
	}
}

func TestExtractFencedObject(t *testing.T) {
	text := "```json\n{\"location\": \"Berlin\"}\n```"
	var out args
	if err := Decode(text, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.Location != "Berlin" {
		t.Errorf("location = %q", out.Location)
	}
}

func TestExtractBareFence(t *testing.T) {
	text := "```\n{\"location\": \"Oslo\"}\n```"
	var out args
	if err := Decode(text, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.Location != "Oslo" {
		t.Errorf("location = %q", out.Location)
	}
}

func TestExtractEmbeddedObject(t *testing.T) {
	text := `Sure, calling the tool now: {"location": "Paris", "unit": "celsius"} - done.`
	var out args
	if err := Decode(text, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.Location != "Paris" || out.Unit != "celsius" {
		t.Errorf("out = %+v", out)
	}
}

func TestExtractNoObject(t *testing.T) {
	if _, err := ExtractObject("no json here"); err == nil {
		t.Error("expected error for text without JSON")
	}
}

func TestDecodeInvalidTarget(t *testing.T) {
	var out args
	err := Decode(`{"location": 42}`, &out)
	if err == nil {
		t.Error("expected unmarshal error for mismatched type")
	}
}
