package model

import "testing"

func TestParseReasoningEffort(t *testing.T) {
	tests := []struct {
		input string
		want  ReasoningEffort
	}{
		{"low", ReasoningLow},
		{"medium", ReasoningMedium},
		{"high", ReasoningHigh},
		{"", ReasoningMedium},
		{"extreme", ReasoningMedium},
	}
	for _, tt := range tests {
		if got := ParseReasoningEffort(tt.input); got != tt.want {
			t.Errorf("ParseReasoningEffort(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuccessRate(t *testing.T) {
	report := MigrationReport{Total: 4, Succeeded: 3, Failed: 1}
	if got := report.SuccessRate(); got != 0.75 {
		t.Errorf("SuccessRate() = %v, want 0.75", got)
	}

	empty := MigrationReport{}
	if got := empty.SuccessRate(); got != 0 {
		t.Errorf("SuccessRate() on empty report = %v, want 0", got)
	}
}
