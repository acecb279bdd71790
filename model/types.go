// Package model provides domain types shared across packages.
package model

import "time"

// CallKind is the category of a detected OpenAI API call.
type CallKind string

const (
	CallChatCompletion CallKind = "chat_completion"
	CallCompletion     CallKind = "completion"
	CallFunction       CallKind = "function_call"
	CallEmbedding      CallKind = "embedding"
	CallFineTune       CallKind = "fine_tune"
)

// Complexity is a qualitative migration difficulty tier.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// ReasoningEffort is the Harmony reasoning effort level.
type ReasoningEffort string

const (
	ReasoningLow    ReasoningEffort = "low"
	ReasoningMedium ReasoningEffort = "medium"
	ReasoningHigh   ReasoningEffort = "high"
)

// ParseReasoningEffort normalizes a reasoning effort string,
// defaulting to medium for unrecognized values.
func ParseReasoningEffort(s string) ReasoningEffort {
	switch ReasoningEffort(s) {
	case ReasoningLow, ReasoningMedium, ReasoningHigh:
		return ReasoningEffort(s)
	default:
		return ReasoningMedium
	}
}

// MinTokenEstimate is the floor for every call's token estimate,
// applied even when messages and prompt are empty.
const MinTokenEstimate = 100

// ToolProperty is one typed field of a tool's parameter object.
type ToolProperty struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// ToolSchema describes a callable function exposed to the model.
// It round-trips into the typed-interface block of a developer message:
// each property becomes a typed field, optional iff not required.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Properties  []ToolProperty `json:"properties,omitempty"`
}

// CallRecord is a detected API call site. Created once during extraction
// and immutable thereafter; consumed by the analyzer and the converter.
//
// When a call declares N tool schemas, extraction produces N records
// (one per tool) so cost and complexity are attributed per tool surface.
type CallRecord struct {
	File            string           `json:"file"`
	Line            int              `json:"line"`
	Kind            CallKind         `json:"call_type"`
	Complexity      Complexity       `json:"complexity"`
	EstimatedTokens int              `json:"estimated_tokens"`
	Snippet         string           `json:"code_snippet"`
	Params          map[string]Value `json:"parameters,omitempty"`
	Tools           []ToolSchema     `json:"functions,omitempty"`
}

// ScanResult aggregates a repository scan.
type ScanResult struct {
	FilesScanned   int          `json:"total_files_scanned"`
	CallsFound     int          `json:"api_calls_found"`
	MonthlySavings string       `json:"estimated_monthly_savings"`
	Complexity     Complexity   `json:"migration_complexity"`
	Calls          []CallRecord `json:"calls"`
	Timestamp      time.Time    `json:"scan_timestamp"`
}

// ConversionResult is the outcome of converting a single call record.
// A failed conversion carries empty generated code and at least one error.
type ConversionResult struct {
	Original        CallRecord `json:"original_call"`
	GeneratedCode   string     `json:"converted_code"`
	Conversation    any        `json:"harmony_conversation,omitempty"`
	Success         bool       `json:"success"`
	Warnings        []string   `json:"warnings,omitempty"`
	Errors          []string   `json:"errors,omitempty"`
	EstimatedTokens int        `json:"estimated_tokens"`
}

// MigrationReport is the complete outcome of a scan-and-convert run.
type MigrationReport struct {
	Scan        ScanResult         `json:"scan_result"`
	Conversions []ConversionResult `json:"conversion_results"`
	Total       int                `json:"total_conversions"`
	Succeeded   int                `json:"successful_conversions"`
	Failed      int                `json:"failed_conversions"`
	Savings     string             `json:"estimated_total_savings"`
	Model       string             `json:"model_used"`
	Backend     string             `json:"backend_used"`
	Timestamp   time.Time          `json:"migration_timestamp"`
}

// SuccessRate returns the fraction of conversions that succeeded.
func (r MigrationReport) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.Total)
}
