// Package tools provides the tool system the migrated calls rely on:
// a registry of named tools, their metadata, and the execution hook the
// generated code's continuation loop calls into.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Parameter defines one parameter of a tool's schema.
type Parameter struct {
	Name        string `json:"name"`
	ParamType   string `json:"param_type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Metadata describes what a tool does and how to call it.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// String returns a short representation of the tool metadata.
func (m Metadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Result is the outcome of a tool execution. Success is determined by
// whether Error is nil.
type Result struct {
	Output string `json:"output"`
	Error  error  `json:"-"`
}

// MarshalJSON serializes the result with an explicit success flag, which
// is the shape re-injected into the conversation as a tool turn.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Output  string `json:"output"`
			Error   string `json:"error"`
		}{false, r.Output, r.Error.Error()})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Output  string `json:"output"`
	}{true, r.Output})
}

// Success returns true if the execution succeeded.
func (r Result) Success() bool {
	return r.Error == nil
}

// SuccessResult creates a successful result.
func SuccessResult(output string) Result {
	return Result{Output: output}
}

// FailureResult creates a failed result.
func FailureResult(err error) Result {
	return Result{Error: err}
}

// FailureResultf creates a failed result with a formatted message.
func FailureResultf(format string, args ...any) Result {
	return Result{Error: fmt.Errorf(format, args...)}
}

// Tool is the interface every tool implements.
type Tool interface {
	// Metadata returns the tool's name, description, and parameters.
	Metadata() Metadata

	// Execute runs the tool with JSON-encoded arguments.
	Execute(ctx context.Context, args json.RawMessage) (Result, error)
}
