package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/richinex/harmonize/internal/jsonutil"
)

// Executor is the tool-execution hook the continuation protocol expects:
// given a tool name and JSON-encoded arguments, it returns a
// JSON-encoded result. It resolves tools through an injected registry.
type Executor struct {
	registry *Registry
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute runs the named tool. Arguments that are not strict JSON are
// recovered with jsonutil, since local models tend to wrap payloads in
// fences or prose. The returned string is the JSON serialization of the
// tool result, suitable for re-injection as a tool turn.
func (e *Executor) Execute(ctx context.Context, name, jsonArgs string) (string, error) {
	tool, ok := e.registry.Get(name)
	if !ok {
		return "", fmt.Errorf("tool %q not found", name)
	}

	args := json.RawMessage(jsonArgs)
	if !json.Valid(args) {
		extracted, err := jsonutil.ExtractObject(jsonArgs)
		if err != nil {
			args = json.RawMessage("{}")
		} else {
			args = extracted
		}
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return "", fmt.Errorf("executing %q: %w", name, err)
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encoding result of %q: %w", name, err)
	}
	return string(encoded), nil
}
