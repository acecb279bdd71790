// Package inference provides local model backends the converted code
// targets. Backends block on network I/O with a configured timeout and
// a bounded retry count; the conversion core never touches them.
package inference

import (
	"context"
	"time"
)

// Supported local models.
const (
	ModelGPTOSS20B  = "gpt-oss-20b"
	ModelGPTOSS120B = "gpt-oss-120b"
)

// Backend kind identifiers.
const (
	BackendOllama = "ollama"
	BackendVLLM   = "vllm"
)

// Response is a backend's answer to a prompt.
type Response struct {
	Content    string         `json:"content"`
	TokensUsed int            `json:"tokens_used,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Backend is the inference interface the generated code assumes:
// send a rendered prompt, get text back.
type Backend interface {
	// Generate produces a completion for the rendered prompt.
	Generate(ctx context.Context, prompt string) (Response, error)

	// TestConnection reports whether the backend is reachable.
	TestConnection(ctx context.Context) bool

	// ModelInfo returns backend-specific model metadata.
	ModelInfo(ctx context.Context) (map[string]any, error)
}

// Config holds connection settings shared by all backends.
type Config struct {
	OllamaHost string
	VLLMHost   string
	Timeout    time.Duration
	MaxRetries int
}

// DefaultConfig returns the default backend configuration.
func DefaultConfig() Config {
	return Config{
		OllamaHost: "http://localhost:11434",
		VLLMHost:   "http://localhost:8000",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}
}

// retry runs fn up to maxRetries+1 times, backing off briefly between
// attempts, and returns the last error. Context cancellation stops the
// attempts immediately.
func retry(ctx context.Context, maxRetries int, fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 500 * time.Millisecond):
		}
	}
	return err
}
