package inference

import "fmt"

// New creates a backend from model and backend identifiers.
func New(model, backend string, cfg Config) (Backend, error) {
	switch backend {
	case BackendOllama:
		return NewOllama(model, cfg), nil
	case BackendVLLM:
		return NewVLLM(model, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %q", backend)
	}
}
