package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// OllamaBackend generates completions through an Ollama server's
// /api/generate endpoint.
type OllamaBackend struct {
	model      string
	host       string
	client     *http.Client
	maxRetries int
}

// NewOllama creates an Ollama backend for the given model.
func NewOllama(model string, cfg Config) *OllamaBackend {
	return &OllamaBackend{
		model:      model,
		host:       strings.TrimRight(cfg.OllamaHost, "/"),
		client:     &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response        string `json:"response"`
	EvalCount       int    `json:"eval_count"`
	PromptEvalCount int    `json:"prompt_eval_count"`
}

// Generate sends the rendered prompt and returns the completion text.
func (b *OllamaBackend) Generate(ctx context.Context, prompt string) (Response, error) {
	payload, err := json.Marshal(ollamaRequest{
		Model:  b.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": 0.7,
			"top_p":       0.9,
			"num_predict": 2048,
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("encoding request: %w", err)
	}

	var result ollamaResponse
	err = retry(ctx, b.maxRetries, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			b.host+"/api/generate", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := b.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("ollama returned HTTP %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&result)
	})
	if err != nil {
		return Response{}, fmt.Errorf("ollama generate: %w", err)
	}

	return Response{
		Content:    result.Response,
		TokensUsed: result.EvalCount,
		Metadata: map[string]any{
			"model":           b.model,
			"backend":         BackendOllama,
			"prompt_tokens":   result.PromptEvalCount,
			"response_tokens": result.EvalCount,
		},
	}, nil
}

// TestConnection checks the tags endpoint.
func (b *OllamaBackend) TestConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ModelInfo queries the show endpoint for model metadata.
func (b *OllamaBackend) ModelInfo(ctx context.Context) (map[string]any, error) {
	payload, err := json.Marshal(map[string]string{"name": b.model})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.host+"/api/show", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama show: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned HTTP %d", resp.StatusCode)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return map[string]any{
		"model":       b.model,
		"backend":     BackendOllama,
		"size":        data["size"],
		"modified_at": data["modified_at"],
		"parameters":  data["parameter_size"],
	}, nil
}
