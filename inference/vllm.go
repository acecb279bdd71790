package inference

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// VLLMBackend generates completions through a vLLM server's
// OpenAI-compatible chat API.
type VLLMBackend struct {
	model      string
	client     *openai.Client
	maxRetries int
}

// NewVLLM creates a vLLM backend for the given model.
// vLLM serves the OpenAI wire format, so the standard client is pointed
// at the local server with a dummy key.
func NewVLLM(model string, cfg Config) *VLLMBackend {
	clientCfg := openai.DefaultConfig("EMPTY")
	clientCfg.BaseURL = strings.TrimRight(cfg.VLLMHost, "/") + "/v1"
	return &VLLMBackend{
		model:      model,
		client:     openai.NewClientWithConfig(clientCfg),
		maxRetries: cfg.MaxRetries,
	}
}

// Generate sends the rendered prompt as a single user message; the
// server applies the model's own Harmony chat template.
func (b *VLLMBackend) Generate(ctx context.Context, prompt string) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   2048,
	}

	var resp openai.ChatCompletionResponse
	err := retry(ctx, b.maxRetries, func() error {
		var err error
		resp, err = b.client.CreateChatCompletion(ctx, req)
		return err
	})
	if err != nil {
		return Response{}, fmt.Errorf("vllm chat completion: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	return Response{
		Content:    content,
		TokensUsed: resp.Usage.TotalTokens,
		Metadata: map[string]any{
			"model":             b.model,
			"backend":           BackendVLLM,
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
		},
	}, nil
}

// TestConnection lists the served models.
func (b *VLLMBackend) TestConnection(ctx context.Context) bool {
	_, err := b.client.ListModels(ctx)
	return err == nil
}

// ModelInfo looks the model up in the server's model list.
func (b *VLLMBackend) ModelInfo(ctx context.Context) (map[string]any, error) {
	models, err := b.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("vllm list models: %w", err)
	}
	for _, m := range models.Models {
		if m.ID == b.model {
			return map[string]any{
				"model":    b.model,
				"backend":  BackendVLLM,
				"object":   m.Object,
				"created":  m.CreatedAt,
				"owned_by": m.OwnedBy,
			}, nil
		}
	}
	return map[string]any{
		"model":   b.model,
		"backend": BackendVLLM,
		"error":   "model not found on server",
	}, nil
}
