package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"exam-prep-be/pkg/llm"
)

const DefaultBaseURL = "http://localhost:11434"

// Provider calls the /api/chat endpoint of a local Ollama server with
// streaming disabled.
type Provider struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = (*Provider)(nil)

func New(baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: llm.DefaultTimeout},
	}
}

func (p *Provider) BaseURL() string { return p.baseURL }

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  modelOptions  `json:"options"`
}

type modelOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatResponse struct {
	Message llm.Message `json:"message"`
	Error   string      `json:"error,omitempty"`
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Resolve(llm.Options{Model: p.model, Temperature: 0.7}, options)

	req := chatRequest{
		Model:    opts.Model,
		Messages: make([]llm.Message, len(history)),
		Options:  modelOptions{Temperature: opts.Temperature, NumPredict: opts.MaxTokens},
	}
	for i, m := range history {
		if m.Role == "model" {
			m.Role = "assistant"
		}
		req.Messages[i] = m
	}
	if opts.JSON {
		req.Format = "json"
	}

	var resp chatResponse
	if err := llm.PostJSON(ctx, p.client, p.baseURL+"/api/chat", nil, req, &resp); err != nil {
		return "", fmt.Errorf("ollama %s: %w", opts.Model, err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama %s: %s", opts.Model, resp.Error)
	}
	return resp.Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, llm.Prompt(prompt), options...)
}
