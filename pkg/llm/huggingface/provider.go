package huggingface

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"exam-prep-be/pkg/llm"
)

const DefaultBaseURL = "https://router.huggingface.co/v1"

// Provider speaks the OpenAI chat completions dialect, served by the
// HuggingFace router and most self-hosted inference servers.
type Provider struct {
	baseURL string
	model   string
	header  http.Header
	client  *http.Client
}

var _ llm.LLMProvider = (*Provider)(nil)

func New(apiKey, baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	header := http.Header{}
	if apiKey != "" {
		header.Set("Authorization", "Bearer "+apiKey)
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		header:  header,
		client:  &http.Client{Timeout: llm.DefaultTimeout},
	}
}

type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []llm.Message   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionResponse struct {
	Choices []struct {
		Message      llm.Message `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Resolve(llm.Options{Model: p.model, MaxTokens: 4096, Temperature: 0.7}, options)

	req := completionRequest{
		Model:       opts.Model,
		Messages:    history,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if opts.JSON {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp completionResponse
	if err := llm.PostJSON(ctx, p.client, p.baseURL+"/chat/completions", p.header, req, &resp); err != nil {
		return "", fmt.Errorf("chat completions %s: %w", opts.Model, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("chat completions %s: %s", opts.Model, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completions %s: no choices returned", opts.Model)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "length" && opts.JSON {
		return "", fmt.Errorf("chat completions %s: answer truncated at %d tokens", opts.Model, opts.MaxTokens)
	}
	return choice.Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, llm.Prompt(prompt), options...)
}
