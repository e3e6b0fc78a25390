package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"exam-prep-be/pkg/llm"
	"exam-prep-be/pkg/retry"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultModel = "claude-sonnet-4-5"

type AnthropicProvider struct {
	client *sdk.Client
	model  string
}

var _ llm.LLMProvider = &AnthropicProvider{}

// NewAnthropicProvider disables SDK retries; callers retry through pkg/retry.
func NewAnthropicProvider(apiKey, model string, opts ...option.RequestOption) *AnthropicProvider {
	if model == "" {
		model = defaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	client := sdk.NewClient(opts...)
	return &AnthropicProvider{client: &client, model: model}
}

func (p *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Resolve(llm.Options{Model: p.model, MaxTokens: 4096, Temperature: 0.7}, options)

	params := sdk.MessageNewParams{
		Model:       sdk.Model(opts.Model),
		MaxTokens:   int64(opts.MaxTokens),
		Temperature: sdk.Float(opts.Temperature),
	}

	for _, msg := range history {
		switch msg.Role {
		case "system":
			params.System = append(params.System, sdk.TextBlockParam{Text: msg.Content})
		case "assistant", "model":
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(sdk.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages, sdk.NewUserMessage(sdk.NewTextBlock(msg.Content)))
		}
	}
	if opts.JSON {
		params.System = append(params.System, sdk.TextBlockParam{Text: "Respond with JSON only, no prose and no code fences."})
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("anthropic: %w", &retry.HTTPStatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Error()})
		}
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text content (stop reason %s)", resp.StopReason)
	}
	return sb.String(), nil
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, llm.Prompt(prompt), options...)
}
