package factory

import (
	"fmt"

	"exam-prep-be/pkg/llm"
	"exam-prep-be/pkg/llm/anthropic"
	"exam-prep-be/pkg/llm/huggingface"
	"exam-prep-be/pkg/llm/ollama"
)

type ProviderConfig struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.New(cfg.BaseURL, cfg.Model), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		return anthropic.NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	case "huggingface", "openai-compatible":
		return huggingface.New(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
