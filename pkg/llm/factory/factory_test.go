package factory

import (
	"testing"

	"exam-prep-be/pkg/llm/anthropic"
	"exam-prep-be/pkg/llm/huggingface"
	"exam-prep-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(ProviderConfig{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	o, ok := p.(*ollama.Provider)
	require.True(t, ok)
	assert.Equal(t, ollama.DefaultBaseURL, o.BaseURL())

	p, err = NewLLMProvider(ProviderConfig{Provider: "anthropic", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.IsType(t, &anthropic.AnthropicProvider{}, p)

	p, err = NewLLMProvider(ProviderConfig{Provider: "huggingface", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &huggingface.Provider{}, p)

	_, err = NewLLMProvider(ProviderConfig{Provider: "anthropic"})
	assert.Error(t, err)

	_, err = NewLLMProvider(ProviderConfig{Provider: "gpt-local"})
	assert.Error(t, err)
}
