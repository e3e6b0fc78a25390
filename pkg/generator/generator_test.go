package generator

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/pkg/generation"
	"exam-prep-be/pkg/llm"
	"exam-prep-be/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	replies []string
	errs    []error
	prompts []string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return p.Generate(ctx, history[len(history)-1].Content, options...)
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	i := len(p.prompts)
	p.prompts = append(p.prompts, prompt)
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	return p.replies[i], nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BatchSize = 10
	cfg.Retry = retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
	return cfg
}

func topic() *entity.Topic {
	return &entity.Topic{AssistantId: "a", Slug: "tema-1", Title: "Derecho constitucional"}
}

func TestParseItems(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"bare array", `[{"front":"a","back":"b"}]`, 1},
		{"fenced", "```json\n[{\"stem\":\"q\"},{\"stem\":\"r\"}]\n```", 2},
		{"wrapped items", `Here you go: {"items":[{"front":"a","back":"b"}]}`, 1},
		{"wrapped questions", `{"questions":[{"stem":"q"}]}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseItems(tt.input)
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
		})
	}

	_, err := ParseItems("sorry, I cannot")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestLLMGenerator_CapsBatchAndRetriesTransientErrors(t *testing.T) {
	provider := &scriptedProvider{
		errs:    []error{&retry.HTTPStatusError{StatusCode: http.StatusTooManyRequests}, nil},
		replies: []string{"", `[{"stem":"q","options":["a","b","c","d"],"answer":"A"}]`},
	}
	g := NewLLMGenerator(provider, logger.NewNopLogger(), testConfig())

	items, err := g.Generate(context.Background(), generation.GenerateRequest{
		Topic:       topic(),
		Kind:        generation.KindTest,
		Count:       45,
		Constraints: generation.Constraints{Exclude: []string{"Existing   stem"}, Template: []string{"Source stem"}},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "q", items[0].Stem)

	require.Len(t, provider.prompts, 2)
	prompt := provider.prompts[1]
	assert.Contains(t, prompt, "Generate exactly 10 multiple choice questions")
	assert.Contains(t, prompt, "- Existing stem")
	assert.Contains(t, prompt, "- Source stem")
	assert.Contains(t, prompt, "Derecho constitucional")
}

func TestLLMGenerator_FatalErrorNotRetried(t *testing.T) {
	provider := &scriptedProvider{
		errs:    []error{&retry.HTTPStatusError{StatusCode: http.StatusUnauthorized}},
		replies: []string{""},
	}
	g := NewLLMGenerator(provider, logger.NewNopLogger(), testConfig())

	_, err := g.Generate(context.Background(), generation.GenerateRequest{Topic: topic(), Kind: generation.KindFlashcard, Count: 5})
	require.Error(t, err)
	assert.Len(t, provider.prompts, 1)
}

func TestBuildPrompt_Flashcards(t *testing.T) {
	long := strings.Repeat("x", 200)
	p := BuildPrompt(generation.GenerateRequest{
		Topic:       topic(),
		Kind:        generation.KindFlashcard,
		Count:       7,
		Constraints: generation.Constraints{Exclude: []string{long}},
	}, "Spanish")

	assert.Contains(t, p, "Generate exactly 7 flashcards")
	assert.Contains(t, p, "Write every item in Spanish")
	assert.NotContains(t, p, long)
}
