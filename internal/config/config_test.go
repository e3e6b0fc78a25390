package config

import (
	"testing"
	"time"

	"exam-prep-be/pkg/quality"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPolicyYAML(t *testing.T) {
	g := GenerationConfig{Policy: quality.DefaultPolicy()}

	err := g.ApplyPolicyYAML([]byte(`
default:
  min_rewrite_ratio: 0.7
assistants:
  oposiciones-policia:
    min_flashcard_count: 60
  guardia-civil:
    required_test_count: 25
`))
	require.NoError(t, err)

	assert.Equal(t, 0.7, g.Policy.MinRewriteRatio)
	assert.Equal(t, 20, g.Policy.RequiredTestCount)

	p := g.PolicyFor("oposiciones-policia")
	assert.Equal(t, 60, p.MinFlashcardCount)
	assert.Equal(t, 20, p.RequiredTestCount)
	assert.Equal(t, 0.7, p.MinRewriteRatio)

	assert.Equal(t, 25, g.PolicyFor("guardia-civil").RequiredTestCount)
	assert.Equal(t, g.Policy, g.PolicyFor("unknown"))
}

func TestApplyPolicyYAML_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"broken yaml", "default: [::"},
		{"bad default ratio", "default:\n  min_rewrite_ratio: 1.5\n"},
		{"bad assistant count", "assistants:\n  a:\n    required_test_count: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := GenerationConfig{Policy: quality.DefaultPolicy()}
			assert.Error(t, g.ApplyPolicyYAML([]byte(tt.doc)))
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "7")
	t.Setenv("X_FLOAT", "0.25")
	t.Setenv("X_DUR", "90s")
	t.Setenv("X_BAD", "nope")

	assert.Equal(t, 7, getEnvAsInt("X_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("X_BAD", 1))
	assert.Equal(t, 0.25, getEnvAsFloat("X_FLOAT", 1))
	assert.Equal(t, 90*time.Second, getEnvAsDuration("X_DUR", time.Second))
	assert.Equal(t, time.Second, getEnvAsDuration("X_BAD", time.Second))
	assert.Equal(t, "fallback", getEnv("X_MISSING_KEY", "fallback"))
}
