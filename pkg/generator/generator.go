// Package generator implements generation.Generator on top of an LLM.
package generator

import (
	"context"
	"fmt"
	"time"

	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/pkg/generation"
	"exam-prep-be/pkg/llm"
	"exam-prep-be/pkg/retry"
)

type Config struct {
	// BatchSize caps the items asked for in one call. The coordinator
	// requests the remainder on its next attempt.
	BatchSize   int
	Language    string
	Temperature float64
	Retry       retry.Policy
}

func DefaultConfig() Config {
	return Config{
		BatchSize:   25,
		Language:    "Spanish",
		Temperature: 0.8,
		Retry:       retry.DefaultPolicy(),
	}
}

type LLMGenerator struct {
	provider llm.LLMProvider
	logger   logger.ILogger
	cfg      Config
}

var _ generation.Generator = &LLMGenerator{}

func NewLLMGenerator(provider llm.LLMProvider, logger logger.ILogger, cfg Config) *LLMGenerator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	return &LLMGenerator{provider: provider, logger: logger, cfg: cfg}
}

func (g *LLMGenerator) Generate(ctx context.Context, req generation.GenerateRequest) ([]generation.RawItem, error) {
	if req.Count <= 0 {
		return nil, nil
	}
	if req.Count > g.cfg.BatchSize {
		req.Count = g.cfg.BatchSize
	}
	prompt := BuildPrompt(req, g.cfg.Language)

	policy := g.cfg.Retry
	policy.OnRetry = func(err error, wait time.Duration) {
		g.logger.Warn("GENERATION", "Retrying LLM call", map[string]interface{}{
			"topic_slug": req.Topic.Slug,
			"kind":       req.Kind,
			"wait_ms":    wait.Milliseconds(),
			"error":      err.Error(),
		})
	}

	start := time.Now()
	text, err := retry.Do(ctx, policy, retry.ClassifyHTTP, func(ctx context.Context) (string, error) {
		return g.provider.Generate(ctx, prompt, llm.WithJSONOutput(), llm.WithTemperature(g.cfg.Temperature))
	})
	if err != nil {
		return nil, fmt.Errorf("generate %s for %s: %w", req.Kind, req.Topic.Slug, err)
	}

	items, err := ParseItems(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s for %s: %w", req.Kind, req.Topic.Slug, err)
	}

	g.logger.Info("GENERATION", "LLM batch received", map[string]interface{}{
		"topic_slug":  req.Topic.Slug,
		"kind":        req.Kind,
		"requested":   req.Count,
		"returned":    len(items),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return items, nil
}
