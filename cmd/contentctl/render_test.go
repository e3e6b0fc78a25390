package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"exam-prep-be/internal/entity"
	"exam-prep-be/internal/pkg/logger"
	"exam-prep-be/pkg/generation"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestPrintResult(t *testing.T) {
	res := generation.NewGenerationResult()
	res.SuccessfulTopics = 2
	res.FailedTopics = 1
	res.TestsCreated = 40
	res.FlashcardsCreated = 90
	res.Errors = append(res.Errors, "tema-2: timeout")

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, res, false))
	out := buf.String()
	assert.Contains(t, out, "2 successful, 1 failed")
	assert.Contains(t, out, "Created 40 tests and 90 flashcards")
	assert.Contains(t, out, "tema-2: timeout")

	buf.Reset()
	require.NoError(t, printResult(&buf, res, true))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.EqualValues(t, 90, decoded["flashcards_created"])

	buf.Reset()
	require.NoError(t, printResult(&buf, nil, false))
	assert.Empty(t, buf.String())
}

func TestPrintTopicsAndEntries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printTopics(&buf, []*entity.Topic{
		{Order: 1, Title: "Constitución Española", Slug: "constitucion-espanola", Status: entity.TopicStatusPublished},
	}))
	assert.Contains(t, buf.String(), "constitucion-espanola")
	assert.Contains(t, buf.String(), string(entity.TopicStatusPublished))

	buf.Reset()
	require.NoError(t, printEntries(&buf, nil))
	assert.Contains(t, buf.String(), "No entries")

	buf.Reset()
	require.NoError(t, printEntries(&buf, []logger.LogEntry{
		{Timestamp: "2024-05-06T08:00:00Z", Level: "warn", Module: "GENERATION", Message: "Deficit", Details: map[string]interface{}{"topic": "tema-9"}},
	}))
	assert.Contains(t, buf.String(), "[GENERATION] Deficit")
	assert.Contains(t, buf.String(), `"topic":"tema-9"`)
}
