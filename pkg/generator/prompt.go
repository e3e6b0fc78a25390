package generator

import (
	"fmt"
	"strings"

	"exam-prep-be/pkg/generation"
)

const (
	maxExcluded    = 60
	maxExcludedLen = 120
)

// BuildPrompt renders the JSON-only instruction for one generator call.
func BuildPrompt(req generation.GenerateRequest, language string) string {
	var b strings.Builder

	b.WriteString("You are an expert exam-preparation author.\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON array. No preamble, no markdown, no backticks.\n\n")

	title := req.Topic.Title
	if title == "" {
		title = req.Topic.Slug
	}
	b.WriteString(fmt.Sprintf("Topic: %s\n", title))
	if language != "" {
		b.WriteString(fmt.Sprintf("Write every item in %s.\n", language))
	}

	switch req.Kind {
	case generation.KindTest:
		b.WriteString(fmt.Sprintf("Generate exactly %d multiple choice questions.\n", req.Count))
		b.WriteString(`
JSON schema per item:
{"stem": "string", "options": ["string", "string", "string", "string"], "answer": "A"|"B"|"C"|"D", "rationale": "string", "difficulty": "easy"|"medium"|"hard"}

Exactly 4 distinct options. answer is the label of the correct option.
Mix difficulties across the set.
`)
	case generation.KindFlashcard:
		b.WriteString(fmt.Sprintf("Generate exactly %d flashcards.\n", req.Count))
		b.WriteString(`
JSON schema per item:
{"front": "string", "back": "string", "tags": ["string"]}

front is a short question or cue, back is a concise answer.
`)
	}

	if excluded := trimList(req.Constraints.Exclude); len(excluded) > 0 {
		b.WriteString("\nThe topic already contains these items. Do NOT repeat or paraphrase them:\n")
		for _, e := range excluded {
			b.WriteString("- " + e + "\n")
		}
	}
	if template := trimList(req.Constraints.Template); len(template) > 0 {
		b.WriteString("\nThe following source items may inspire coverage but must NOT be copied. Rewrite in your own words:\n")
		for _, e := range template {
			b.WriteString("- " + e + "\n")
		}
	}

	return b.String()
}

// trimList keeps the most recent entries and shortens long ones.
func trimList(items []string) []string {
	if len(items) > maxExcluded {
		items = items[len(items)-maxExcluded:]
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.Join(strings.Fields(it), " ")
		if it == "" {
			continue
		}
		if r := []rune(it); len(r) > maxExcludedLen {
			it = string(r[:maxExcludedLen]) + "…"
		}
		out = append(out, it)
	}
	return out
}
