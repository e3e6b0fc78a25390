package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"exam-prep-be/pkg/generation"
)

var ErrNoJSON = errors.New("generator response contains no JSON")

// ParseItems decodes a model answer into raw items. It accepts a bare array
// or an object wrapping the array under items, questions or flashcards, with
// or without code fences around it.
func ParseItems(response string) ([]generation.RawItem, error) {
	s := stripCodeFences(response)

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return nil, ErrNoJSON
	}
	s = s[start:]

	if s[0] == '[' {
		end := strings.LastIndex(s, "]")
		if end == -1 {
			return nil, ErrNoJSON
		}
		var items []generation.RawItem
		if err := json.Unmarshal([]byte(s[:end+1]), &items); err != nil {
			return nil, fmt.Errorf("json unmarshal failed: %w", err)
		}
		return items, nil
	}

	end := strings.LastIndex(s, "}")
	if end == -1 {
		return nil, ErrNoJSON
	}
	var wrapped struct {
		Items      []generation.RawItem `json:"items"`
		Questions  []generation.RawItem `json:"questions"`
		Flashcards []generation.RawItem `json:"flashcards"`
	}
	if err := json.Unmarshal([]byte(s[:end+1]), &wrapped); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}
	switch {
	case len(wrapped.Items) > 0:
		return wrapped.Items, nil
	case len(wrapped.Questions) > 0:
		return wrapped.Questions, nil
	default:
		return wrapped.Flashcards, nil
	}
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
