package content

import (
	"fmt"
	"strings"
)

const OptionCount = 4

// AnswerLabels are the option labels in presentation order.
var AnswerLabels = [OptionCount]string{"A", "B", "C", "D"}

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ShapeError reports a generated or stored item that fails basic validation.
type ShapeError struct {
	Field  string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("malformed item: %s %s", e.Field, e.Reason)
}

// ValidateTestQuestion checks stem, options and difficulty. It returns the
// canonical answer label and difficulty to store.
func ValidateTestQuestion(stem string, options []string, answer, difficulty string) (string, string, error) {
	if strings.TrimSpace(stem) == "" {
		return "", "", &ShapeError{Field: "stem", Reason: "is empty"}
	}
	if len(options) != OptionCount {
		return "", "", &ShapeError{Field: "options", Reason: fmt.Sprintf("has %d entries, want %d", len(options), OptionCount)}
	}
	seen := make(map[string]struct{}, len(options))
	for i, opt := range options {
		n := Normalize(opt)
		if n == "" {
			return "", "", &ShapeError{Field: "options", Reason: fmt.Sprintf("entry %s is empty", AnswerLabels[i])}
		}
		if _, dup := seen[n]; dup {
			return "", "", &ShapeError{Field: "options", Reason: fmt.Sprintf("entry %s repeats another option", AnswerLabels[i])}
		}
		seen[n] = struct{}{}
	}

	label, err := ResolveAnswer(answer, options)
	if err != nil {
		return "", "", err
	}
	level, err := ResolveDifficulty(difficulty)
	if err != nil {
		return "", "", err
	}
	return label, level, nil
}

// ValidateFlashcard checks that both sides carry text.
func ValidateFlashcard(front, back string) error {
	if strings.TrimSpace(front) == "" {
		return &ShapeError{Field: "front", Reason: "is empty"}
	}
	if strings.TrimSpace(back) == "" {
		return &ShapeError{Field: "back", Reason: "is empty"}
	}
	return nil
}

// ResolveAnswer accepts "A".."D" in any case with optional trailing ")" or
// ".", or the verbatim text of one of the options.
func ResolveAnswer(answer string, options []string) (string, error) {
	a := strings.TrimSpace(answer)
	a = strings.TrimRight(a, ").:")
	upper := strings.ToUpper(strings.TrimSpace(a))
	for _, label := range AnswerLabels {
		if upper == label {
			return label, nil
		}
	}

	n := Normalize(answer)
	if n != "" {
		for i, opt := range options {
			if i < OptionCount && Normalize(opt) == n {
				return AnswerLabels[i], nil
			}
		}
	}
	return "", &ShapeError{Field: "answer", Reason: fmt.Sprintf("%q is not one of A-D", answer)}
}

// ResolveDifficulty maps an empty value to medium and rejects unknown levels.
func ResolveDifficulty(difficulty string) (string, error) {
	switch d := strings.ToLower(strings.TrimSpace(difficulty)); d {
	case "":
		return DifficultyMedium, nil
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", &ShapeError{Field: "difficulty", Reason: fmt.Sprintf("%q is not easy, medium or hard", difficulty)}
	}
}
