// Package quality decides whether a topic's content is fit to publish.
package quality

import (
	"fmt"

	"exam-prep-be/pkg/content"
)

// Policy holds the publish thresholds. Tests must hit RequiredTestCount
// exactly while flashcards only need to reach MinFlashcardCount.
type Policy struct {
	RequiredTestCount int     `yaml:"required_test_count" json:"required_test_count"`
	MinFlashcardCount int     `yaml:"min_flashcard_count" json:"min_flashcard_count"`
	MinRewriteRatio   float64 `yaml:"min_rewrite_ratio" json:"min_rewrite_ratio"`
}

func DefaultPolicy() Policy {
	return Policy{
		RequiredTestCount: 20,
		MinFlashcardCount: 45,
		MinRewriteRatio:   0.6,
	}
}

func (p Policy) Validate() error {
	if p.RequiredTestCount <= 0 {
		return fmt.Errorf("required test count must be positive, got %d", p.RequiredTestCount)
	}
	if p.MinFlashcardCount < 0 {
		return fmt.Errorf("min flashcard count cannot be negative, got %d", p.MinFlashcardCount)
	}
	if p.MinRewriteRatio < 0 || p.MinRewriteRatio > 1 {
		return fmt.Errorf("min rewrite ratio must be within [0,1], got %.2f", p.MinRewriteRatio)
	}
	return nil
}

// Adaptation carries the texts of a template topic and of the content
// derived from it. Only adapted topics are checked for rewrite ratio.
type Adaptation struct {
	Source  []string
	Adapted []string
}

type Report struct {
	TestDeficit      int     `json:"test_deficit"`
	FlashcardDeficit int     `json:"flashcard_deficit"`
	RewriteRatio     float64 `json:"rewrite_ratio"`
	RewriteChecked   bool    `json:"rewrite_checked"`
	Passed           bool    `json:"passed"`
}

// TestsNeeded is how many tests must be generated; zero on surplus.
func (r Report) TestsNeeded() int {
	return max(r.TestDeficit, 0)
}

// TestSurplus is how many tests must be pruned to restore the exact count.
func (r Report) TestSurplus() int {
	return max(-r.TestDeficit, 0)
}

func (r Report) FlashcardsNeeded() int {
	return max(r.FlashcardDeficit, 0)
}

// Evaluate computes deficits and the pass verdict. testDeficit is negative
// on surplus and a surplus fails the gate just like a shortage.
func Evaluate(testCount, flashcardCount int, adaptation *Adaptation, p Policy) Report {
	r := Report{
		TestDeficit:      p.RequiredTestCount - testCount,
		FlashcardDeficit: p.MinFlashcardCount - flashcardCount,
		RewriteRatio:     1,
	}

	rewriteOK := true
	if adaptation != nil {
		r.RewriteChecked = true
		r.RewriteRatio = RewriteRatio(adaptation.Source, adaptation.Adapted)
		rewriteOK = r.RewriteRatio >= p.MinRewriteRatio
	}

	r.Passed = r.TestDeficit == 0 && r.FlashcardDeficit <= 0 && rewriteOK
	return r
}

// RewriteRatio is the fraction of adapted texts whose normalized form does
// not occur in the source. An empty adapted set has ratio 0.
func RewriteRatio(source, adapted []string) float64 {
	if len(adapted) == 0 {
		return 0
	}
	src := make(map[string]struct{}, len(source))
	for _, s := range source {
		src[content.Normalize(s)] = struct{}{}
	}

	rewritten := 0
	for _, a := range adapted {
		if _, same := src[content.Normalize(a)]; !same {
			rewritten++
		}
	}
	return float64(rewritten) / float64(len(adapted))
}

// IsVerbatim reports whether text matches any source text after
// normalization.
func IsVerbatim(source []string, text string) bool {
	n := content.Normalize(text)
	for _, s := range source {
		if content.Normalize(s) == n {
			return true
		}
	}
	return false
}
