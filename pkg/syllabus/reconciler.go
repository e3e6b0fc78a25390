package syllabus

import (
	"fmt"
	"sort"

	"exam-prep-be/internal/entity"
)

// DefaultTopicCap is the retention ceiling for topics taken from the shared
// syllabus. It is not a page size.
const DefaultTopicCap = 46

// Reconcile merges the legacy per-assistant topics with the shared syllabus
// entries. A non-empty shared source replaces legacy entirely: entries are
// ordered newest first, capped, given canonical unique slugs and numbered
// 1..n. With no shared entries the legacy list is returned unchanged.
// Inputs are never mutated.
func Reconcile(legacy []*entity.Topic, shared []*entity.SyllabusEntry, limit int) []*entity.Topic {
	if len(shared) == 0 {
		out := make([]*entity.Topic, len(legacy))
		copy(out, legacy)
		return out
	}
	if limit <= 0 {
		limit = DefaultTopicCap
	}

	entries := make([]*entity.SyllabusEntry, len(shared))
	copy(entries, shared)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Id.String() < b.Id.String()
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	taken := make(map[string]int, len(entries))
	out := make([]*entity.Topic, 0, len(entries))
	for i, e := range entries {
		slug := uniqueSlug(taken, CanonicalSlug(e))
		out = append(out, &entity.Topic{
			AssistantId: e.AssistantId,
			Slug:        slug,
			Title:       e.Title,
			Order:       i + 1,
			Status:      entity.TopicStatusDraft,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

// CanonicalSlug prefers the entry's own slug, then its title, then its id,
// always passed through Slugify.
func CanonicalSlug(e *entity.SyllabusEntry) string {
	for _, candidate := range []string{e.Slug, e.Title, e.Id.String()} {
		if s := Slugify(candidate); s != "" {
			return s
		}
	}
	return "topic"
}

func uniqueSlug(taken map[string]int, slug string) string {
	n, seen := taken[slug]
	if !seen {
		taken[slug] = 1
		return slug
	}
	for {
		n++
		candidate := fmt.Sprintf("%s-%d", slug, n)
		if _, clash := taken[candidate]; !clash {
			taken[slug] = n
			taken[candidate] = 1
			return candidate
		}
	}
}
