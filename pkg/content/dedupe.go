package content

import "time"

// Item is anything the deduplicator can group by content.
type Item interface {
	ContentKey() string
	CreatedTime() time.Time
	Identifier() string
}

// DedupeResult splits the input into survivors and losers. Both slices keep
// the relative order of the input.
type DedupeResult[T Item] struct {
	Kept    []T
	Removed []T
}

// Dedupe keeps exactly one item per content key: the earliest created, or on
// a timestamp tie the one with the lexicographically smallest id. Running it
// again over Kept never removes anything.
func Dedupe[T Item](items []T) DedupeResult[T] {
	winners := make(map[string]int, len(items))
	for i, it := range items {
		key := it.ContentKey()
		j, ok := winners[key]
		if !ok || precedes(it, items[j]) {
			winners[key] = i
		}
	}

	res := DedupeResult[T]{
		Kept:    make([]T, 0, len(winners)),
		Removed: make([]T, 0, len(items)-len(winners)),
	}
	for i, it := range items {
		if winners[it.ContentKey()] == i {
			res.Kept = append(res.Kept, it)
		} else {
			res.Removed = append(res.Removed, it)
		}
	}
	return res
}

func precedes(a, b Item) bool {
	at, bt := a.CreatedTime(), b.CreatedTime()
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.Identifier() < b.Identifier()
}

// KeySet collects the content keys of items.
func KeySet[T Item](items []T) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it.ContentKey()] = struct{}{}
	}
	return set
}

// FilterNew returns the candidates whose key is not yet in seen, adding each
// accepted key to seen. Later candidates colliding with earlier ones are
// rejected as duplicates.
func FilterNew[T Item](seen map[string]struct{}, candidates []T) (accepted, duplicates []T) {
	for _, c := range candidates {
		key := c.ContentKey()
		if _, dup := seen[key]; dup {
			duplicates = append(duplicates, c)
			continue
		}
		seen[key] = struct{}{}
		accepted = append(accepted, c)
	}
	return accepted, duplicates
}
