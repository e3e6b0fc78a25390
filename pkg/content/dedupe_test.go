package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type card struct {
	id      string
	front   string
	back    string
	created time.Time
}

func (c card) ContentKey() string     { return HashFlashcard(c.front, c.back) }
func (c card) CreatedTime() time.Time { return c.created }
func (c card) Identifier() string     { return c.id }

func ids(cards []card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.id
	}
	return out
}

var base = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestDedupe_KeepsOldest(t *testing.T) {
	items := []card{
		{id: "b", front: "Q", back: "A", created: base.Add(time.Minute)},
		{id: "a", front: "q ", back: "a", created: base},
		{id: "c", front: "Other", back: "A", created: base},
	}

	res := Dedupe(items)

	assert.Equal(t, []string{"a", "c"}, ids(res.Kept))
	assert.Equal(t, []string{"b"}, ids(res.Removed))
}

func TestDedupe_TieBreaksOnSmallestID(t *testing.T) {
	items := []card{
		{id: "zz", front: "Q", back: "A", created: base},
		{id: "aa", front: "Q", back: "A", created: base},
		{id: "mm", front: "Q", back: "A", created: base},
	}

	res := Dedupe(items)

	assert.Equal(t, []string{"aa"}, ids(res.Kept))
	assert.ElementsMatch(t, []string{"zz", "mm"}, ids(res.Removed))
}

func TestDedupe_Idempotent(t *testing.T) {
	items := []card{
		{id: "1", front: "Q1", back: "A", created: base.Add(3 * time.Second)},
		{id: "2", front: "q1", back: "a", created: base.Add(time.Second)},
		{id: "3", front: "Q2", back: "A", created: base},
		{id: "4", front: "Q2", back: "A", created: base},
		{id: "5", front: "Q3", back: "A", created: base},
	}

	first := Dedupe(items)
	second := Dedupe(first.Kept)

	assert.Equal(t, ids(first.Kept), ids(second.Kept))
	assert.Empty(t, second.Removed)
	assert.Len(t, first.Kept, 3)
}

func TestDedupe_SameItemTwice(t *testing.T) {
	c := card{id: "x", front: "Q", back: "A", created: base}

	res := Dedupe([]card{c, c})

	require.Len(t, res.Kept, 1)
	require.Len(t, res.Removed, 1)
}

func TestDedupe_Empty(t *testing.T) {
	res := Dedupe([]card{})

	assert.Empty(t, res.Kept)
	assert.Empty(t, res.Removed)
}

func TestFilterNew(t *testing.T) {
	existing := []card{{id: "1", front: "Q1", back: "A"}}
	seen := KeySet(existing)

	accepted, dupes := FilterNew(seen, []card{
		{id: "2", front: "q1", back: "a"},
		{id: "3", front: "Q2", back: "A"},
		{id: "4", front: "Q2 ", back: "A"},
	})

	assert.Equal(t, []string{"3"}, ids(accepted))
	assert.Equal(t, []string{"2", "4"}, ids(dupes))
	assert.Len(t, seen, 2)
}
