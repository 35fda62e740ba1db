package rowfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	id     string
	fields []string
}

var recordView = View[record]{
	Fields: func(r record) []string { return r.fields },
	Key:    func(r record) string { return r.id },
}

var nameKeyView = View[record]{
	Fields: func(r record) []string { return r.fields },
	Key:    func(r record) string { return r.fields[0] },
}

func sample() []record {
	return []record{
		{id: "1", fields: []string{"Ana", "Member", "Active", "2024-01-01"}},
		{id: "2", fields: []string{"Bo", "Secretary", "Active", "2024-02-01"}},
		{id: "3", fields: []string{"Dana", "Treasurer", "Inactive", "2023-09-12"}},
	}
}

func TestFilter_EmptyQueryReturnsInput(t *testing.T) {
	items := sample()
	assert.Equal(t, items, recordView.Filter(items, ""))
	assert.Equal(t, items, recordView.Filter(items, "   "))
}

func TestFilter_CaseInsensitiveAnyField(t *testing.T) {
	items := sample()

	got := recordView.Filter(items, "AN")
	assert.Equal(t, []record{items[0], items[2]}, got, "order is preserved")

	got = recordView.Filter(items, "secret")
	assert.Equal(t, []record{items[1]}, got)

	got = recordView.Filter(items, "2023")
	assert.Equal(t, []record{items[2]}, got)

	assert.Empty(t, recordView.Filter(items, "zzz"))
}

func TestFilter_ResultIsSubsequence(t *testing.T) {
	items := sample()
	for _, q := range []string{"a", "active", "-0", "e"} {
		got := recordView.Filter(items, q)
		j := 0
		for _, item := range items {
			if j < len(got) && item.id == got[j].id {
				j++
			}
		}
		assert.Equal(t, len(got), j, "query %q", q)
		for _, item := range got {
			assert.True(t, Matches(item.fields, q))
		}
	}
}

func TestResolve_MapsFilteredRowToAuthoritativeIndex(t *testing.T) {
	items := sample()

	idx, ok := recordView.Resolve(items, "bo", 0)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = recordView.Resolve(items, "an", 1)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = recordView.Resolve(items, "", 2)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestResolve_OutOfRangeRowsAreDiscarded(t *testing.T) {
	items := sample()

	for _, row := range []int{-1, 1, 5} {
		_, ok := recordView.Resolve(items, "bo", row)
		assert.False(t, ok, "row %d", row)
	}
	_, ok := recordView.Resolve(nil, "", 0)
	assert.False(t, ok)
}

func TestResolve_DuplicateNamesHitFirstWhenKeyedByName(t *testing.T) {
	items := []record{
		{id: "1", fields: []string{"Ana", "Member"}},
		{id: "2", fields: []string{"Ana", "Secretary"}},
	}

	idx, ok := nameKeyView.Resolve(items, "secretary", 0)
	assert.True(t, ok)
	assert.Equal(t, 0, idx, "name keys always land on the first duplicate")

	idx, ok = recordView.Resolve(items, "secretary", 0)
	assert.True(t, ok)
	assert.Equal(t, 1, idx, "id keys land on the displayed record")
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches([]string{"Computer Society"}, "society"))
	assert.True(t, Matches(nil, ""))
	assert.False(t, Matches(nil, "x"))
}
