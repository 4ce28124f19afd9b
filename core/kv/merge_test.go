package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	index := entry("100", "A", "default_item", axe) + entry("200", "B", "default_item", axe) + entry("300", "C", "default_item", axe)

	t.Run("Filtered", func(t *testing.T) {
		mm := Collect(axe, []string{"300", "100", "999"}, index)
		assert.Equal(t, []string{"100", "300"}, mm.IDs())
		e, ok := mm.Get("300")
		require.True(t, ok)
		assert.Equal(t, axe, e.SourceTag)
		assert.Contains(t, e.Text, `"C"`)
	})

	t.Run("All", func(t *testing.T) {
		mm := Collect(axe, nil, index)
		assert.Equal(t, 3, mm.Len())
	})

	t.Run("Empty", func(t *testing.T) {
		mm := Collect(axe, nil, "// nothing here\n")
		assert.Equal(t, 0, mm.Len())
	})
}

func TestMerge_LastWriterWins(t *testing.T) {
	a := Collect("source_a", nil, entry("100", "From A", "default_item", axe)+entry("101", "Only A", "default_item", axe))
	b := Collect("source_b", nil, entry("100", "From B", "default_item", axe))

	merged := Merge(nil, a)
	merged = Merge(merged, b)

	assert.Equal(t, []string{"100", "101"}, merged.IDs(), "first insertion order is kept")
	e, ok := merged.Get("100")
	require.True(t, ok)
	assert.Contains(t, e.Text, "From B")
	assert.Equal(t, "source_b", e.SourceTag)

	overwrites := merged.Overwrites()
	require.Len(t, overwrites, 1)
	assert.Equal(t, Overwrite{ID: "100", Previous: "source_a", Current: "source_b"}, overwrites[0])
}

func TestMergeMap_Nil(t *testing.T) {
	var mm *MergeMap
	assert.Equal(t, 0, mm.Len())
	assert.Nil(t, mm.IDs())
	assert.Nil(t, mm.Entries())
	assert.Nil(t, mm.Overwrites())
	_, ok := mm.Get("1")
	assert.False(t, ok)
}
