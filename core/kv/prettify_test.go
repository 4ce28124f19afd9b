package kv

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minifiedItems(n, padding int) (string, []string) {
	var sb strings.Builder
	ids := make([]string, 0, n)
	sb.WriteString(`"items_game"{"items"{`)
	for i := 0; i < n; i++ {
		id := fmt.Sprint(1000 + i)
		ids = append(ids, id)
		fmt.Fprintf(&sb, `"%s"{"name""item %d""prefab""default_item""item_description""%s {braces} \"quoted\"""used_by_heroes"{"npc_dota_hero_axe""1"}}`,
			id, i, strings.Repeat("x", padding))
	}
	sb.WriteString(`}}`)
	return sb.String(), ids
}

func TestIsMinified(t *testing.T) {
	small := `"1"{"name""x"}`
	assert.False(t, IsMinified(small))

	big, _ := minifiedItems(5, 10_000)
	assert.True(t, IsMinified(big))

	lines := strings.Repeat("\"k\"\t\"v\"\n", 2000)
	assert.False(t, IsMinified(lines), "many line breaks")
}

func TestPrettify_Minified(t *testing.T) {
	text, ids := minifiedItems(5, 10_000)
	require.Greater(t, len(text), 50_000)
	require.Zero(t, strings.Count(text, "\n"))

	before := ExtractAll(text)
	pretty := Prettify(text)
	after := ExtractAll(pretty)

	assert.Len(t, before, 5)
	assert.Len(t, after, len(before))
	assert.Greater(t, strings.Count(pretty, "\n"), 5)

	for _, id := range ids {
		b, ok := FindBlock(pretty, id)
		require.True(t, ok, "id %s", id)
		assert.Less(t, b.LineStart, b.Start, "id %s re-roots to its line", id)
		assert.Contains(t, b.Body(pretty), `{braces} \"quoted\"`)
	}
}

func TestPrettify_NoOp(t *testing.T) {
	text := "\"1\"\n{\n\t\"name\"\t\t\"x\"\n}\n"
	assert.Equal(t, text, Prettify(text))
}

func TestFormat(t *testing.T) {
	in := `"1"{"name""a{b}c" "visuals"{"asset""x" [$WIN32]} // note
}`
	want := "\"1\"\n{\n\t\"name\"\t\t\"a{b}c\"\n\t\"visuals\"\n\t{\n\t\t\"asset\"\t\t\"x\" [$WIN32]\n\t}\n\t// note\n}\n"
	assert.Equal(t, want, Format(in))
}
