package kv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceBlock(t *testing.T) {
	text := "\"555\"\n{\n\"name\" \"default\"\n}"

	t.Run("Match", func(t *testing.T) {
		out, ok := ReplaceBlock(text, "555", "\"555\"\n{\n\"name\" \"rain\"\n}")
		require.True(t, ok)
		assert.Equal(t, "\"555\"\n{\n\"name\" \"rain\"\n}", out)
	})

	t.Run("Missing", func(t *testing.T) {
		out, ok := ReplaceBlock(text, "999", "\"999\"\n{\n}")
		assert.False(t, ok)
		assert.Equal(t, text, out)
	})
}

func TestReplaceBlock_KeepsSurroundings(t *testing.T) {
	text := "\"items\"\n{\n\t\"1\"\n\t{\n\t\t\"name\"\t\t\"one\"\n\t}\n\t\"2\"\n\t{\n\t\t\"name\"\t\t\"two\"\n\t}\n}\n"

	out, ok := ReplaceBlock(text, "1", "\t\"1\"\n\t{\n\t\t\"name\"\t\t\"uno\"\n\t}\n\n\n")
	require.True(t, ok)
	assert.Equal(t, strings.Replace(text, "\"one\"", "\"uno\"", 1), out)
}

func TestReplaceBlock_Idempotent(t *testing.T) {
	text := "\"items\"\n{\n\t\"10\"\n\t{\n\t\t\"name\"\t\t\"ten\"\n\t\t\"prefab\"\t\t\"default_item\"\n\t}\n}\n"

	b, ok := FindBlock(text, "10")
	require.True(t, ok)
	same := b.Text(text)

	out, ok := ReplaceBlock(text, "10", same)
	require.True(t, ok)
	assert.Equal(t, text, out)

	out, ok = ReplaceBlock(text, "10", same+"  \n\t")
	require.True(t, ok)
	assert.Equal(t, text, out, "trailing whitespace is not significant")
}

func TestReplaceBlock_IdempotentWithoutTerminator(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"EndOfFile", "\"555\"\n{\n\"name\" \"default\"\n}"},
		{"InlineClose", "\"items\" { \"555\" { \"name\" \"default\" } }\n"},
		{"CRLF", "\"555\"\r\n{\r\n\"name\" \"default\"\r\n}\r\n\"556\"\r\n{\r\n\"name\" \"b\"\r\n}\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := FindBlock(tt.text, "555")
			require.True(t, ok)
			out, ok := ReplaceBlock(tt.text, "555", b.Text(tt.text))
			require.True(t, ok)
			assert.Equal(t, tt.text, out)
		})
	}
}

func TestReplaceBlock_RoundTrip(t *testing.T) {
	text := "\"items\"\n{\n\t\"10\"\n\t{\n\t\t\"name\"\t\t\"ten\"\n\t}\n\t\"11\"\n\t{\n\t\t\"name\"\t\t\"eleven\"\n\t}\n}\n"
	a := "\t\"10\"\n\t{\n\t\t\"name\"\t\t\"ten v2\"\n\t\t\"item_slot\"\t\t\"weapon\"\n\t}"

	first, ok := ReplaceBlock(text, "10", a)
	require.True(t, ok)

	b, ok := FindBlock(first, "10")
	require.True(t, ok)
	second, ok := ReplaceBlock(first, "10", b.Text(first))
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestReplaceBlock_CRLF(t *testing.T) {
	text := "\"1\"\r\n{\r\n\"name\" \"a\"\r\n}\r\n\"2\"\r\n{\r\n\"name\" \"b\"\r\n}\r\n"

	out, ok := ReplaceBlock(text, "1", "\"1\"\r\n{\r\n\"name\" \"z\"\r\n}\r\n")
	require.True(t, ok)
	assert.Equal(t, "\"1\"\r\n{\r\n\"name\" \"z\"\r\n}\r\n\"2\"\r\n{\r\n\"name\" \"b\"\r\n}\r\n", out)
}

func TestFindBlock_QuoteAware(t *testing.T) {
	text := `"1" { "name" "a{b}c" }`

	b, ok := FindBlock(text, "1")
	require.True(t, ok)
	assert.Equal(t, 0, b.Start)
	assert.Equal(t, len(text), b.End)
	assert.Equal(t, byte('{'), text[b.Open])

	blocks := ExtractAll(text)
	require.Len(t, blocks, 1)
	assert.Equal(t, "1", blocks[0].ID)
}

func TestFindBlock_EscapedQuotes(t *testing.T) {
	text := `"7" { "name" "say \"}\" now" "prefab" "x" } "8" { "name" "eight" }`

	b, ok := FindBlock(text, "7")
	require.True(t, ok)
	assert.Equal(t, `"7" { "name" "say \"}\" now" "prefab" "x" }`, b.Body(text))
}

func TestFindBlock_BalancedSpan(t *testing.T) {
	text := "\"3\"\n{\n\t\"visuals\"\n\t{\n\t\t\"asset\"\t\t\"x\"\n\t\t\"styles\" { \"0\" { \"name\" \"s\" } }\n\t}\n}\ntrailing"

	b, ok := FindBlock(text, "3")
	require.True(t, ok)
	body := b.Body(text)
	assert.Equal(t, strings.Count(body, "{"), strings.Count(body, "}"))
	assert.True(t, strings.HasSuffix(body, "}"))
	assert.Equal(t, "{", strings.TrimSpace(text[b.Start+len(`"3"`):b.Open+1]))
}

func TestFindBlock_ValuePositionRejected(t *testing.T) {
	text := "\"ref\" \"100\"\n{\n\"name\" \"trap\"\n}\n\"x\"\n{\n}\n\"100\"\n{\n\"name\" \"real\"\n}\n"

	b, ok := FindBlock(text, "100")
	require.True(t, ok)
	assert.Equal(t, strings.LastIndex(text, "\"100\""), b.Start)
	assert.Contains(t, b.Body(text), "real")
}

func TestFindBlock_RequiresBrace(t *testing.T) {
	_, ok := FindBlock(`"100" "value"`, "100")
	assert.False(t, ok)

	_, ok = FindBlock(`"1" { "name" "x"`, "1")
	assert.False(t, ok, "unbalanced block")

	_, ok = FindBlock(`"1" { "name" "x" }`, "")
	assert.False(t, ok)
}

func TestFindBlock_AdversarialTerminates(t *testing.T) {
	text := strings.Repeat(`"9" `, 3*MaxScanAttempts)
	_, ok := FindBlock(text, "9")
	assert.False(t, ok)
}

// The entry heuristic is approximate; these cases pin its current behavior.
func TestFindBlock_EntryHeuristic(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"ShortWithoutMarker", `"5" { "a" "b" }`, false},
		{"ShortWithMarker", `"6" { "name" "x" }`, true},
		{"LongWithoutMarker", `"7" { "unrelated" "` + strings.Repeat("x", MinEntryLength) + `" }`, true},
		{"MarkerAsValue", `"8" { "kind" "name" }`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.text[1:2]
			_, ok := FindBlock(tt.text, id)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestFindBlock_LineStart(t *testing.T) {
	text := "\t\t\"42\"\n\t\t{\n\t\t\t\"name\" \"x\"\n\t\t}\n"
	b, ok := FindBlock(text, "42")
	require.True(t, ok)
	assert.Equal(t, 0, b.LineStart)
	assert.Equal(t, 2, b.Start)

	minified := `"items"{"42"{"name""x"}}`
	b, ok = FindBlock(minified, "42")
	require.True(t, ok)
	assert.Equal(t, b.Start, b.LineStart, "no re-rooting when other tokens share the line")
}

func TestExtractAll(t *testing.T) {
	text := "\"items_game\"\n{\n\t\"items\"\n\t{\n\t\t\"1\" { \"name\" \"a\" \"visuals\" { \"2\" { \"x\" \"y\" } } }\n\t\t\"default\" { \"name\" \"d\" }\n\t\t\"3\" { \"name\" \"c\" }\n\t}\n}\n"

	blocks := ExtractAll(text)
	require.Len(t, blocks, 2)
	assert.Equal(t, "1", blocks[0].ID)
	assert.Equal(t, "3", blocks[1].ID)
}
