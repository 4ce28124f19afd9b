package kv

import "strings"

// MaxScanAttempts bounds how many candidate occurrences of an id token
// FindBlock inspects before giving up.
const MaxScanAttempts = 10000

// MinEntryLength is the byte length at which a block counts as a real entry
// even when none of the entry markers are present.
const MinEntryLength = 80

// entryMarkers are field names that identify a block as an item entry.
var entryMarkers = []string{
	`"name"`,
	`"prefab"`,
	`"item_name"`,
	`"item_slot"`,
	`"used_by_heroes"`,
	`"visuals"`,
	`"image_inventory"`,
}

// Block is a view of one `"id" { ... }` entry inside a text buffer.
// Offsets are byte offsets into the buffer the block was found in.
type Block struct {
	// ID is the numeric key token without its quotes.
	ID string
	// LineStart is where a replacement is re-rooted: the start of the id's
	// line when only whitespace precedes the id on that line, otherwise Start.
	LineStart int
	// Start is the offset of the opening quote of the id token.
	Start int
	// Open is the offset of the block's opening brace.
	Open int
	// End is the offset just past the matching closing brace.
	End int
}

// Text returns the block's full text, header line included.
func (b Block) Text(src string) string {
	return src[b.LineStart:b.End]
}

// Body returns the text from the id token to the closing brace.
func (b Block) Body(src string) string {
	return src[b.Start:b.End]
}

// FindBlock locates the top-level entry keyed by id.
//
// Occurrences of the quoted id are rejected when they sit in value position
// (preceded by another quoted token) or are not followed by an opening brace.
// The accepted span must also look like an item entry; see looksLikeEntry.
func FindBlock(text, id string) (Block, bool) {
	if id == "" {
		return Block{}, false
	}
	token := `"` + id + `"`
	pos := 0
	for attempt := 0; attempt < MaxScanAttempts && pos < len(text); attempt++ {
		rel := strings.Index(text[pos:], token)
		if rel < 0 {
			return Block{}, false
		}
		start := pos + rel
		if b, ok := blockAt(text, id, start, len(token)); ok && looksLikeEntry(b.Body(text)) {
			return b, true
		}
		pos = start + 1
	}
	return Block{}, false
}

// ReplaceBlock swaps the entry keyed by id for replacement.
// The replacement is trailing-trimmed and followed by the line terminator
// that followed the old block (none at end of file or before an inline brace).
// When id is absent the original text is returned with false.
func ReplaceBlock(text, id, replacement string) (string, bool) {
	b, ok := FindBlock(text, id)
	if !ok {
		return text, false
	}
	return splice(text, b, replacement), true
}

// ExtractAll returns every numeric-keyed block in document order.
// Matched blocks are not descended into, so nested numeric keys inside an
// entry are never reported separately.
func ExtractAll(text string) []Block {
	var blocks []Block
	inQuote := false
	tokenStart := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !inQuote {
			if c == '"' {
				inQuote = true
				tokenStart = i
			}
			continue
		}
		switch c {
		case '\\':
			i++
		case '"':
			inQuote = false
			id := text[tokenStart+1 : i]
			if !isNumeric(id) {
				continue
			}
			if b, ok := blockAt(text, id, tokenStart, i-tokenStart+1); ok {
				blocks = append(blocks, b)
				i = b.End - 1
			}
		}
	}
	return blocks
}

// blockAt checks the structural conditions for a key token at start and
// walks its braces.
func blockAt(text, id string, start, tokenLen int) (Block, bool) {
	if p := prevNonSpace(text, start); p >= 0 && text[p] == '"' {
		return Block{}, false
	}
	open := nextNonSpace(text, start+tokenLen)
	if open < 0 || text[open] != '{' {
		return Block{}, false
	}
	end, ok := matchBrace(text, open)
	if !ok {
		return Block{}, false
	}
	return Block{
		ID:        id,
		LineStart: lineStart(text, start),
		Start:     start,
		Open:      open,
		End:       end,
	}, true
}

// matchBrace returns the offset just past the brace closing the one at open.
// Braces inside quoted strings are ignored; a backslash inside quotes escapes
// the following byte.
func matchBrace(text string, open int) (int, bool) {
	depth := 0
	inQuote := false
	for i := open; i < len(text); i++ {
		c := text[i]
		if inQuote {
			switch c {
			case '\\':
				i++
			case '"':
				inQuote = false
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// splice replaces b's span, re-rooted at b.LineStart, with replacement.
// Trailing whitespace of replacement is dropped and everything after the old
// closing brace, line terminator included, is kept as is. A block replaced
// by its own text leaves the document unchanged.
func splice(text string, b Block, replacement string) string {
	body := strings.TrimRight(replacement, " \t\r\n")

	var sb strings.Builder
	sb.Grow(b.LineStart + len(body) + len(text) - b.End)
	sb.WriteString(text[:b.LineStart])
	sb.WriteString(body)
	sb.WriteString(text[b.End:])
	return sb.String()
}

// looksLikeEntry is a cheap filter against accidental matches on short
// unrelated blocks. It is approximate: short custom entries without any
// marker are rejected and long unrelated blocks are accepted.
func looksLikeEntry(body string) bool {
	if len(body) >= MinEntryLength {
		return true
	}
	for _, m := range entryMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}

func lineStart(text string, start int) int {
	ls := strings.LastIndexByte(text[:start], '\n') + 1
	if strings.TrimSpace(text[ls:start]) != "" {
		return start
	}
	return ls
}

func prevNonSpace(text string, i int) int {
	for j := i - 1; j >= 0; j-- {
		if !isSpace(text[j]) {
			return j
		}
	}
	return -1
}

func nextNonSpace(text string, i int) int {
	for j := i; j < len(text); j++ {
		if !isSpace(text[j]) {
			return j
		}
	}
	return -1
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
