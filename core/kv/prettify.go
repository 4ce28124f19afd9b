package kv

import "strings"

const (
	minifiedMaxLines = 100
	minifiedMinBytes = 10 * 1024
)

// IsMinified reports whether text looks like a single-line dump: fewer than
// 100 line breaks but more than 10 KiB of content.
func IsMinified(text string) bool {
	return len(text) > minifiedMinBytes && strings.Count(text, "\n") < minifiedMaxLines
}

// Prettify re-emits minified text as indented multi-line KeyValues so the
// line-based re-rooting in ReplaceBlock behaves. Text that is not minified is
// returned unchanged.
func Prettify(text string) string {
	if !IsMinified(text) {
		return text
	}
	return Format(text)
}

// Format re-emits text with one key (and its value) per line, braces on their
// own lines and one tab of indentation per depth. Quote and escape handling
// matches the block scanner, so braces inside strings are never structural.
func Format(text string) string {
	var (
		sb      strings.Builder
		depth   int
		onLine  int // tokens written on the current line
		tokens  = tokenizer{src: text}
		newline = func() {
			sb.WriteByte('\n')
			onLine = 0
		}
		indent = func() {
			for i := 0; i < depth; i++ {
				sb.WriteByte('\t')
			}
		}
	)
	sb.Grow(len(text) + len(text)/4)

	for {
		tok, kind, ok := tokens.next()
		if !ok {
			break
		}
		switch kind {
		case tokOpen:
			if onLine > 0 {
				newline()
			}
			indent()
			sb.WriteByte('{')
			newline()
			depth++
		case tokClose:
			if onLine > 0 {
				newline()
			}
			if depth > 0 {
				depth--
			}
			indent()
			sb.WriteByte('}')
			newline()
		case tokComment:
			if onLine > 0 {
				newline()
			}
			indent()
			sb.WriteString(tok)
			newline()
		default:
			switch {
			case onLine == 0:
				indent()
				sb.WriteString(tok)
				onLine = 1
			case onLine == 1:
				sb.WriteString("\t\t")
				sb.WriteString(tok)
				onLine = 2
			case kind == tokBare && strings.HasPrefix(tok, "["):
				// platform conditional trailing a key/value pair
				sb.WriteByte(' ')
				sb.WriteString(tok)
				onLine++
			default:
				newline()
				indent()
				sb.WriteString(tok)
				onLine = 1
			}
		}
	}
	if onLine > 0 {
		newline()
	}
	return sb.String()
}

type tokenKind int

const (
	tokString tokenKind = iota
	tokBare
	tokOpen
	tokClose
	tokComment
)

type tokenizer struct {
	src string
	pos int
}

// next returns the next raw token. Quoted strings keep their quotes and
// escapes verbatim.
func (t *tokenizer) next() (string, tokenKind, bool) {
	src := t.src
	for t.pos < len(src) && isSpace(src[t.pos]) {
		t.pos++
	}
	if t.pos >= len(src) {
		return "", 0, false
	}
	start := t.pos
	switch c := src[start]; {
	case c == '{':
		t.pos++
		return "{", tokOpen, true
	case c == '}':
		t.pos++
		return "}", tokClose, true
	case c == '"':
		i := start + 1
		for i < len(src) {
			if src[i] == '\\' {
				i += 2
				continue
			}
			if src[i] == '"' {
				i++
				break
			}
			i++
		}
		if i > len(src) {
			i = len(src)
		}
		t.pos = i
		return src[start:i], tokString, true
	case c == '/' && start+1 < len(src) && src[start+1] == '/':
		end := strings.IndexByte(src[start:], '\n')
		if end < 0 {
			end = len(src) - start
		}
		t.pos = start + end
		return strings.TrimRight(src[start:t.pos], "\r"), tokComment, true
	default:
		i := start
		for i < len(src) && !isSpace(src[i]) && src[i] != '"' && src[i] != '{' && src[i] != '}' {
			i++
		}
		t.pos = i
		return src[start:i], tokBare, true
	}
}
