// Package repair makes loosely structured model output safely parseable.
// Narration backends are asked for JSON but routinely wrap it in code fences,
// smart quotes, trailing prose or half-escaped strings; repair is a staged
// fallback that either yields strict JSON or fails with a typed error.
package repair

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrDataIntegrity means every repair stage failed. Callers must surface it
// distinctly from transport failures and must never consume a partial object.
var ErrDataIntegrity = errors.New("model output failed all repair stages")

// Parse returns the first strict-parseable JSON object found in raw, trying
// in order: the trimmed text as-is, the substring between the first '{' and
// the last '}', and a sanitized rewrite of that substring.
func Parse(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if valid(trimmed) {
		return json.RawMessage(trimmed), nil
	}
	if inner, ok := extractObject(trimmed); ok {
		if valid(inner) {
			return json.RawMessage(inner), nil
		}
		if cleaned := Sanitize(inner); valid(cleaned) {
			return json.RawMessage(cleaned), nil
		}
	}
	if cleaned := Sanitize(trimmed); valid(cleaned) {
		return json.RawMessage(cleaned), nil
	}
	return nil, ErrDataIntegrity
}

// ParseInto parses (repairing as needed) and unmarshals into v.
func ParseInto(raw string, v any) error {
	obj, err := Parse(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(obj, v); err != nil {
		return ErrDataIntegrity
	}
	return nil
}

func valid(s string) bool {
	return s != "" && gjson.Valid(s)
}

func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// Sanitize rewrites common model-output damage: code fences, curly quotes,
// control characters, trailing commas, stray backslashes and unescaped
// quotes inside string values.
func Sanitize(s string) string {
	s = stripFences(s)
	s = normalizeQuotes(s)
	s = stripControl(s)
	s = escapeStrayBackslashes(s)
	s = escapeInteriorQuotes(s)
	s = dropTrailingCommas(s)
	return strings.TrimSpace(s)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.ReplaceAll(s, "```", "")
}

var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, // curly double quotes
	"‘", "'", "’", "'", // curly single quotes
)

func normalizeQuotes(s string) string { return quoteReplacer.Replace(s) }

func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// dropTrailingCommas removes commas directly preceding a closing brace or
// bracket, ignoring whitespace between them.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// escapeStrayBackslashes doubles backslashes that do not begin a valid JSON
// escape sequence.
func escapeStrayBackslashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s) && isEscapable(s[i+1]) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

func isEscapable(c byte) bool {
	switch c {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return false
}

// escapeInteriorQuotes re-escapes quote characters that appear inside string
// values. A closing quote is legitimate only when the next non-space byte is
// a JSON structural character; otherwise the quote is content and gets
// escaped.
func escapeInteriorQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		if c != '"' {
			b.WriteByte(c)
			continue
		}
		if !inString {
			inString = true
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		if j >= len(s) || isStructural(s[j]) {
			inString = false
			b.WriteByte(c)
			continue
		}
		b.WriteString(`\"`)
	}
	return b.String()
}

func isStructural(c byte) bool {
	switch c {
	case ':', ',', '}', ']':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
