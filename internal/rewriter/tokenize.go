package rewriter

import "strings"

// splitTopLevel splits s on commas that are outside brackets and outside
// quoted literals. It reports false when a bracket closes below depth zero,
// a bracket is left open, or a literal is left unterminated.
func splitTopLevel(s string) ([]string, bool) {
	var tokens []string
	var quote byte
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, false
			}
		case ',':
			if depth == 0 {
				tokens = append(tokens, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 || quote != 0 {
		return nil, false
	}
	return append(tokens, s[start:]), true
}

// mergeLiterals joins a chain of adjacent string literals, optionally
// separated by '+', into a single literal. Tokens that contain anything other
// than literals, '+' and whitespace are returned unchanged.
func mergeLiterals(token string) string {
	if !strings.HasPrefix(token, `"`) {
		return token
	}
	var parts []string
	for i := 0; i < len(token); {
		switch c := token[i]; {
		case c == '"':
			end := closingQuote(token, i)
			if end < 0 {
				return token
			}
			parts = append(parts, token[i+1:end])
			i = end + 1
		case c == '+' || c == ' ' || c == '\t':
			i++
		default:
			return token
		}
	}
	return `"` + strings.Join(parts, "") + `"`
}

// closingQuote returns the index of the quote that closes the literal opened
// at open, skipping escaped characters.
func closingQuote(s string, open int) int {
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// stripQuotes removes the double quotes delimiting literals. Escaped quotes
// belong to the literal text and are kept.
func stripQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
		case c == '"':
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
