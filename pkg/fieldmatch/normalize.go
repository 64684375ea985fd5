package fieldmatch

import (
	"strings"
	"unicode"
)

// NormalizeIdent folds a field name for comparison: lowercase, with
// separators (_ - space and .) removed, so "createdAt", "created_at" and
// "Created-At" all become "createdat".
func NormalizeIdent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isSeparator(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Tokenize splits a field name into lowercase words on separators and
// camel case boundaries.
//   - "OrderID" -> ["order", "id"]
//   - "XMLParser" -> ["xml", "parser"]
//   - "user.first_name" -> ["user", "first", "name"]
func Tokenize(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)
	runes := []rune(s)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}
		if i > 0 && startsToken(runes, i) {
			flush()
		}
		current.WriteRune(r)
	}
	flush()
	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}
	// orderId: lower -> upper
	if !unicode.IsUpper(prev) {
		return true
	}
	// XMLParser: end of an acronym
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
