package match

import (
	"slices"
	"strings"
	"unicode"
)

// roleSuffixes are trailing column name tokens that describe the role of a
// value rather than what it is: created_at, order_id, synced_ts.
var roleSuffixes = []string{"at", "ts", "utc", "on", "id", "ids", "timestamp"}

// rolePrefixes are leading tokens of boolean columns: is_active, has_email.
var rolePrefixes = []string{"is", "has"}

// TokenizeIdent splits a column or field name into lowercase tokens. Both
// Go spellings and storage spellings are understood:
//
//	OrderID     -> [order id]
//	customer_id -> [customer id]
//	XMLPayload  -> [xml payload]
//	postal-code -> [postal code]
func TokenizeIdent(s string) []string {
	var (
		tokens []string
		start  = -1
	)

	runes := []rune(s)
	flush := func(end int) {
		if start >= 0 && end > start {
			tokens = append(tokens, strings.ToLower(string(runes[start:end])))
		}

		start = -1
	}

	for i, r := range runes {
		if isSeparator(r) {
			flush(i)
			continue
		}

		if start >= 0 && wordBoundary(runes, i) {
			flush(i)
		}

		if start < 0 {
			start = i
		}
	}

	flush(len(runes))

	return tokens
}

// wordBoundary reports whether a new word starts at runes[i]: at a lower to
// upper transition ("orderId") or at the last capital of an acronym
// followed by lowercase ("XMLPayload").
func wordBoundary(runes []rune, i int) bool {
	if !unicode.IsUpper(runes[i]) {
		return false
	}

	prev := runes[i-1]
	if !unicode.IsUpper(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// NormalizeColumn folds the spelling of a column name so that "full_name",
// "fullName" and "FullName" compare equal.
func NormalizeColumn(name string) string {
	return strings.Join(TokenizeIdent(name), "")
}

// columnStem is NormalizeColumn without one role prefix and one role suffix
// token, so "created_at" and "created_ts" share the stem "created". A name is
// never reduced to nothing.
func columnStem(name string) string {
	tokens := TokenizeIdent(name)

	if len(tokens) > 1 && slices.Contains(rolePrefixes, tokens[0]) {
		tokens = tokens[1:]
	}

	if len(tokens) > 1 && slices.Contains(roleSuffixes, tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}

	return strings.Join(tokens, "")
}
