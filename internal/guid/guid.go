package guid

import (
	"strings"
)

const (
	// Marker precedes every identifier occurrence in a text asset.
	Marker = "guid: "
	// Length is the fixed size of an identifier token.
	Length = 32
)

// ID is a 32-character lowercase alphanumeric asset identifier.
type ID string

// String returns the raw token.
func (id ID) String() string { return string(id) }

// Valid reports whether token is exactly Length characters of 0-9 or a-z.
func Valid(token string) bool {
	if len(token) != Length {
		return false
	}
	return validChars(token)
}

func validChars(token string) bool {
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

// Extract returns every valid identifier that follows Marker in text, in
// order of occurrence and including duplicates. The scanner always consumes
// Length characters after a marker, so a token that fails validation is
// skipped as a whole. A marker at the very end of text with a truncated token
// is ignored.
func Extract(text string) []ID {
	var ids []ID
	index := 0
	for index+len(Marker)+Length <= len(text) {
		found := strings.Index(text[index:], Marker)
		if found < 0 {
			break
		}
		index += found + len(Marker)
		if index+Length > len(text) {
			break
		}
		token := text[index : index+Length]
		index += Length
		if validChars(token) {
			ids = append(ids, ID(token))
		}
	}
	return ids
}

// First returns the first identifier in text, if any.
func First(text string) (ID, bool) {
	ids := Extract(text)
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// Replace swaps every marker-anchored occurrence of old for replacement. Bytes
// outside those occurrences are untouched, and a bare old token without the
// marker is left alone.
func Replace(content string, old, replacement ID) string {
	return strings.ReplaceAll(content, Marker+string(old), Marker+string(replacement))
}

// Occurrences counts the marker-anchored occurrences of id in content.
func Occurrences(content string, id ID) int {
	return strings.Count(content, Marker+string(id))
}
