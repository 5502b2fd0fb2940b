package memory

import (
	"strings"
	"unicode"
)

// cleanGameboyTitle turns the raw 16-byte header title field into something
// printable: NULs become spaces, anything non-printable becomes '?', and the
// result is trimmed. An empty field yields a placeholder.
func cleanGameboyTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		switch r := rune(b); {
		case r == 0:
			runes = append(runes, ' ')
		case unicode.IsPrint(r):
			runes = append(runes, r)
		default:
			runes = append(runes, '?')
		}
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
