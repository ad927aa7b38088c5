package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// MaxFallbackLength bounds the length of names produced by FallbackFileName.
const MaxFallbackLength = 50

// IllegalFileNameChars lists the characters Windows refuses in file names.
const IllegalFileNameChars = `<>:"/\|?*`

// StripIllegal removes every character of IllegalFileNameChars and trims the
// surrounding whitespace. Other characters pass through untouched.
func StripIllegal(name string) string {
	return strings.TrimSpace(removeIllegal(name))
}

func removeIllegal(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(IllegalFileNameChars, r) {
			return -1
		}
		return r
	}, name)
}

// CleanSuggestion prepares model output for use as a file name. Illegal
// characters and control runes such as embedded newlines are removed.
func CleanSuggestion(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, StripIllegal(text))
	return strings.TrimSpace(cleaned)
}

// nonASCII drops every rune that has no ASCII encoding.
var nonASCII = runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII }))

// FallbackFileName derives a deterministic name from a media title when no
// suggestion is available. Illegal characters are removed, characters with
// no ASCII encoding are dropped (accented letters included), and the result
// is cut to MaxFallbackLength characters before trimming. The result may be
// empty.
func FallbackFileName(title string) string {
	out, _, err := transform.String(nonASCII, removeIllegal(title))
	if err != nil {
		return ""
	}
	if len(out) > MaxFallbackLength {
		out = out[:MaxFallbackLength]
	}
	return strings.TrimSpace(out)
}
