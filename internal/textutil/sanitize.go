package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// MaxBaseNameRunes bounds the length of capture artifact names.
	MaxBaseNameRunes = 50
	// DefaultBaseName is used when a title has no usable characters.
	DefaultBaseName = "video"
)

// SafeBaseName derives a filesystem-safe artifact name from a video title.
// The title is NFC-normalized, reduced to letters, digits, spaces, hyphens,
// and underscores, trimmed, and cut to MaxBaseNameRunes runes.
func SafeBaseName(title string) string {
	title = norm.NFC.String(title)
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r):
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(b.String())
	if runes := []rune(name); len(runes) > MaxBaseNameRunes {
		name = strings.TrimSpace(string(runes[:MaxBaseNameRunes]))
	}
	if name == "" {
		return DefaultBaseName
	}
	return name
}
