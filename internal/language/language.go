package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// bibliographic maps ISO 639-2/B codes, which x/text does not parse, to
// ISO 639-1.
var bibliographic = map[string]string{
	"alb": "sq",
	"arm": "hy",
	"baq": "eu",
	"bur": "my",
	"chi": "zh",
	"cze": "cs",
	"dut": "nl",
	"fre": "fr",
	"geo": "ka",
	"ger": "de",
	"gre": "el",
	"ice": "is",
	"mac": "mk",
	"may": "ms",
	"per": "fa",
	"rum": "ro",
	"slo": "sk",
	"wel": "cy",
}

// whisperLanguages lists the ISO 639-1 codes accepted by WhisperX's
// alignment models. English names of these codes are accepted as input.
var whisperLanguages = []string{
	"ar", "ca", "cs", "da", "de", "el", "en", "es", "fa", "fi", "fr", "he",
	"hi", "hu", "it", "ja", "ko", "nl", "no", "pl", "pt", "ru", "sv", "tr",
	"uk", "ur", "vi", "zh",
}

var byName = func() map[string]string {
	namer := display.English.Languages()
	names := make(map[string]string, len(whisperLanguages))
	for _, code := range whisperLanguages {
		name := strings.ToLower(namer.Name(xlanguage.Make(code)))
		if name != "" {
			names[name] = code
		}
	}
	return names
}()

// ToISO2 converts a language code, BCP 47 tag, or English language name to
// ISO 639-1. Unrecognized input returns an empty string; an unknown but
// well-formed 2-letter code passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if iso, ok := byName[code]; ok {
		return iso
	}
	if iso, ok := bibliographic[code]; ok {
		return iso
	}
	if tag, err := xlanguage.Parse(code); err == nil {
		base, _ := tag.Base()
		if s := base.String(); len(s) == 2 {
			return s
		}
	}
	if len(code) == 2 && isASCIILetters(code) {
		return code
	}
	return ""
}

// DisplayName returns the English name for a language code. Empty input
// yields "Unknown"; unrecognized input is uppercased.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	iso := ToISO2(trimmed)
	if iso == "" {
		return strings.ToUpper(trimmed)
	}
	tag, err := xlanguage.Parse(iso)
	if err != nil {
		return strings.ToUpper(iso)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(iso)
}

// IsWhisperSupported reports whether code normalizes to a language WhisperX
// can align.
func IsWhisperSupported(code string) bool {
	iso := ToISO2(code)
	for _, candidate := range whisperLanguages {
		if candidate == iso {
			return true
		}
	}
	return false
}

func isASCIILetters(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
