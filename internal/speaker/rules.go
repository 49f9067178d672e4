package speaker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Predicate reports whether a captured candidate must be discarded.
type Predicate func(candidate string) bool

// Rule pairs a finder with the predicates that veto its candidate. Rules are
// evaluated in order by [Chain.Attribute]; the first surviving candidate wins.
type Rule struct {
	Name   string
	Find   func(title string) (string, bool)
	Reject []Predicate
}

// PatternRule builds a rule whose candidate is capture group 1 of the first
// match of re in the title.
func PatternRule(name string, re *regexp.Regexp, reject ...Predicate) Rule {
	return Rule{
		Name: name,
		Find: func(title string) (string, bool) {
			m := re.FindStringSubmatch(title)
			if len(m) < 2 {
				return "", false
			}
			return m[1], true
		},
		Reject: reject,
	}
}

// ContainsFold rejects candidates containing word, ignoring case.
func ContainsFold(word string) Predicate {
	needle := strings.ToLower(word)
	return func(candidate string) bool {
		return strings.Contains(strings.ToLower(candidate), needle)
	}
}

var (
	mentionsThesis = ContainsFold("thesis")
	mentionsMinute = ContainsFold("minute")
)

// --- Compiled rule patterns (order matters) ---
//
// RE2's \s, \d and \b are ASCII-only. Titles routinely carry no-break and
// ideographic spaces or full-width digits, so the patterns spell out the
// Unicode classes: [\s\p{Z}\v] for whitespace, \p{Nd} for digits, and
// (?:^|[^\p{L}\p{N}_]) ahead of a word that must start on a boundary.

var (
	// "... by Emily Johnston | University"
	reByName = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])by[\s\p{Z}\v]+([^|–\-]+?)(?:[\s\p{Z}\v]*[|–\-]|$)`)

	// "2023 Finals | Favour Nerrise, 1st Place"
	rePipePlace = regexp.MustCompile(`(?i)[|][\s\p{Z}\v]*([^|,]+?),?[\s\p{Z}\v]*(?:1st|2nd|3rd|\p{Nd}+(?:st|nd|rd|th))[\s\p{Z}\v]+Place`)

	// "UQ 3MT 2019 | Jane Doe, 2nd"
	reProgramPlace = regexp.MustCompile(`(?i)(?:3MT|3 Minute Thesis)[^|]*[|][\s\p{Z}\v]*([^|,]+?),?[\s\p{Z}\v]*(?:1st|2nd|3rd)`)

	// "3MT Winner Esther Li"
	reWinnerName = regexp.MustCompile(`(?i)Winner[\s\p{Z}\v]+([A-Za-z][A-Za-z\s\p{Z}\v]{1,40}?)(?:[\s\p{Z}\v]*[|–\-]|$)`)

	// "Winner - Matthew Thompson | Faculty"
	reWinnerDash = regexp.MustCompile(`(?i)Winner[\s\p{Z}\v]*[–\-][\s\p{Z}\v]*([A-Za-z][A-Za-z\s\p{Z}\v]+?)(?:[\s\p{Z}\v]*[|–\-]|$)`)

	// "Grand Final – Imogen Swift: 'Plastic Oceans'"
	reQuotedTopic = regexp.MustCompile(`–[\s\p{Z}\v]*([A-Za-z][A-Za-z\s\p{Z}\v]+?):[\s\p{Z}\v]*['"]`)

	// "Maria Caluianu - 2022 UCL"
	reNameYear = regexp.MustCompile(`([A-Za-z][A-Za-z\s\p{Z}\v]{2,35}?)[\s\p{Z}\v]*[–\-][\s\p{Z}\v]*\p{Nd}{4}[\s\p{Z}\v]+`)

	// "Siti Aimi Sarah Zainal Abidin (UPM)"
	reNameInstitution = regexp.MustCompile(`([A-Za-z][A-Za-z\s\p{Z}\v]{2,50}?)[\s\p{Z}\v]*\([A-Za-z\p{Nd}]+\)`)

	// "Winner - Willemijn Doedens" at the end or before a pipe.
	reWinnerDashPipe = regexp.MustCompile(`(?i)Winner[\s\p{Z}\v]*[–\-][\s\p{Z}\v]*([A-Za-z][A-Za-z\s\p{Z}\v]+?)(?:[\s\p{Z}\v]*$|[\s\p{Z}\v]*[|])`)

	// "Topic | 3MT | Niamh MacSweeney"
	reLastPipeSegment = regexp.MustCompile(`[|][\s\p{Z}\v]*([A-Za-z][A-Za-z\s\p{Z}\v]{2,40}?)[\s\p{Z}\v]*$`)

	// "2nd Runner-up | PENG Yingying"
	rePlacePipe = regexp.MustCompile(`(?:Runner-up|Place)[\s\p{Z}\v]*[|][\s\p{Z}\v]*([A-Za-z\s\p{Z}\v]+?)[\s\p{Z}\v]*$`)

	// "2013 Three Minute Thesis Winner - Sharon Savage"
	reWinnerDashEnd = regexp.MustCompile(`(?i)Winner[\s\p{Z}\v]*[–\-][\s\p{Z}\v]*([A-Za-z][A-Za-z\s\p{Z}\v]+?)[\s\p{Z}\v]*$`)

	// "Deepanjali Mishra - 2025 Three Minute Thesis"
	reNameYearProgram = regexp.MustCompile(`(?i)([A-Za-z][A-Za-z\s\p{Z}\v]{2,40}?)[\s\p{Z}\v]*[–\-][\s\p{Z}\v]*\p{Nd}{4}[\s\p{Z}\v]+Three`)

	reNameShape = regexp.MustCompile(`^[A-Za-z][A-Za-z\s\p{Z}\v]+$`)
)

// RuleNameFallback marks a Match that came from the caller's fallback.
const RuleNameFallback = "fallback"

const (
	tailSeparator = " - "
	tailMinRunes  = 3
	tailMaxRunes  = 45
)

// trailingDashSegment takes the text after the last " - " and keeps it only
// when it is shaped like a personal name.
func trailingDashSegment(title string) (string, bool) {
	idx := strings.LastIndex(title, tailSeparator)
	if idx < 0 {
		return "", false
	}
	part := strings.TrimSpace(title[idx+len(tailSeparator):])
	n := utf8.RuneCountInString(part)
	if n < tailMinRunes || n > tailMaxRunes {
		return "", false
	}
	if !reNameShape.MatchString(part) {
		return "", false
	}
	return part, true
}

// Rules returns the ordered attribution rule table.
//
// The three "Winner - X" variants overlap on purpose. They differ only in how
// the name is terminated and must stay in this order; merging them changes
// which titles reach the generic pipe and dash rules.
func Rules() []Rule {
	return []Rule{
		PatternRule("by-name", reByName, mentionsThesis),
		PatternRule("pipe-place", rePipePlace),
		PatternRule("program-place", reProgramPlace),
		PatternRule("winner-name", reWinnerName, mentionsThesis),
		PatternRule("winner-dash", reWinnerDash),
		PatternRule("quoted-topic", reQuotedTopic),
		PatternRule("name-year", reNameYear, mentionsThesis, mentionsMinute),
		PatternRule("name-institution", reNameInstitution, mentionsThesis),
		PatternRule("winner-dash-pipe", reWinnerDashPipe),
		PatternRule("last-pipe-segment", reLastPipeSegment, mentionsThesis),
		PatternRule("place-pipe", rePlacePipe),
		PatternRule("winner-dash-end", reWinnerDashEnd),
		PatternRule("name-year-program", reNameYearProgram),
		{Name: "trailing-dash-segment", Find: trailingDashSegment, Reject: []Predicate{mentionsThesis}},
	}
}
