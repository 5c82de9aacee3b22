package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

// Bracketed segments typically hold company tags or posting flair
// ("【急招】", "(Remote)"), not job-relevant tokens.
var bracketRe = regexp.MustCompile(`\[[^\]]*\]|【[^】]*】|\([^)]*\)|（[^）]*）`)

// Seniority fillers carry no signal for identity comparison: the same role is
// routinely re-posted as "senior X" or "资深 X".
var seniorityFillers = []string{"senior", "junior", "高级", "资深", "初级"}

// Normalize canonicalizes text for comparison and hashing: lower-cases,
// strips bracketed segments, whitespace, punctuation, and seniority filler
// words. Pure and idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = bracketRe.ReplaceAllString(s, "")
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()

	// Removing a filler can splice surrounding runes into a new occurrence
	// of any filler, including one already processed ("sen初级ior" becomes
	// "senior" after 初级 is removed), so repeat the whole pass until no
	// filler matches.
	for {
		removed := false
		for _, w := range seniorityFillers {
			if strings.Contains(s, w) {
				s = strings.ReplaceAll(s, w, "")
				removed = true
			}
		}
		if !removed {
			return s
		}
	}
}
