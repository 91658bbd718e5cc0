// Package extract turns raw user text into structured values: a name
// candidate from a greeting, or a validated domain label. Pure functions,
// no I/O.
package extract

import (
	"regexp"
	"strings"
)

// namePatterns is evaluated first-match-wins. Order matters: the specific
// self-introduction forms must run before the generic greeting-strip
// pattern, otherwise "hi, my name is Sam" would yield "my name is Sam".
// The list is data-driven so new phrasings slot in without control-flow
// changes.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:hi|hello|hey),?\s*my name is\s+(.+)`),
	regexp.MustCompile(`(?i)(?:hi|hello|hey),?\s*i'?m\s+(.+)`),
	regexp.MustCompile(`(?i)my name is\s+(.+)`),
	regexp.MustCompile(`(?i)i'?m\s+(.+)`),
	regexp.MustCompile(`(?i)call me\s+(.+)`),
	regexp.MustCompile(`(?i)(?:hi|hello|hey),?\s+(.+)`),
}

// Name extracts a name candidate from free text. The first matching
// pattern wins, capturing the remainder of the line greedily; if nothing
// matches the trimmed input is returned unchanged.
func Name(raw string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return strings.TrimSpace(raw)
}

var nameShape = regexp.MustCompile(`^[a-zA-Z\s]{2,50}$`)

// ValidName reports whether a candidate looks like a person's name:
// letters and spaces only, 2-50 characters, at most three tokens.
// Rejection is not an error, just a re-prompt signal for the caller.
func ValidName(candidate string) bool {
	if !nameShape.MatchString(candidate) {
		return false
	}
	return len(strings.Fields(candidate)) <= 3
}

// Catalog is the fixed set of assessable domains, in match-priority
// order. Matching is substring containment, so order is behavior.
var Catalog = []string{
	"backend",
	"frontend",
	"data analytics",
	"machine learning",
	"devops",
	"cybersecurity",
	"data engineering",
	"algorithms",
}

// aliases map alternate labels to their catalog entry.
var aliases = map[string]string{
	"dsa": "algorithms",
}

// Domain matches free text against a domain catalog, case-insensitive,
// by substring containment. Containment rather than equality is
// deliberate: it tolerates free-form answers like "I'm into machine
// learning stuff". Returns the first catalog label contained in the
// input, canonicalizing known aliases.
func Domain(raw string, catalog []string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, d := range catalog {
		if strings.Contains(lower, d) {
			return d, true
		}
	}
	for alias, canonical := range aliases {
		if strings.Contains(lower, alias) {
			return canonical, true
		}
	}
	return "", false
}
