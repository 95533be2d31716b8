// Package strength implements rule-based password scoring used to gate
// password changes. Scoring is purely structural; no dictionary or breach
// list is consulted.
package strength

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinScore is the lowest score considered acceptable for a new password.
const MinScore = 4

// MaxScore is the number of criteria, one point each.
const MaxScore = 6

// Assessment is the result of evaluating a password.
type Assessment struct {
	Score    int
	Valid    bool
	Feedback []string
}

// criteria are checked in this fixed order; feedback preserves it, so output
// is deterministic and testable.
var criteria = []struct {
	feedback string
	met      func(p string) bool
}{
	{"use at least 8 characters", func(p string) bool { return utf8.RuneCountInString(p) >= 8 }},
	{"use at least 12 characters", func(p string) bool { return utf8.RuneCountInString(p) >= 12 }},
	{"add a lowercase letter", func(p string) bool { return strings.ContainsFunc(p, unicode.IsLower) }},
	{"add an uppercase letter", func(p string) bool { return strings.ContainsFunc(p, unicode.IsUpper) }},
	{"add a digit", func(p string) bool { return strings.ContainsFunc(p, unicode.IsDigit) }},
	{"add a symbol", func(p string) bool {
		return strings.ContainsFunc(p, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
	}},
}

// Evaluate scores password against the fixed criteria. Each satisfied
// criterion contributes one point; feedback lists only the unmet ones.
func Evaluate(password string) Assessment {
	a := Assessment{Feedback: []string{}}
	for _, c := range criteria {
		if c.met(password) {
			a.Score++
		} else {
			a.Feedback = append(a.Feedback, c.feedback)
		}
	}
	a.Valid = a.Score >= MinScore
	return a
}
