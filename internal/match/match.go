// Package match decides whether a typed answer identifies a quiz item.
//
// Matching runs over normalized strings and accepts, in order: an exact
// match, a near match (bounded edit distance, only for answers long enough
// that a typo is distinguishable from a different word), and a prefix match
// (truncated typing of long names, guarded against very short prefixes).
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Config holds the matching thresholds. The defaults are empirically chosen;
// they are kept configurable pending product input.
type Config struct {
	// NearMatchMinAnswerLen is the normalized answer length above which the
	// edit-distance rule applies. Short answers stay exact-match only so
	// "Nil" can never match an unrelated four-letter name.
	NearMatchMinAnswerLen int
	// NearMatchMaxDistance is the largest edit distance still accepted.
	NearMatchMaxDistance int
	// PrefixMinAnswerLen is the normalized answer length above which a
	// prefix of the answer is accepted.
	PrefixMinAnswerLen int
	// PrefixMinInputLen is the shortest input accepted as a prefix.
	PrefixMinInputLen int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		NearMatchMinAnswerLen: 4,
		NearMatchMaxDistance:  2,
		PrefixMinAnswerLen:    8,
		PrefixMinInputLen:     5,
	}
}

// Matcher checks user input against accepted answers.
type Matcher struct {
	cfg Config
}

// New creates a Matcher with the given thresholds.
func New(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// stripMarks removes combining marks after NFD decomposition, so accented
// names stay answerable from an ASCII keyboard ("Zürich" -> "Zurich").
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowers, folds diacritics, strips everything that is not an
// ASCII letter, digit, or space, and collapses whitespace runs.
func Normalize(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// IsCorrect reports whether input matches any of the accepted answers.
// Empty or unmatchable input is never correct; a nil or empty accepted
// list means the item cannot be answered correctly.
func (m *Matcher) IsCorrect(input string, accepted []string) bool {
	normalized := Normalize(input)
	if normalized == "" {
		return false
	}

	for _, answer := range accepted {
		normalizedAnswer := Normalize(answer)
		if normalizedAnswer == "" {
			continue
		}
		if normalized == normalizedAnswer {
			return true
		}
		answerLen := len([]rune(normalizedAnswer))
		if answerLen > m.cfg.NearMatchMinAnswerLen &&
			Levenshtein(normalized, normalizedAnswer) <= m.cfg.NearMatchMaxDistance {
			return true
		}
		if answerLen > m.cfg.PrefixMinAnswerLen &&
			len([]rune(normalized)) >= m.cfg.PrefixMinInputLen &&
			strings.HasPrefix(normalizedAnswer, normalized) {
			return true
		}
	}
	return false
}

// Levenshtein returns the edit distance between a and b: the minimum number
// of single-rune insertions, deletions, and substitutions transforming one
// into the other.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
			} else {
				matrix[i][j] = min(
					matrix[i-1][j]+1,   // deletion
					matrix[i][j-1]+1,   // insertion
					matrix[i-1][j-1]+1, // substitution
				)
			}
		}
	}

	return matrix[len(ra)][len(rb)]
}
