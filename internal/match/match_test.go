package match

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "PARIS", "paris"},
		{"trim", "  Cairo  ", "cairo"},
		{"punctuation", "  PARIS!!", "paris"},
		{"collapse spaces", "Mount   Everest", "mount everest"},
		{"mixed", " Rio  de   Janeiro!! ", "rio de janeiro"},
		{"digits kept", "K2", "k2"},
		{"diacritics folded", "Zürich", "zurich"},
		{"diacritics folded multi", "São Paulo", "sao paulo"},
		{"non-latin stripped", "東京 Tokyo", "tokyo"},
		{"empty", "", ""},
		{"only punctuation", "!?!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"missisipi", "mississippi", 2},
		{"nile", "nile", 0},
		{"nil", "nile", 1},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsCorrectExact(t *testing.T) {
	m := New(DefaultConfig())

	if !m.IsCorrect("Paris", []string{"Paris"}) {
		t.Error("exact match rejected")
	}
	if !m.IsCorrect("  PARIS!!", []string{"Paris"}) {
		t.Error("match should ignore case and punctuation")
	}
	if !m.IsCorrect("everest", []string{"Mount Everest", "Everest"}) {
		t.Error("match should try every accepted answer")
	}
}

func TestIsCorrectEmptyInput(t *testing.T) {
	m := New(DefaultConfig())

	for _, in := range []string{"", "   ", "!!!", "\t\n"} {
		if m.IsCorrect(in, []string{"Paris"}) {
			t.Errorf("IsCorrect(%q) = true, want false", in)
		}
	}
}

func TestIsCorrectNearMatch(t *testing.T) {
	m := New(DefaultConfig())

	// Two edits on an 11-letter answer.
	if !m.IsCorrect("Missisipi", []string{"Mississippi"}) {
		t.Error("expected near match for Missisipi/Mississippi")
	}
	// Answer length 4 is not above the near-match threshold: exact only.
	if m.IsCorrect("Nil", []string{"Nile"}) {
		t.Error("short answers must not fuzzy-match")
	}
	if !m.IsCorrect("Nile", []string{"Nile"}) {
		t.Error("short answers must still match exactly")
	}
	// Three edits is past the distance bound.
	if m.IsCorrect("Misisipi", []string{"Mississippi"}) {
		t.Error("distance 3 should not match")
	}
}

func TestIsCorrectPrefixMatch(t *testing.T) {
	m := New(DefaultConfig())

	// 8-rune prefix of an 11-rune answer.
	if !m.IsCorrect("kilimanj", []string{"Kilimanjaro"}) {
		t.Error("expected prefix match for kilimanj/Kilimanjaro")
	}
	// Prefixes shorter than the input threshold never match.
	if m.IsCorrect("kili", []string{"Kilimanjaro"}) {
		t.Error("4-rune prefix should not match")
	}
	// Prefix rule only applies to long answers.
	if m.IsCorrect("mount", []string{"Mountain"}) {
		// "mountain" is 8 runes, not above the 8-rune answer threshold,
		// and edit distance is 3.
		t.Error("answer of length 8 should not prefix-match")
	}
	if !m.IsCorrect("himal", []string{"Himalayan Mountains"}) {
		t.Error("5-rune prefix of a long answer should match")
	}
}

func TestIsCorrectMalformedAnswers(t *testing.T) {
	m := New(DefaultConfig())

	if m.IsCorrect("anything", nil) {
		t.Error("nil accepted list must never match")
	}
	if m.IsCorrect("anything", []string{}) {
		t.Error("empty accepted list must never match")
	}
	// Answers that normalize to nothing are skipped, not matched.
	if m.IsCorrect("x", []string{"", "!!!"}) {
		t.Error("unmatchable accepted answers must not match")
	}
}

func TestIsCorrectDiacritics(t *testing.T) {
	m := New(DefaultConfig())

	if !m.IsCorrect("Zurich", []string{"Zürich"}) {
		t.Error("accented canonical name should accept ASCII input")
	}
	if !m.IsCorrect("sao paulo", []string{"São Paulo"}) {
		t.Error("folded answer should accept plain input")
	}
}

func TestCustomThresholds(t *testing.T) {
	strict := New(Config{
		NearMatchMinAnswerLen: 4,
		NearMatchMaxDistance:  0,
		PrefixMinAnswerLen:    100,
		PrefixMinInputLen:     100,
	})
	if strict.IsCorrect("Missisipi", []string{"Mississippi"}) {
		t.Error("zero distance budget should reject typos")
	}
	if !strict.IsCorrect("Mississippi", []string{"Mississippi"}) {
		t.Error("exact match should survive strict thresholds")
	}
}
