// Package scoring implements the rule-based assessment used by the local
// stand-in analysis service.
package scoring

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/passintel/internal/model"
)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// breachedScoreCap bounds the score of a password found in a breach list.
const breachedScoreCap = 10

// Features are the character-class counts of a password.
type Features struct {
	Length    int
	Uppercase int
	Lowercase int
	Digits    int
	Special   int
	Entropy   float64
}

// Extract counts character classes and computes entropy.
func Extract(password string) Features {
	f := Features{Length: utf8.RuneCountInString(password)}
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			f.Uppercase++
		case unicode.IsLower(r):
			f.Lowercase++
		case unicode.IsDigit(r):
			f.Digits++
		case isSpecial(r):
			f.Special++
		}
	}
	f.Entropy = Entropy(password)
	return f
}

// Entropy estimates bits as length * log2(charset size), rounded to 4 decimals.
func Entropy(password string) float64 {
	if password == "" {
		return 0
	}
	length := utf8.RuneCountInString(password)
	bits := math.Log2(float64(charsetSize(password))) * float64(length)
	return round4(bits)
}

func charsetSize(password string) int {
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case isSpecial(r):
			special = true
		}
	}
	size := 0
	if lower {
		size += 26
	}
	if upper {
		size += 26
	}
	if digit {
		size += 10
	}
	if special {
		size += 32
	}
	if size < 2 {
		size = 2
	}
	return size
}

// Score applies the rule-based weights and returns the score with its band.
func Score(f Features) (model.Strength, int) {
	score := 0
	score += minInt(f.Length*4, 30)
	score += minInt(f.Uppercase*3, 10)
	score += minInt(f.Lowercase*2, 10)
	score += minInt(f.Digits*3, 15)
	score += minInt(f.Special*5, 20)
	score += minInt(int(f.Entropy/2), 15)
	score = minInt(score, 100)
	return model.StrengthForScore(score), score
}

// Reasons explains the assessment; each line starts with a marker
// (✓ good, ⚠ acceptable, ✗ missing, 🚨 breached).
func Reasons(password string, breached bool) []string {
	f := Extract(password)
	var reasons []string
	switch {
	case f.Length >= 12:
		reasons = append(reasons, "✓ Good length (12+ characters)")
	case f.Length >= 8:
		reasons = append(reasons, "⚠ Acceptable length, but 12+ is recommended")
	default:
		reasons = append(reasons, "✗ Too short — use at least 8 characters")
	}
	reasons = append(reasons, check(f.Uppercase > 0, "✓ Contains uppercase letters", "✗ No uppercase letters"))
	reasons = append(reasons, check(f.Lowercase > 0, "✓ Contains lowercase letters", "✗ No lowercase letters"))
	reasons = append(reasons, check(f.Digits > 0, "✓ Contains digits", "✗ No digits — add numbers for strength"))
	reasons = append(reasons, check(f.Special > 0, "✓ Contains special characters", "✗ No special characters (!@#$%^&*…)"))
	if breached {
		reasons = append(reasons, "🚨 Password found in breach database!")
	}
	return reasons
}

// Assessment is the scored outcome before a suggestion is attached.
type Assessment struct {
	Strength model.Strength
	Score    int
	Entropy  float64
	Breached bool
	Reasons  []string
}

// Assess scores password against the breach list.
func Assess(password string, breaches *BreachList) Assessment {
	f := Extract(password)
	breached := breaches.Contains(password)
	strength, score := Score(f)
	if breached {
		score = minInt(score, breachedScoreCap)
		strength = model.StrengthWeak
	}
	return Assessment{
		Strength: strength,
		Score:    score,
		Entropy:  f.Entropy,
		Breached: breached,
		Reasons:  Reasons(password, breached),
	}
}

func check(ok bool, pass, fail string) string {
	if ok {
		return pass
	}
	return fail
}

func isSpecial(r rune) bool {
	return strings.ContainsRune(asciiPunctuation, r)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
