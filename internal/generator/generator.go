// Package generator builds suggested passwords.
package generator

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"unicode"
)

const (
	// DefaultLength is the length of a suggested password.
	DefaultLength = 16

	lowerSet   = "abcdefghijklmnopqrstuvwxyz"
	upperSet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitSet   = "0123456789"
	specialSet = "!@#$%^&*()-_=+"
	alphabet   = lowerSet + upperSet + digitSet + specialSet

	maxAttempts = 64
)

// Generator produces random passwords that contain every character class.
type Generator struct {
	src io.Reader
}

// New returns a Generator backed by crypto/rand.
func New() *Generator {
	return &Generator{src: rand.Reader}
}

// NewWithSource returns a Generator reading randomness from src.
func NewWithSource(src io.Reader) *Generator {
	return &Generator{src: src}
}

// Generate draws length characters uniformly until the result contains an
// uppercase letter, a lowercase letter, a digit and a special character.
func (g *Generator) Generate(length int) (string, error) {
	if length < 4 {
		return "", fmt.Errorf("password length must be at least 4, got %d", length)
	}
	limit := big.NewInt(int64(len(alphabet)))
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var b strings.Builder
		b.Grow(length)
		for i := 0; i < length; i++ {
			n, err := rand.Int(g.src, limit)
			if err != nil {
				return "", fmt.Errorf("failed to read randomness: %w", err)
			}
			b.WriteByte(alphabet[n.Int64()])
		}
		pw := b.String()
		if hasAllClasses(pw) {
			return pw, nil
		}
	}
	return "", fmt.Errorf("failed to generate a password with every character class")
}

func hasAllClasses(pw string) bool {
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialSet, r):
			special = true
		}
	}
	return upper && lower && digit && special
}
