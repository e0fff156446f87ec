package scoring

import "github.com/verte-zerg/passintel/internal/wordlist"

// commonBreached is the built-in list of passwords seen in public dumps.
var commonBreached = []string{
	"123456", "password", "123456789", "12345678", "12345", "1234567",
	"1234567890", "qwerty", "abc123", "111111", "password1", "iloveyou",
	"admin", "letmein", "monkey", "1234", "dragon", "master", "sunshine",
	"princess", "welcome", "shadow", "superman", "michael", "football",
	"baseball", "batman", "trustno1", "pass", "hello", "charlie", "donald",
	"password123", "qwerty123", "admin123", "root", "toor", "test", "guest",
	"login", "changeme", "default", "qazwsx", "123qwe", "pass123",
}

// BreachList answers case-insensitive membership queries.
type BreachList struct {
	entries map[string]struct{}
}

// NewBreachList returns the built-in list extended with extra entries.
func NewBreachList(extra map[string]struct{}) *BreachList {
	entries := make(map[string]struct{}, len(commonBreached)+len(extra))
	for _, pw := range commonBreached {
		entries[wordlist.Normalize(pw)] = struct{}{}
	}
	for pw := range extra {
		entries[wordlist.Normalize(pw)] = struct{}{}
	}
	return &BreachList{entries: entries}
}

// LoadBreachList extends the built-in list with the file at path.
func LoadBreachList(path string) (*BreachList, error) {
	if path == "" {
		return NewBreachList(nil), nil
	}
	extra, err := wordlist.LoadSet(path)
	if err != nil {
		return nil, err
	}
	return NewBreachList(extra), nil
}

// Contains reports whether password is a known breached password.
func (b *BreachList) Contains(password string) bool {
	if b == nil {
		return false
	}
	_, ok := b.entries[wordlist.Normalize(password)]
	return ok
}

// Len returns the number of entries.
func (b *BreachList) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
