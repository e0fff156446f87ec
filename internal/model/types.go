// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Strength is the coarse server-side classification of a password.
type Strength string

// Strength levels reported by the analysis service.
const (
	StrengthWeak   Strength = "Weak"
	StrengthMedium Strength = "Medium"
	StrengthStrong Strength = "Strong"
)

// Score band boundaries used for display coloring.
const (
	MediumScoreMin = 40
	StrongScoreMin = 70
)

// StrengthForScore maps a score to its display band.
func StrengthForScore(score int) Strength {
	switch {
	case score >= StrongScoreMin:
		return StrengthStrong
	case score >= MediumScoreMin:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}

// SortKey selects the server-side ordering of history records.
type SortKey string

// Supported history orderings.
const (
	SortByDate     SortKey = "date"
	SortByStrength SortKey = "strength"
	SortByScore    SortKey = "score"
)

// SortKeys lists the orderings in display order.
var SortKeys = []SortKey{SortByDate, SortByStrength, SortByScore}

// ParseSortKey validates a user-supplied sort key.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range SortKeys {
		if k == key {
			return key, nil
		}
	}
	return "", fmt.Errorf("invalid sort key %q (use date, strength or score)", s)
}

// AnalysisResult is the assessment returned by POST /analyze.
type AnalysisResult struct {
	Strength          Strength `json:"strength"`
	Score             int      `json:"score"`
	Entropy           float64  `json:"entropy"`
	Breached          bool     `json:"breached"`
	Reasons           []string `json:"reasons"`
	SuggestedPassword string   `json:"suggested_password"`
}

// HistoryRecord is one previously recorded analysis.
type HistoryRecord struct {
	ID        int64     `json:"id"`
	Strength  Strength  `json:"strength"`
	Score     int       `json:"score"`
	Entropy   float64   `json:"entropy"`
	Breached  bool      `json:"breached"`
	CreatedAt Timestamp `json:"created_at"`
}

// HistoryQuery selects one page of history.
type HistoryQuery struct {
	Page     int
	PageSize int
	SortBy   SortKey
}

// HistoryPage is the body of GET /history.
type HistoryPage struct {
	Records  []HistoryRecord `json:"records"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// Health is the body of GET /.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Config defines client settings resolved from flags, env and the config file.
type Config struct {
	APIURL   string
	Timeout  time.Duration
	PageSize int
	SortBy   SortKey
	LogLevel string
	LogFile  string
}

// timestampLayouts are tried in order; naive timestamps are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp is a server-assigned time that tolerates timezone-less encodings.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses the layouts produced by the analysis service.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
