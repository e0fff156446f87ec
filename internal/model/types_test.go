package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseSortKey(t *testing.T) {
	for _, in := range []string{"date", "Strength", " score "} {
		if _, err := ParseSortKey(in); err != nil {
			t.Fatalf("expected %q to parse: %v", in, err)
		}
	}
	if _, err := ParseSortKey("entropy"); err == nil {
		t.Fatalf("expected entropy to be rejected")
	}
}

func TestStrengthForScoreBands(t *testing.T) {
	cases := map[int]Strength{
		0:   StrengthWeak,
		39:  StrengthWeak,
		40:  StrengthMedium,
		69:  StrengthMedium,
		70:  StrengthStrong,
		100: StrengthStrong,
	}
	for score, want := range cases {
		if got := StrengthForScore(score); got != want {
			t.Fatalf("StrengthForScore(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestTimestampAcceptsNaiveAndZonedForms(t *testing.T) {
	want := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	for _, raw := range []string{
		`"2025-03-14T09:26:53Z"`,
		`"2025-03-14T09:26:53"`,
		`"2025-03-14 09:26:53"`,
		`"2025-03-14T11:26:53+02:00"`,
	} {
		var ts Timestamp
		if err := json.Unmarshal([]byte(raw), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if !ts.Equal(want) {
			t.Fatalf("unmarshal %s = %v, want %v", raw, ts.Time, want)
		}
	}
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatalf("expected invalid timestamp to fail")
	}
}
