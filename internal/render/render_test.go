package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/passintel/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"#", "Strength", "Score"}
	rows := [][]string{
		{"1", "Weak", "8"},
		{"10", "Strong", "100"},
	}
	lines := FormatTable(headers, rows, map[int]bool{0: true, 2: true})
	want := []string{
		" #  Strength  Score",
		" 1  Weak          8",
		"10  Strong      100",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestFormatTableUsesDisplayWidth(t *testing.T) {
	lines := FormatTable([]string{"Name", "N"}, [][]string{{"日本", "1"}, {"ab", "2"}}, nil)
	if lines[1] != "日本  1" || lines[2] != "ab    2" {
		t.Fatalf("unexpected wide-rune alignment: %q", lines)
	}
}

func TestHistoryRowsNumbering(t *testing.T) {
	created := time.Date(2025, 1, 2, 15, 4, 0, 0, time.Local)
	records := []model.HistoryRecord{
		{ID: 7, Strength: model.StrengthMedium, Score: 55, Entropy: 41.26, CreatedAt: model.Timestamp{Time: created}},
		{ID: 8, Strength: model.StrengthWeak, Score: 5, Breached: true},
	}
	rows := HistoryRows(records, 3, 10)
	if rows[0][0] != "21" || rows[1][0] != "22" {
		t.Fatalf("row numbers = %s, %s", rows[0][0], rows[1][0])
	}
	if rows[0][3] != "41.3" || rows[0][4] != "No" || rows[1][4] != "Yes" {
		t.Fatalf("unexpected cells: %v", rows)
	}
	if rows[0][5] != "Jan 2, 2025 15:04" || rows[1][5] != "-" {
		t.Fatalf("unexpected dates: %q %q", rows[0][5], rows[1][5])
	}
}

func TestWriteHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, nil, 1, 10, 0); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := EmptyHistory + "\nPage 1 of 1\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	records := []model.HistoryRecord{{Strength: model.StrengthStrong, Score: 90, Entropy: 80}}
	if err := WriteHistory(&buf, records, 2, 5, 4); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "#  Strength") || !strings.HasSuffix(out, "Page 2 of 4\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "\n6  Strong") {
		t.Fatalf("expected row number 6:\n%s", out)
	}
}

func TestWriteResult(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResult(&buf, model.AnalysisResult{
		Strength:          model.StrengthWeak,
		Score:             10,
		Entropy:           28.07,
		Breached:          true,
		Reasons:           []string{"✗ No digits — add numbers for strength", "🚨 Password found in breach database!"},
		SuggestedPassword: "Ab1!cdefghijklmn",
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Strength:  Weak", "Score:     10/100", "Entropy:   28.1 bits", "Found in breach database", "  🚨 Password", "Suggested password: Ab1!cdefghijklmn"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestReasonMarker(t *testing.T) {
	cases := map[string]Marker{
		"✓ Contains digits":   MarkerGood,
		"⚠ Acceptable length": MarkerWarn,
		"✗ No uppercase":      MarkerBad,
		"🚨 Breached":          MarkerBreach,
		"plain":               MarkerNone,
	}
	for reason, want := range cases {
		if got := ReasonMarker(reason); got != want {
			t.Fatalf("ReasonMarker(%q) = %d, want %d", reason, got, want)
		}
	}
}
