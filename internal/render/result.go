package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/passintel/internal/model"
)

// Marker classifies a reason line by its leading symbol.
type Marker int

// Reason markers.
const (
	MarkerNone Marker = iota
	MarkerGood
	MarkerWarn
	MarkerBad
	MarkerBreach
)

// ReasonMarker returns the marker a reason line starts with.
func ReasonMarker(reason string) Marker {
	switch {
	case strings.HasPrefix(reason, "✓"):
		return MarkerGood
	case strings.HasPrefix(reason, "⚠"):
		return MarkerWarn
	case strings.HasPrefix(reason, "✗"):
		return MarkerBad
	case strings.HasPrefix(reason, "🚨"):
		return MarkerBreach
	default:
		return MarkerNone
	}
}

// BreachStatus describes the breach flag for the result card.
func BreachStatus(breached bool) string {
	if breached {
		return "Found in breach database"
	}
	return "Not found in known breaches"
}

// WriteResult prints a plain-text result card.
func WriteResult(w io.Writer, r model.AnalysisResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Strength:  %s\n", r.Strength)
	fmt.Fprintf(&b, "Score:     %d/100\n", r.Score)
	fmt.Fprintf(&b, "Entropy:   %s bits\n", FormatEntropy(r.Entropy))
	fmt.Fprintf(&b, "Breached:  %s\n", BreachStatus(r.Breached))
	if len(r.Reasons) > 0 {
		b.WriteString("\nAnalysis:\n")
		for _, reason := range r.Reasons {
			fmt.Fprintf(&b, "  %s\n", reason)
		}
	}
	if r.SuggestedPassword != "" {
		fmt.Fprintf(&b, "\nSuggested password: %s\n", r.SuggestedPassword)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
