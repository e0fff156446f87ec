package render

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/verte-zerg/passintel/internal/model"
)

const (
	// DateLayout is how record timestamps are shown, in local time.
	DateLayout = "Jan 2, 2006 15:04"
	// EmptyHistory is shown when the service has no records.
	EmptyHistory = "No analyses yet. Run your first analysis!"
)

// HistoryHeaders are the history table columns.
var HistoryHeaders = []string{"#", "Strength", "Score", "Entropy", "Breached", "Date"}

var historyRightAlign = map[int]bool{0: true, 2: true, 3: true}

// FormatDate renders t in local time, or "-" when unset.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(DateLayout)
}

// FormatEntropy renders entropy with one decimal.
func FormatEntropy(bits float64) string {
	return fmt.Sprintf("%.1f", bits)
}

// BreachedLabel renders the breach flag.
func BreachedLabel(breached bool) string {
	if breached {
		return "Yes"
	}
	return "No"
}

// PageLabel renders "Page X of Y"; an empty result still counts as one page.
func PageLabel(page, totalPages int) string {
	if totalPages < 1 {
		totalPages = 1
	}
	return fmt.Sprintf("Page %d of %d", page, totalPages)
}

// HistoryRows converts records into table cells numbered from the page offset.
func HistoryRows(records []model.HistoryRecord, page, pageSize int) [][]string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = []string{
			strconv.Itoa((page-1)*pageSize + i + 1),
			string(rec.Strength),
			strconv.Itoa(rec.Score),
			FormatEntropy(rec.Entropy),
			BreachedLabel(rec.Breached),
			FormatDate(rec.CreatedAt.Time),
		}
	}
	return rows
}

// WriteHistory prints one page of history followed by the page label.
func WriteHistory(w io.Writer, records []model.HistoryRecord, page, pageSize, totalPages int) error {
	if len(records) == 0 {
		if _, err := fmt.Fprintln(w, EmptyHistory); err != nil {
			return err
		}
	} else {
		for _, line := range FormatTable(HistoryHeaders, HistoryRows(records, page, pageSize), historyRightAlign) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, PageLabel(page, totalPages))
	return err
}
