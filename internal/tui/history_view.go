package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/passintel/internal/model"
	"github.com/verte-zerg/passintel/internal/reqstate"
	"github.com/verte-zerg/passintel/internal/render"
)

var sortTitles = map[model.SortKey]string{
	model.SortByDate:     "Date",
	model.SortByStrength: "Strength",
	model.SortByScore:    "Score",
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Strength", Width: 9},
		{Title: "Score", Width: 6},
		{Title: "Entropy", Width: 8},
		{Title: "Breached", Width: 9},
		{Title: "Date", Width: 18},
	}
}

func newHistoryTable() table.Model {
	t := table.New(
		table.WithColumns(historyColumns()),
		table.WithHeight(10),
	)
	t.SetStyles(historyTableStyles())
	return t
}

func (m *Model) updateHistoryKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "1", "2", "3":
		idx := int(msg.String()[0] - '1')
		return m.withSpinner(m.history.SetSort(model.SortKeys[idx]))
	case "s":
		return m.withSpinner(m.history.SetSort(nextSortKey(m.history.SortBy())))
	case "left", "h":
		return m.withSpinner(m.history.PrevPage())
	case "right", "l":
		return m.withSpinner(m.history.NextPage())
	case "r":
		return m.withSpinner(m.history.Refresh())
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

func nextSortKey(current model.SortKey) model.SortKey {
	for i, key := range model.SortKeys {
		if key == current {
			return model.SortKeys[(i+1)%len(model.SortKeys)]
		}
	}
	return model.SortByDate
}

// syncTable copies the committed page into the table widget.
func (m *Model) syncTable() {
	records := m.history.Records()
	cells := render.HistoryRows(records, m.history.Page(), m.history.PageSize())
	rows := make([]table.Row, len(cells))
	for i, c := range cells {
		rows[i] = table.Row(c)
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m *Model) renderSortSelector() string {
	parts := make([]string, 0, len(model.SortKeys))
	for i, key := range model.SortKeys {
		label := fmt.Sprintf("%d %s", i+1, sortTitles[key])
		if key == m.history.SortBy() {
			parts = append(parts, activeSortStyle.Render(label))
		} else {
			parts = append(parts, mutedStyle.Render(label))
		}
	}
	return labelStyle.Render("Sort: ") + strings.Join(parts, "  ")
}

func (m *Model) renderPager() string {
	prev := mutedStyle.Render("← Prev")
	if m.history.HasPrev() {
		prev = valueStyle.Render("← Prev")
	}
	next := mutedStyle.Render("Next →")
	if m.history.HasNext() {
		next = valueStyle.Render("Next →")
	}
	return prev + "  " + render.PageLabel(m.history.Page(), m.history.TotalPages()) + "  " + next
}

func (m *Model) renderHistory() string {
	lines := []string{m.renderSortSelector(), ""}
	state := m.history.State()
	switch state.Phase() {
	case reqstate.Loading:
		lines = append(lines, m.spinner.View()+" Loading history...")
	case reqstate.Failed:
		msg, _ := state.Message()
		lines = append(lines, bannerStyle.Render("⚠ "+msg), mutedStyle.Render("Press r to retry"))
		return strings.Join(lines, "\n")
	case reqstate.Success:
		if len(m.history.Records()) == 0 {
			lines = append(lines, mutedStyle.Render(render.EmptyHistory))
		} else {
			lines = append(lines, m.table.View())
		}
	}
	lines = append(lines, m.renderPager())
	return strings.Join(lines, "\n")
}
