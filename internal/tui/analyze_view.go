package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/passintel/internal/model"
	"github.com/verte-zerg/passintel/internal/reqstate"
	"github.com/verte-zerg/passintel/internal/render"
)

const (
	goodLength    = 12
	minimumLength = 8
)

func (m *Model) updateAnalyzeKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.notice = ""
		return m.withSpinner(m.analyzer.Submit(m.input.Value()))
	case "ctrl+t":
		m.toggleReveal()
		return nil
	case "ctrl+y":
		m.copySuggestion()
		return nil
	case "esc":
		m.analyzer.Reset()
		m.input.Reset()
		m.notice = ""
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) toggleReveal() {
	m.revealed = !m.revealed
	if m.revealed {
		m.input.EchoMode = textinput.EchoNormal
	} else {
		m.input.EchoMode = textinput.EchoPassword
	}
}

func (m *Model) copySuggestion() {
	result, ok := m.analyzer.State().Value()
	if !ok || result.SuggestedPassword == "" {
		return
	}
	if err := m.copy(result.SuggestedPassword); err != nil {
		m.logger.Warn("clipboard write failed", slog.String("error", err.Error()))
		m.notice = "Could not copy to clipboard"
		m.noticeOK = false
		return
	}
	m.notice = "Copied suggested password to clipboard"
	m.noticeOK = true
}

// lengthHint grades the typed length; empty input has no hint.
func lengthHint(n int) string {
	switch {
	case n == 0:
		return ""
	case n >= goodLength:
		return "✓ Good length"
	case n >= minimumLength:
		return "⚠ Minimum length"
	default:
		return "✗ Too short"
	}
}

func (m *Model) renderAnalyze() string {
	lines := []string{"", m.input.View()}

	count := utf8.RuneCountInString(m.input.Value())
	if hint := lengthHint(count); hint != "" {
		lines = append(lines, reasonStyle(hint).Render(fmt.Sprintf("%d characters  %s", count, hint)))
	} else {
		lines = append(lines, mutedStyle.Render("Type a password and press enter"))
	}
	lines = append(lines, "")

	state := m.analyzer.State()
	switch state.Phase() {
	case reqstate.Loading:
		lines = append(lines, m.spinner.View()+" Analyzing...")
	case reqstate.Failed:
		msg, _ := state.Message()
		lines = append(lines, bannerStyle.Render("⚠ "+msg))
	case reqstate.Success:
		result, _ := state.Value()
		lines = append(lines, m.renderResult(result))
	}

	if m.notice != "" {
		style := errorStyle
		if m.noticeOK {
			style = noticeStyle
		}
		lines = append(lines, style.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderResult(r model.AnalysisResult) string {
	badges := []string{badgeStyle.Background(strengthColor(r.Strength)).Render(strings.ToUpper(string(r.Strength)))}
	if r.Breached {
		badges = append(badges, " ", badgeStyle.Background(colorWeak).Render("BREACHED"))
	}

	m.meter.FullColor = string(scoreColor(r.Score))
	score := fmt.Sprintf("%s %s", m.meter.ViewAs(float64(clampScore(r.Score))/100), valueStyle.Render(fmt.Sprintf("%d/100", r.Score)))

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, badges...),
		"",
		labelStyle.Render("Score    ") + score,
		labelStyle.Render("Entropy  ") + valueStyle.Render(fmt.Sprintf("%.1f bits", r.Entropy)),
		labelStyle.Render("Breach   ") + breachLine(r.Breached),
	}
	if len(r.Reasons) > 0 {
		lines = append(lines, "", labelStyle.Render("Analysis"))
		for _, reason := range r.Reasons {
			lines = append(lines, "  "+reasonStyle(reason).Render(reason))
		}
	}
	if r.SuggestedPassword != "" {
		lines = append(lines, "",
			labelStyle.Render("Suggested password"),
			"  "+suggestionStyle.Render(r.SuggestedPassword)+mutedStyle.Render("  (ctrl+y to copy)"),
		)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func breachLine(breached bool) string {
	if breached {
		return errorStyle.Render(render.BreachStatus(true))
	}
	return noticeStyle.Render(render.BreachStatus(false))
}

func clampScore(score int) int {
	return maxInt(0, minInt(100, score))
}
