package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/passintel/internal/model"
	"github.com/verte-zerg/passintel/internal/render"
)

const (
	colorText   = lipgloss.Color("#F0F0F0")
	colorMuted  = lipgloss.Color("#8C8C8C")
	colorBorder = lipgloss.Color("#4A4A4A")
	colorAccent = lipgloss.Color("#C89A3A")
	colorWeak   = lipgloss.Color("#FF4D4F")
	colorMedium = lipgloss.Color("#FAAD14")
	colorStrong = lipgloss.Color("#52C41A")
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(colorAccent)
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(colorBorder)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle  = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(colorWeak)
	noticeStyle = lipgloss.NewStyle().Foreground(colorStrong)
	bannerStyle = lipgloss.NewStyle().
			Foreground(colorWeak).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(colorWeak)
	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(colorBorder)
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#141414")).
			Bold(true).
			Padding(0, 1)
	suggestionStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	activeSortStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Underline(true)
)

// strengthColor returns the band color for a strength label.
func strengthColor(s model.Strength) lipgloss.Color {
	switch s {
	case model.StrengthStrong:
		return colorStrong
	case model.StrengthMedium:
		return colorMedium
	default:
		return colorWeak
	}
}

// scoreColor colors the meter by score band.
func scoreColor(score int) lipgloss.Color {
	return strengthColor(model.StrengthForScore(score))
}

func reasonStyle(reason string) lipgloss.Style {
	switch render.ReasonMarker(reason) {
	case render.MarkerGood:
		return lipgloss.NewStyle().Foreground(colorStrong)
	case render.MarkerWarn:
		return lipgloss.NewStyle().Foreground(colorMedium)
	case render.MarkerBad, render.MarkerBreach:
		return lipgloss.NewStyle().Foreground(colorWeak)
	default:
		return lipgloss.NewStyle().Foreground(colorText)
	}
}

func historyTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorBorder).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(colorText).
		Bold(true)
	return styles
}
