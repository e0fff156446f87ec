// Package tui provides the Bubble Tea interface with Analyze and History tabs.
package tui

import (
	"io"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/passintel/internal/analyze"
	"github.com/verte-zerg/passintel/internal/history"
	"github.com/verte-zerg/passintel/internal/model"
)

const (
	tabAnalyze = iota
	tabHistory
)

const meterWidth = 30

// Model is the root Bubble Tea model. All controller calls happen inside
// Update, so controller state is only touched from the event loop.
type Model struct {
	analyzer *analyze.Controller
	history  *history.Controller
	logger   *slog.Logger
	copy     func(string) error

	tabs      []string
	activeTab int

	initialSort    model.SortKey
	historyMounted bool

	width  int
	height int

	input    textinput.Model
	revealed bool
	notice   string
	noticeOK bool

	spinner spinner.Model
	meter   progress.Model
	table   table.Model
}

// Option customizes a Model.
type Option func(*Model)

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.copy = write
	}
}

// WithLogger sets the logger; the default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithHistorySort sets the ordering used for the first history fetch.
func WithHistorySort(key model.SortKey) Option {
	return func(m *Model) {
		m.initialSort = key
	}
}

// NewModel constructs the root model around the two controllers.
func NewModel(analyzer *analyze.Controller, hist *history.Controller, opts ...Option) *Model {
	m := &Model{
		analyzer: analyzer,
		history:  hist,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		copy:     clipboard.WriteAll,
		tabs:     []string{"Analyze", "History"},

		initialSort: model.SortByDate,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initInput()
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(colorAccent)))
	m.meter = progress.New(progress.WithSolidFill(string(colorWeak)), progress.WithoutPercentage(), progress.WithWidth(meterWidth))
	m.table = newHistoryTable()
	return m
}

func (m *Model) initInput() {
	input := textinput.New()
	input.Prompt = "Password: "
	input.Placeholder = "Enter a password to analyze"
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 256
	input.Cursor.SetMode(cursor.CursorStatic)
	input.Focus()
	m.input = input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case analyze.ResultMsg:
		if m.analyzer.Handle(msg) {
			m.logger.Debug("analysis settled", slog.String("phase", m.analyzer.State().Phase().String()))
		}
		return m, nil
	case history.FetchedMsg:
		if m.history.Handle(msg) {
			m.logger.Debug("history settled",
				slog.String("phase", m.history.State().Phase().String()),
				slog.Int("page", m.history.Page()),
				slog.String("sort", string(m.history.SortBy())),
			)
			m.syncTable()
		}
		return m, nil
	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			return m, m.switchTab(1)
		case "shift+tab":
			return m, m.switchTab(-1)
		}
		if m.activeTab == tabHistory {
			return m, m.updateHistoryKeys(msg)
		}
		return m, m.updateAnalyzeKeys(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(padLines(m.renderTabs(), m.width), m.width, headerHeight)
	var body string
	if m.activeTab == tabHistory {
		body = m.renderHistory()
	} else {
		body = m.renderAnalyze()
	}
	body = fitLines(body, m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = maxInt(1, lipgloss.Height(activeNavStyle.Render("X")))
	footerHeight = 1
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	promptWidth := lipgloss.Width(m.input.Prompt)
	m.input.Width = maxInt(10, minInt(64, m.width-promptWidth-2))
	m.meter.Width = maxInt(10, minInt(meterWidth, m.width-12))
	_, bodyHeight, _ := m.layoutHeights()
	// Sort selector, blank line, pager and help lines surround the table.
	m.table.SetHeight(maxInt(3, bodyHeight-4))
	m.table.SetWidth(m.width)
}

// switchTab moves between tabs. Leaving Analyze discards its result;
// entering History loads the first page once and reloads the current page after.
func (m *Model) switchTab(delta int) tea.Cmd {
	next := (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if next == m.activeTab {
		return nil
	}
	prev := m.activeTab
	m.activeTab = next
	m.notice = ""
	if prev == tabAnalyze {
		m.analyzer.Reset()
		m.input.Blur()
		m.table.Focus()
	}
	if next == tabAnalyze {
		m.table.Blur()
		m.input.Focus()
		return nil
	}
	if !m.historyMounted {
		m.historyMounted = true
		return m.withSpinner(m.history.InitAt(1, m.initialSort))
	}
	return m.withSpinner(m.history.Refresh())
}

// withSpinner starts the spinner alongside a request command.
func (m *Model) withSpinner(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) loading() bool {
	if m.activeTab == tabHistory {
		return m.history.State().IsLoading()
	}
	return m.analyzer.State().IsLoading()
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFooter() string {
	help := "enter: analyze  ctrl+t: show/hide  ctrl+y: copy suggestion  esc: clear  tab: history  ctrl+c: quit"
	if m.activeTab == tabHistory {
		help = "1/2/3 or s: sort  left/right: page  up/down: scroll  r: retry  tab: analyze  q: quit"
	}
	return helpStyle.Render(truncateLine(help, m.width))
}
