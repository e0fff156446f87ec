// Package history drives the paginated, sortable history view.
package history

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/passintel/internal/api"
	"github.com/verte-zerg/passintel/internal/model"
	"github.com/verte-zerg/passintel/internal/reqstate"
)

const (
	// DefaultPageSize is the number of records per page.
	DefaultPageSize = 10
	// MaxPageSize is the largest page the service accepts.
	MaxPageSize = 100
)

// FailureMessage is shown when the service gave no usable detail.
const FailureMessage = "Could not load history. Is the backend running?"

// Fetcher is the transport dependency of the Controller.
type Fetcher interface {
	History(ctx context.Context, q model.HistoryQuery) (model.HistoryPage, error)
}

// FetchedMsg carries one fetch outcome back to the event loop.
type FetchedMsg struct {
	seq  uint64
	page model.HistoryPage
	err  error
}

// Controller owns the history query state. Like the analysis controller it is
// driven from a single event loop; fetches run inside the returned tea.Cmd and
// only the most recently issued one may commit.
type Controller struct {
	client   Fetcher
	ctx      context.Context
	pageSize int

	page   int
	sortBy model.SortKey

	state reqstate.State[[]model.HistoryRecord]
	total int
	seq   uint64
}

// New returns a Controller in the Loading state; call Init to issue the first fetch.
func New(client Fetcher, pageSize int) *Controller {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return &Controller{
		client:   client,
		ctx:      context.Background(),
		pageSize: pageSize,
		page:     1,
		sortBy:   model.SortByDate,
		state:    reqstate.NewLoading[[]model.HistoryRecord](),
	}
}

// Init issues the initial fetch for the current page and sort.
func (c *Controller) Init() tea.Cmd {
	return c.fetch()
}

// InitAt issues the initial fetch from an explicit position, e.g. one given on
// the command line. The page is not clamped because no total is known yet.
func (c *Controller) InitAt(page int, key model.SortKey) tea.Cmd {
	if page < 1 {
		page = 1
	}
	c.page = page
	c.sortBy = key
	return c.fetch()
}

// Page returns the 1-based current page.
func (c *Controller) Page() int {
	return c.page
}

// PageSize returns the fixed page size.
func (c *Controller) PageSize() int {
	return c.pageSize
}

// SortBy returns the current ordering.
func (c *Controller) SortBy() model.SortKey {
	return c.sortBy
}

// State returns the request state for rendering.
func (c *Controller) State() reqstate.State[[]model.HistoryRecord] {
	return c.state
}

// Records returns the committed page, empty unless the last fetch succeeded.
func (c *Controller) Records() []model.HistoryRecord {
	records, _ := c.state.Value()
	return records
}

// Total returns the server-reported record count from the last committed fetch.
func (c *Controller) Total() int {
	return c.total
}

// TotalPages returns ceil(total / pageSize) for the committed total.
func (c *Controller) TotalPages() int {
	return TotalPages(c.total, c.pageSize)
}

// HasPrev reports whether a previous page exists.
func (c *Controller) HasPrev() bool {
	return c.page > 1
}

// HasNext reports whether a following page exists.
func (c *Controller) HasNext() bool {
	return c.page < c.TotalPages()
}

// SetSort changes the ordering and returns to the first page.
func (c *Controller) SetSort(key model.SortKey) tea.Cmd {
	return c.apply(1, key)
}

// SetPage moves to page n, clamped to [1, max(1, TotalPages())].
func (c *Controller) SetPage(n int) tea.Cmd {
	return c.apply(c.clamp(n), c.sortBy)
}

// NextPage advances one page when possible.
func (c *Controller) NextPage() tea.Cmd {
	return c.SetPage(c.page + 1)
}

// PrevPage goes back one page when possible.
func (c *Controller) PrevPage() tea.Cmd {
	return c.SetPage(c.page - 1)
}

// Refresh re-fetches the current page; it is the user's retry after a failure.
func (c *Controller) Refresh() tea.Cmd {
	return c.fetch()
}

// Handle commits a fetch outcome. Outcomes from superseded fetches are dropped
// and reported as false.
func (c *Controller) Handle(msg FetchedMsg) bool {
	if msg.seq != c.seq {
		return false
	}
	if msg.err != nil {
		c.state = reqstate.NewFailed[[]model.HistoryRecord](api.Message(msg.err, FailureMessage))
		c.total = 0
		return true
	}
	records := msg.page.Records
	if records == nil {
		records = []model.HistoryRecord{}
	}
	c.state = reqstate.NewSuccess(records)
	c.total = msg.page.Total
	return true
}

// Settle runs cmd synchronously and commits its outcome, for non-interactive use.
func (c *Controller) Settle(cmd tea.Cmd) reqstate.State[[]model.HistoryRecord] {
	if cmd == nil {
		return c.state
	}
	if msg, ok := cmd().(FetchedMsg); ok {
		c.Handle(msg)
	}
	return c.state
}

func (c *Controller) apply(page int, key model.SortKey) tea.Cmd {
	if page == c.page && key == c.sortBy {
		return nil
	}
	c.page = page
	c.sortBy = key
	return c.fetch()
}

func (c *Controller) clamp(n int) int {
	last := c.TotalPages()
	if last < 1 {
		last = 1
	}
	if n > last {
		n = last
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (c *Controller) fetch() tea.Cmd {
	c.seq++
	seq := c.seq
	c.state = reqstate.NewLoading[[]model.HistoryRecord]()
	query := model.HistoryQuery{Page: c.page, PageSize: c.pageSize, SortBy: c.sortBy}
	client, ctx := c.client, c.ctx
	return func() tea.Msg {
		page, err := client.History(ctx, query)
		return FetchedMsg{seq: seq, page: page, err: err}
	}
}

// TotalPages returns ceil(total / pageSize), or 0 for an empty result.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// RowNumber returns the 1-based position of the i-th record on a page.
func RowNumber(page, pageSize, i int) int {
	return (page-1)*pageSize + i + 1
}
