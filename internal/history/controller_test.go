package history

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/passintel/internal/api"
	"github.com/verte-zerg/passintel/internal/model"
	"github.com/verte-zerg/passintel/internal/reqstate"
)

// fakeFetcher answers from a script keyed by page and records every query.
type fakeFetcher struct {
	queries []model.HistoryQuery
	total   int
	err     error
}

func (f *fakeFetcher) History(_ context.Context, q model.HistoryQuery) (model.HistoryPage, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return model.HistoryPage{}, f.err
	}
	return model.HistoryPage{
		Records:  recordsFor(q),
		Total:    f.total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}, nil
}

func recordsFor(q model.HistoryQuery) []model.HistoryRecord {
	return []model.HistoryRecord{{ID: int64(q.Page*100 + len(q.SortBy)), Strength: model.StrengthMedium, Score: q.Page}}
}

func deliver(t *testing.T, c *Controller, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a fetch command")
	}
	msg, ok := cmd().(FetchedMsg)
	if !ok {
		t.Fatalf("expected FetchedMsg")
	}
	return c.Handle(msg)
}

func loaded(t *testing.T, fake *fakeFetcher) *Controller {
	t.Helper()
	c := New(fake, DefaultPageSize)
	deliver(t, c, c.Init())
	return c
}

func TestInitialStateIsLoading(t *testing.T) {
	c := New(&fakeFetcher{}, DefaultPageSize)
	if c.State().Phase() != reqstate.Loading {
		t.Fatalf("expected loading, got %s", c.State().Phase())
	}
	if c.Page() != 1 || c.SortBy() != model.SortByDate {
		t.Fatalf("unexpected initial query page=%d sort=%s", c.Page(), c.SortBy())
	}
}

func TestInitFetchesFirstPage(t *testing.T) {
	fake := &fakeFetcher{total: 25}
	c := loaded(t, fake)
	if len(fake.queries) != 1 {
		t.Fatalf("queries = %d, want 1", len(fake.queries))
	}
	want := model.HistoryQuery{Page: 1, PageSize: 10, SortBy: model.SortByDate}
	if fake.queries[0] != want {
		t.Fatalf("query = %+v, want %+v", fake.queries[0], want)
	}
	if c.Total() != 25 || c.TotalPages() != 3 || len(c.Records()) != 1 {
		t.Fatalf("unexpected state total=%d pages=%d records=%d", c.Total(), c.TotalPages(), len(c.Records()))
	}
}

func TestSetSortResetsPage(t *testing.T) {
	fake := &fakeFetcher{total: 100}
	c := loaded(t, fake)
	deliver(t, c, c.SetPage(7))
	if c.Page() != 7 {
		t.Fatalf("page = %d, want 7", c.Page())
	}

	cmd := c.SetSort(model.SortByScore)
	if c.Page() != 1 {
		t.Fatalf("page = %d, want 1 after sort change", c.Page())
	}
	deliver(t, c, cmd)
	last := fake.queries[len(fake.queries)-1]
	if last.Page != 1 || last.SortBy != model.SortByScore {
		t.Fatalf("unexpected query after sort: %+v", last)
	}
}

func TestUnchangedQueryDoesNotFetch(t *testing.T) {
	fake := &fakeFetcher{total: 30}
	c := loaded(t, fake)
	if cmd := c.SetSort(model.SortByDate); cmd != nil {
		t.Fatalf("expected no fetch for the same sort on page 1")
	}
	if cmd := c.SetPage(1); cmd != nil {
		t.Fatalf("expected no fetch for the same page")
	}
	if len(fake.queries) != 1 {
		t.Fatalf("queries = %d, want 1", len(fake.queries))
	}
}

func TestEachChangeIssuesExactlyOneFetch(t *testing.T) {
	fake := &fakeFetcher{total: 50}
	c := loaded(t, fake)
	deliver(t, c, c.NextPage())
	deliver(t, c, c.SetSort(model.SortByStrength))
	deliver(t, c, c.SetPage(4))
	if len(fake.queries) != 4 {
		t.Fatalf("queries = %d, want 4", len(fake.queries))
	}
}

func TestLateStaleResponseIsDiscarded(t *testing.T) {
	fake := &fakeFetcher{total: 100}
	c := loaded(t, fake)

	fetchA := c.SetPage(2)
	fetchB := c.SetPage(3)
	msgB := fetchB().(FetchedMsg)
	msgA := fetchA().(FetchedMsg)

	if !c.Handle(msgB) {
		t.Fatalf("expected newest fetch to commit")
	}
	if c.Handle(msgA) {
		t.Fatalf("expected stale fetch to be discarded")
	}
	records := c.Records()
	if len(records) != 1 || records[0].Score != 3 {
		t.Fatalf("committed records are not from the newest fetch: %+v", records)
	}
	if c.Page() != 3 {
		t.Fatalf("page = %d, want 3", c.Page())
	}
}

func TestStaleResponseBeforeNewestDoesNotCommit(t *testing.T) {
	fake := &fakeFetcher{total: 100}
	c := loaded(t, fake)

	fetchA := c.SetSort(model.SortByScore)
	fetchB := c.SetSort(model.SortByStrength)
	if c.Handle(fetchA().(FetchedMsg)) {
		t.Fatalf("expected superseded fetch to be discarded")
	}
	if !c.State().IsLoading() {
		t.Fatalf("expected to keep loading until the newest fetch settles")
	}
	deliver(t, c, fetchB)
	if c.State().Phase() != reqstate.Success {
		t.Fatalf("expected success, got %s", c.State().Phase())
	}
}

func TestFailureClearsRecordsAndTotal(t *testing.T) {
	fake := &fakeFetcher{total: 42}
	c := loaded(t, fake)
	if c.Total() != 42 || len(c.Records()) == 0 {
		t.Fatalf("expected populated state before failure")
	}

	fake.err = &api.Error{Kind: api.KindNetwork, Err: errors.New("refused")}
	deliver(t, c, c.Refresh())
	if len(c.Records()) != 0 {
		t.Fatalf("records = %d, want 0", len(c.Records()))
	}
	if c.Total() != 0 || c.TotalPages() != 0 {
		t.Fatalf("total = %d pages = %d, want 0", c.Total(), c.TotalPages())
	}
	msg, ok := c.State().Message()
	if !ok || msg != FailureMessage {
		t.Fatalf("message = %q, want %q", msg, FailureMessage)
	}
}

func TestFailureSurfacesServerDetail(t *testing.T) {
	fake := &fakeFetcher{err: &api.Error{Kind: api.KindServer, StatusCode: 422, Detail: "page_size too large"}}
	c := New(fake, DefaultPageSize)
	deliver(t, c, c.Init())
	if msg, _ := c.State().Message(); msg != "page_size too large" {
		t.Fatalf("message = %q", msg)
	}
}

func TestRefreshRecoversAfterFailure(t *testing.T) {
	fake := &fakeFetcher{err: errors.New("down")}
	c := New(fake, DefaultPageSize)
	deliver(t, c, c.Init())
	fake.err = nil
	fake.total = 5
	deliver(t, c, c.Refresh())
	if c.State().Phase() != reqstate.Success || c.Total() != 5 {
		t.Fatalf("expected recovery, got %s total=%d", c.State().Phase(), c.Total())
	}
}

func TestPaginationClamp(t *testing.T) {
	fake := &fakeFetcher{total: 95}
	c := loaded(t, fake)
	if c.TotalPages() != 10 {
		t.Fatalf("total pages = %d, want 10", c.TotalPages())
	}

	deliver(t, c, c.SetPage(10))
	if c.Page() != 10 || c.HasNext() {
		t.Fatalf("expected to be on the last page")
	}
	before := len(fake.queries)
	if cmd := c.SetPage(11); cmd != nil {
		t.Fatalf("expected page 11 to clamp to the current last page without fetching")
	}
	if cmd := c.NextPage(); cmd != nil {
		t.Fatalf("expected next on the last page to be a no-op")
	}
	if len(fake.queries) != before {
		t.Fatalf("out-of-range navigation reached the transport")
	}
	for _, q := range fake.queries {
		if q.Page > 10 {
			t.Fatalf("requested page %d beyond total pages", q.Page)
		}
	}

	deliver(t, c, c.SetPage(0))
	if c.Page() != 1 || c.HasPrev() {
		t.Fatalf("page = %d, want 1", c.Page())
	}
	if cmd := c.PrevPage(); cmd != nil {
		t.Fatalf("expected prev on the first page to be a no-op")
	}
}

func TestInitAtUsesRequestedPosition(t *testing.T) {
	fake := &fakeFetcher{total: 95}
	c := New(fake, 25)
	state := c.Settle(c.InitAt(3, model.SortByScore))
	if state.Phase() != reqstate.Success {
		t.Fatalf("expected success, got %s", state.Phase())
	}
	want := model.HistoryQuery{Page: 3, PageSize: 25, SortBy: model.SortByScore}
	if fake.queries[0] != want {
		t.Fatalf("query = %+v, want %+v", fake.queries[0], want)
	}
	if c.TotalPages() != 4 {
		t.Fatalf("total pages = %d, want 4", c.TotalPages())
	}
}

func TestNewFallsBackToDefaultPageSize(t *testing.T) {
	for _, size := range []int{0, -1, MaxPageSize + 1} {
		if got := New(&fakeFetcher{}, size).PageSize(); got != DefaultPageSize {
			t.Fatalf("page size for %d = %d, want %d", size, got, DefaultPageSize)
		}
	}
}

func TestTotalPagesAndRowNumber(t *testing.T) {
	cases := []struct{ total, size, want int }{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
	if got := RowNumber(3, 10, 0); got != 21 {
		t.Fatalf("RowNumber = %d, want 21", got)
	}
}
