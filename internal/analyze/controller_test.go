package analyze

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/passintel/internal/api"
	"github.com/verte-zerg/passintel/internal/model"
	"github.com/verte-zerg/passintel/internal/reqstate"
)

type fakeAnalyzer struct {
	calls     atomic.Int32
	passwords []string
	result    model.AnalysisResult
	err       error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, password string) (model.AnalysisResult, error) {
	f.calls.Add(1)
	f.passwords = append(f.passwords, password)
	return f.result, f.err
}

func sampleResult() model.AnalysisResult {
	return model.AnalysisResult{
		Strength:          model.StrengthStrong,
		Score:             85,
		Entropy:           62.3,
		Breached:          false,
		Reasons:           []string{"✓ Long enough"},
		SuggestedPassword: "Xk9#mQ...",
	}
}

func settle(t *testing.T, c *Controller, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	msg, ok := cmd().(ResultMsg)
	if !ok {
		t.Fatalf("expected ResultMsg")
	}
	return c.Handle(msg)
}

func TestSubmitSuccessKeepsFieldsVerbatim(t *testing.T) {
	fake := &fakeAnalyzer{result: sampleResult()}
	c := New(fake)

	cmd := c.Submit("hunter2")
	if !c.State().IsLoading() {
		t.Fatalf("expected loading after submit, got %s", c.State().Phase())
	}
	if !settle(t, c, cmd) {
		t.Fatalf("expected result to be committed")
	}
	got, ok := c.State().Value()
	if !ok {
		t.Fatalf("expected success, got %s", c.State().Phase())
	}
	if !reflect.DeepEqual(got, sampleResult()) {
		t.Fatalf("result changed in transit: %+v", got)
	}
	if fake.passwords[0] != "hunter2" {
		t.Fatalf("transport got %q", fake.passwords[0])
	}
}

func TestSubmitFailureSettlesFailed(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"network", &api.Error{Kind: api.KindNetwork, Err: errors.New("refused")}, FailureMessage},
		{"server detail", &api.Error{Kind: api.KindServer, StatusCode: 429, Detail: "slow down"}, "slow down"},
		{"unexpected", &api.Error{Kind: api.KindUnexpected, StatusCode: 500}, FailureMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(&fakeAnalyzer{err: tc.err})
			settle(t, c, c.Submit("pw"))
			msg, ok := c.State().Message()
			if !ok {
				t.Fatalf("expected failed, got %s", c.State().Phase())
			}
			if msg != tc.want {
				t.Fatalf("message = %q, want %q", msg, tc.want)
			}
			if _, ok := c.State().Value(); ok {
				t.Fatalf("failed state must not carry a result")
			}
		})
	}
}

func TestSubmitBlankIsNoop(t *testing.T) {
	fake := &fakeAnalyzer{result: sampleResult()}
	c := New(fake)
	settle(t, c, c.Submit("real"))
	before := c.State()

	for _, pw := range []string{"", "   ", "\t\n"} {
		if cmd := c.Submit(pw); cmd != nil {
			t.Fatalf("expected nil command for %q", pw)
		}
		if !reflect.DeepEqual(c.State(), before) {
			t.Fatalf("state changed after blank submit %q", pw)
		}
	}
	if fake.calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", fake.calls.Load())
	}
}

func TestSubmitWhileLoadingIsNoop(t *testing.T) {
	fake := &fakeAnalyzer{result: sampleResult()}
	c := New(fake)

	first := c.Submit("one")
	if second := c.Submit("two"); second != nil {
		t.Fatalf("expected re-entrant submit to be ignored")
	}
	if !c.State().IsLoading() {
		t.Fatalf("expected still loading")
	}
	settle(t, c, first)
	if fake.calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", fake.calls.Load())
	}
	if fake.passwords[0] != "one" {
		t.Fatalf("transport got %q, want one", fake.passwords[0])
	}
}

func TestSubmitClearsPreviousOutcome(t *testing.T) {
	fake := &fakeAnalyzer{err: &api.Error{Kind: api.KindNetwork}}
	c := New(fake)
	settle(t, c, c.Submit("pw"))
	if c.State().Phase() != reqstate.Failed {
		t.Fatalf("expected failed")
	}

	fake.err = nil
	fake.result = sampleResult()
	cmd := c.Submit("pw")
	if _, ok := c.State().Message(); ok {
		t.Fatalf("loading state must not carry the previous error")
	}
	if _, ok := c.State().Value(); ok {
		t.Fatalf("loading state must not carry a result")
	}
	settle(t, c, cmd)
	if c.State().Phase() != reqstate.Success {
		t.Fatalf("expected success, got %s", c.State().Phase())
	}
}

func TestResultAfterResetIsDiscarded(t *testing.T) {
	c := New(&fakeAnalyzer{result: sampleResult()})
	cmd := c.Submit("pw")
	c.Reset()
	if settle(t, c, cmd) {
		t.Fatalf("expected abandoned result to be ignored")
	}
	if c.State().Phase() != reqstate.Idle {
		t.Fatalf("expected idle, got %s", c.State().Phase())
	}
}

func TestDuplicateResultIsIgnored(t *testing.T) {
	c := New(&fakeAnalyzer{result: sampleResult()})
	msg := c.Submit("pw")().(ResultMsg)
	if !c.Handle(msg) {
		t.Fatalf("expected first delivery to commit")
	}
	if c.Handle(msg) {
		t.Fatalf("expected second delivery to be ignored")
	}
}

func TestRun(t *testing.T) {
	c := New(&fakeAnalyzer{result: sampleResult()})
	state := c.Run("pw")
	if state.Phase() != reqstate.Success {
		t.Fatalf("expected success, got %s", state.Phase())
	}
	if c.Run(" ").Phase() != reqstate.Success {
		t.Fatalf("blank run must leave state unchanged")
	}
}

// blockingAnalyzer holds every call until its context is cancelled and tracks
// how many calls run at once.
type blockingAnalyzer struct {
	started chan struct{}
	active  atomic.Int32
	peak    atomic.Int32
}

func (b *blockingAnalyzer) Analyze(ctx context.Context, _ string) (model.AnalysisResult, error) {
	n := b.active.Add(1)
	for {
		p := b.peak.Load()
		if n <= p || b.peak.CompareAndSwap(p, n) {
			break
		}
	}
	b.started <- struct{}{}
	<-ctx.Done()
	b.active.Add(-1)
	return model.AnalysisResult{}, &api.Error{Kind: api.KindNetwork, Err: ctx.Err()}
}

func TestResetCancelsAndBlocksResubmitUntilSettled(t *testing.T) {
	stub := &blockingAnalyzer{started: make(chan struct{}, 4)}
	c := New(stub)

	first := c.Submit("one")
	done := make(chan tea.Msg, 1)
	go func() { done <- first() }()
	<-stub.started

	c.Reset()
	if c.State().Phase() != reqstate.Idle {
		t.Fatalf("expected idle after reset, got %s", c.State().Phase())
	}
	if cmd := c.Submit("two"); cmd != nil {
		t.Fatalf("expected submit to wait for the abandoned call")
	}
	if !c.InFlight() {
		t.Fatalf("expected the abandoned call to still count as in flight")
	}

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("reset did not cancel the running call")
	}
	if c.Handle(msg.(ResultMsg)) {
		t.Fatalf("abandoned result must not commit")
	}
	if c.State().Phase() != reqstate.Idle || c.InFlight() {
		t.Fatalf("expected idle with nothing in flight, got %s", c.State().Phase())
	}
	if cmd := c.Submit("three"); cmd == nil {
		t.Fatalf("expected submit to work once the abandoned call settled")
	}
	if got := stub.peak.Load(); got != 1 {
		t.Fatalf("peak concurrent calls = %d, want 1", got)
	}
}
