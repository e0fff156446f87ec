// Package analyze drives the one-password-at-a-time analysis workflow.
package analyze

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/passintel/internal/api"
	"github.com/verte-zerg/passintel/internal/model"
	"github.com/verte-zerg/passintel/internal/reqstate"
)

// FailureMessage is shown when the service gave no usable detail.
const FailureMessage = "Failed to reach the API. Is the backend running?"

// Analyzer is the transport dependency of the Controller.
type Analyzer interface {
	Analyze(ctx context.Context, password string) (model.AnalysisResult, error)
}

// ResultMsg carries the outcome of a submission back to the event loop.
type ResultMsg struct {
	seq    uint64
	result model.AnalysisResult
	err    error
}

// Controller owns the analysis request state. It is not safe for concurrent
// use; all methods are called from the UI event loop, and the transport call
// runs inside the returned tea.Cmd.
type Controller struct {
	client Analyzer
	ctx    context.Context
	state  reqstate.State[model.AnalysisResult]
	seq    uint64

	// inflight is the seq of the transport call still running, or zero. It is
	// cleared only by that call's ResultMsg, even after a Reset.
	inflight uint64
	cancel   context.CancelFunc
}

// New returns an idle Controller.
func New(client Analyzer) *Controller {
	return &Controller{
		client: client,
		ctx:    context.Background(),
		state:  reqstate.NewIdle[model.AnalysisResult](),
	}
}

// State returns a snapshot for rendering.
func (c *Controller) State() reqstate.State[model.AnalysisResult] {
	return c.state
}

// Submit starts an analysis. It returns nil, leaving state untouched, when the
// password is blank or a transport call is still running, including one
// abandoned by Reset that has not reported back yet.
func (c *Controller) Submit(password string) tea.Cmd {
	if strings.TrimSpace(password) == "" || c.inflight != 0 {
		return nil
	}
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight = seq
	c.cancel = cancel
	c.state = reqstate.NewLoading[model.AnalysisResult]()
	client := c.client
	return func() tea.Msg {
		defer cancel()
		result, err := client.Analyze(ctx, password)
		return ResultMsg{seq: seq, result: result, err: err}
	}
}

// InFlight reports whether a transport call has not reported back yet.
func (c *Controller) InFlight() bool {
	return c.inflight != 0
}

// Handle settles the in-flight request. It reports false for results that no
// longer belong to the current request.
func (c *Controller) Handle(msg ResultMsg) bool {
	if msg.seq == c.inflight {
		c.inflight = 0
		c.cancel = nil
	}
	if msg.seq != c.seq || !c.state.IsLoading() {
		return false
	}
	if msg.err != nil {
		c.state = reqstate.NewFailed[model.AnalysisResult](api.Message(msg.err, FailureMessage))
		return true
	}
	c.state = reqstate.NewSuccess(msg.result)
	return true
}

// Reset discards the current result or error. A request still in flight is
// cancelled and its result ignored; Submit stays a no-op until it reports back.
func (c *Controller) Reset() {
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	c.state = reqstate.NewIdle[model.AnalysisResult]()
}

// Run performs a full submit/settle cycle synchronously, for non-interactive use.
func (c *Controller) Run(password string) reqstate.State[model.AnalysisResult] {
	cmd := c.Submit(password)
	if cmd == nil {
		return c.state
	}
	if msg, ok := cmd().(ResultMsg); ok {
		c.Handle(msg)
	}
	return c.state
}
