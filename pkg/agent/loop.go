// Package agent runs the computer-use interaction loop: replay the model's
// action, let the page settle, send a screenshot back, repeat until the model
// stops asking for actions.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/cua-browser/pkg/computer"
	"github.com/entrhq/cua-browser/pkg/llm"
	"github.com/entrhq/cua-browser/pkg/logging"
	"github.com/entrhq/cua-browser/pkg/security/domains"
	"github.com/entrhq/cua-browser/pkg/types"
)

var agentDebugLog *logging.Logger

func init() {
	var err error
	agentDebugLog, err = logging.NewLogger("agent")
	if err != nil {
		agentDebugLog.Warnf("Failed to initialize agent logger, using stderr fallback: %v", err)
	}
}

// DefaultSettleDelay is the pause between an action and its screenshot.
const DefaultSettleDelay = time.Second

// ErrDomainNotAllowed is returned when an action leaves the page on a host
// outside the configured allowlist.
var ErrDomainNotAllowed = errors.New("page is outside the allowed domains")

// Page is the live page the loop drives and photographs.
type Page interface {
	computer.Page
	Screenshot() ([]byte, error)
	URL() string
}

// Reporter receives progress of the loop for display.
type Reporter interface {
	computer.Observer
	Action(step int, action types.Action)
	SafetyChecks(checks []types.SafetyCheck, acknowledged bool)
	ModelOutput(title string, resp *types.Response)
}

// Loop drives one computer-use conversation against one page.
type Loop struct {
	provider   llm.Provider
	page       Page
	dispatcher *computer.Dispatcher
	reporter   Reporter
	guard      *domains.Guard

	settleDelay     time.Duration
	sleep           computer.SleepFunc
	ackSafetyChecks bool

	steps int
}

// LoopOption is a function that configures a Loop
type LoopOption func(*Loop)

// WithDispatcher sets the action dispatcher. By default one is created that
// reports to the loop's reporter.
func WithDispatcher(d *computer.Dispatcher) LoopOption {
	return func(l *Loop) {
		l.dispatcher = d
	}
}

// WithReporter sets where progress is reported.
func WithReporter(r Reporter) LoopOption {
	return func(l *Loop) {
		l.reporter = r
	}
}

// WithDomainGuard restricts the hosts the page may be on after an action.
func WithDomainGuard(g *domains.Guard) LoopOption {
	return func(l *Loop) {
		l.guard = g
	}
}

// WithSettleDelay sets the pause between an action and its screenshot.
func WithSettleDelay(d time.Duration) LoopOption {
	return func(l *Loop) {
		l.settleDelay = d
	}
}

// WithSleeper replaces the settle sleep, mainly for tests.
func WithSleeper(sleep computer.SleepFunc) LoopOption {
	return func(l *Loop) {
		l.sleep = sleep
	}
}

// WithSafetyCheckAcknowledgement controls whether pending safety checks are
// echoed back as acknowledged.
func WithSafetyCheckAcknowledgement(ack bool) LoopOption {
	return func(l *Loop) {
		l.ackSafetyChecks = ack
	}
}

// NewLoop creates a loop for the given provider and page.
func NewLoop(provider llm.Provider, page Page, opts ...LoopOption) *Loop {
	l := &Loop{
		provider:        provider,
		page:            page,
		reporter:        nopReporter{},
		settleDelay:     DefaultSettleDelay,
		sleep:           computer.Sleep,
		ackSafetyChecks: true,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.dispatcher == nil {
		l.dispatcher = computer.NewDispatcher(computer.WithObserver(l.reporter))
	}

	return l
}

// Steps returns how many actions the loop has dispatched.
func (l *Loop) Steps() int {
	return l.steps
}

// Run processes responses until one carries no computer call and returns that
// response unchanged. Action failures are reported and do not stop the run;
// screenshot, provider and cancellation errors do.
func (l *Loop) Run(ctx context.Context, initial *types.Response) (*types.Response, error) {
	resp := initial

	for {
		call := resp.NextCall()
		if call == nil {
			agentDebugLog.Infof("no computer call in response %s after %d steps", responseID(resp), l.steps)
			l.reporter.ModelOutput("No computer call found. Model output", resp)
			return resp, nil
		}

		l.reporter.ModelOutput("Model output", resp)

		next, err := l.step(ctx, resp, call)
		if err != nil {
			return nil, err
		}
		resp = next
	}
}

// step performs one call and returns the model's answer to its screenshot.
func (l *Loop) step(ctx context.Context, resp *types.Response, call *types.ComputerCall) (*types.Response, error) {
	l.steps++
	agentDebugLog.Debugf("step %d: response %s call %s: %s", l.steps, resp.ID, call.CallID, call.Action)

	l.reporter.Action(l.steps, call.Action)
	l.dispatcher.Dispatch(ctx, l.page, call.Action)

	if err := l.sleep(ctx, l.settleDelay); err != nil {
		return nil, fmt.Errorf("interrupted after step %d: %w", l.steps, err)
	}

	if l.guard.Enabled() {
		url := l.page.URL()
		if !l.guard.Allowed(url) {
			agentDebugLog.Warnf("page left allowed domains: %s (allowed: %v)", url, l.guard.Patterns())
			return nil, fmt.Errorf("%w: %s", ErrDomainNotAllowed, url)
		}
	}

	screenshot, err := l.page.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}

	var acknowledged []types.SafetyCheck
	if len(call.PendingSafetyChecks) > 0 {
		l.reporter.SafetyChecks(call.PendingSafetyChecks, l.ackSafetyChecks)
		if l.ackSafetyChecks {
			acknowledged = call.PendingSafetyChecks
		}
	}

	next, err := l.provider.SubmitScreenshot(ctx, llm.SubmitRequest{
		PreviousResponseID:       resp.ID,
		CallID:                   call.CallID,
		Screenshot:               screenshot,
		AcknowledgedSafetyChecks: acknowledged,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send screenshot for call %s: %w", call.CallID, err)
	}
	return next, nil
}

func responseID(resp *types.Response) string {
	if resp == nil {
		return "<nil>"
	}
	return resp.ID
}

type nopReporter struct{}

func (nopReporter) ActionFailed(types.Action, error)       {}
func (nopReporter) UnknownAction(types.Action)             {}
func (nopReporter) Action(int, types.Action)               {}
func (nopReporter) SafetyChecks([]types.SafetyCheck, bool) {}
func (nopReporter) ModelOutput(string, *types.Response)    {}
