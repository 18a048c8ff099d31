package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/cua-browser/internal/testing/pagetest"
	"github.com/entrhq/cua-browser/pkg/computer"
	"github.com/entrhq/cua-browser/pkg/llm"
	"github.com/entrhq/cua-browser/pkg/security/domains"
	"github.com/entrhq/cua-browser/pkg/types"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Start(ctx context.Context, req llm.StartRequest) (*types.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*types.Response)
	return resp, args.Error(1)
}

func (m *mockProvider) SubmitScreenshot(ctx context.Context, req llm.SubmitRequest) (*types.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*types.Response)
	return resp, args.Error(1)
}

func (m *mockProvider) GetModel() string   { return "test-model" }
func (m *mockProvider) GetBaseURL() string { return "http://localhost" }

type recordingReporter struct {
	actions []types.Action
	steps   []int
	failed  []error
	unknown []types.Action
	checks  []types.SafetyCheck
	acked   []bool
	outputs []string
}

func (r *recordingReporter) ActionFailed(_ types.Action, err error) { r.failed = append(r.failed, err) }
func (r *recordingReporter) UnknownAction(a types.Action)           { r.unknown = append(r.unknown, a) }

func (r *recordingReporter) Action(step int, a types.Action) {
	r.steps = append(r.steps, step)
	r.actions = append(r.actions, a)
}

func (r *recordingReporter) SafetyChecks(checks []types.SafetyCheck, acknowledged bool) {
	r.checks = append(r.checks, checks...)
	r.acked = append(r.acked, acknowledged)
}

func (r *recordingReporter) ModelOutput(title string, _ *types.Response) {
	r.outputs = append(r.outputs, title)
}

func noSleep(context.Context, time.Duration) error { return nil }

func callResponse(id, callID string, action types.Action, checks ...types.SafetyCheck) *types.Response {
	return &types.Response{
		ID:     id,
		Status: "completed",
		Output: []types.OutputItem{
			{Type: types.OutputReasoning, ID: "rs_" + id, Text: "thinking"},
			{
				Type: types.OutputComputerCall,
				ID:   "cu_" + callID,
				Call: &types.ComputerCall{ID: "cu_" + callID, CallID: callID, Action: action, PendingSafetyChecks: checks},
			},
		},
	}
}

func finalResponse(id string) *types.Response {
	return &types.Response{
		ID:     id,
		Status: "completed",
		Output: []types.OutputItem{{Type: types.OutputMessage, ID: "msg_" + id, Text: "done"}},
	}
}

var png = []byte("png-bytes")

func newTestLoop(provider llm.Provider, page Page, reporter *recordingReporter, opts ...LoopOption) *Loop {
	base := []LoopOption{
		WithReporter(reporter),
		WithSleeper(noSleep),
		WithDispatcher(computer.NewDispatcher(computer.WithObserver(reporter), computer.WithSleeper(noSleep))),
	}
	return NewLoop(provider, page, append(base, opts...)...)
}

func TestRun_NoComputerCallReturnsResponseUnchanged(t *testing.T) {
	provider := &mockProvider{}
	page := &pagetest.MockPage{}
	reporter := &recordingReporter{}
	initial := finalResponse("resp_1")

	final, err := newTestLoop(provider, page, reporter).Run(context.Background(), initial)

	require.NoError(t, err)
	assert.Same(t, initial, final)
	assert.Empty(t, page.Calls)
	assert.Empty(t, provider.Calls)
	assert.Equal(t, []string{"No computer call found. Model output"}, reporter.outputs)
}

func TestRun_ChainsResponsesAndCallIDs(t *testing.T) {
	provider := &mockProvider{}
	page := &pagetest.MockPage{}
	reporter := &recordingReporter{}

	first := callResponse("resp_1", "call_1", types.Action{Kind: types.ActionClick, X: 5, Y: 6, Button: "left"})
	second := callResponse("resp_2", "call_2", types.Action{Kind: types.ActionType, Text: "openai news"})
	last := finalResponse("resp_3")

	page.On("Click", float64(5), float64(6), "left").Return(nil).Once()
	page.On("TypeText", "openai news").Return(nil).Once()
	page.On("Screenshot").Return(png, nil).Twice()

	provider.On("SubmitScreenshot", mock.Anything, llm.SubmitRequest{
		PreviousResponseID: "resp_1", CallID: "call_1", Screenshot: png,
	}).Return(second, nil).Once()
	provider.On("SubmitScreenshot", mock.Anything, llm.SubmitRequest{
		PreviousResponseID: "resp_2", CallID: "call_2", Screenshot: png,
	}).Return(last, nil).Once()

	loop := newTestLoop(provider, page, reporter)
	final, err := loop.Run(context.Background(), first)

	require.NoError(t, err)
	assert.Same(t, last, final)
	assert.Equal(t, 2, loop.Steps())
	assert.Equal(t, []int{1, 2}, reporter.steps)
	page.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestRun_UsesOnlyFirstComputerCall(t *testing.T) {
	provider := &mockProvider{}
	page := &pagetest.MockPage{}
	reporter := &recordingReporter{}

	resp := callResponse("resp_1", "call_1", types.Action{Kind: types.ActionScreenshot})
	resp.Output = append(resp.Output, types.OutputItem{
		Type: types.OutputComputerCall,
		Call: &types.ComputerCall{CallID: "call_extra", Action: types.Action{Kind: types.ActionType, Text: "ignored"}},
	})

	page.On("Screenshot").Return(png, nil).Once()
	provider.On("SubmitScreenshot", mock.Anything, mock.MatchedBy(func(req llm.SubmitRequest) bool {
		return req.CallID == "call_1"
	})).Return(finalResponse("resp_2"), nil).Once()

	_, err := newTestLoop(provider, page, reporter).Run(context.Background(), resp)

	require.NoError(t, err)
	page.AssertNotCalled(t, "TypeText", mock.Anything)
	provider.AssertExpectations(t)
}

func TestRun_ActionFailureDoesNotAbort(t *testing.T) {
	provider := &mockProvider{}
	page := &pagetest.MockPage{}
	reporter := &recordingReporter{}

	page.On("Click", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("element detached")).Once()
	page.On("Screenshot").Return(png, nil).Once()
	provider.On("SubmitScreenshot", mock.Anything, mock.Anything).Return(finalResponse("resp_2"), nil).Once()

	final, err := newTestLoop(provider, page, reporter).Run(context.Background(),
		callResponse("resp_1", "call_1", types.Action{Kind: types.ActionClick, Button: "left"}))

	require.NoError(t, err)
	assert.Equal(t, "resp_2", final.ID)
	require.Len(t, reporter.failed, 1)
	assert.EqualError(t, reporter.failed[0], "element detached")
}

func TestRun_UnknownActionStillReportsScreenshot(t *testing.T) {
	provider := &mockProvider{}
	page := &pagetest.MockPage{}
	reporter := &recordingReporter{}

	page.On("Screenshot").Return(png, nil).Once()
	provider.On("SubmitScreenshot", mock.Anything, mock.Anything).Return(finalResponse("resp_2"), nil).Once()

	_, err := newTestLoop(provider, page, reporter).Run(context.Background(),
		callResponse("resp_1", "call_1", types.Action{Kind: "drag"}))

	require.NoError(t, err)
	require.Len(t, reporter.unknown, 1)
	assert.Equal(t, types.ActionKind("drag"), reporter.unknown[0].Kind)
	provider.AssertExpectations(t)
}

func TestRun_ScreenshotErrorPropagates(t *testing.T) {
	provider := &mockProvider{}
	page := &pagetest.MockPage{}
	reporter := &recordingReporter{}

	page.On("Screenshot").Return(nil, errors.New("target closed")).Once()

	final, err := newTestLoop(provider, page, reporter).Run(context.Background(),
		callResponse("resp_1", "call_1", types.Action{Kind: types.ActionScreenshot}))

	require.Error(t, err)
	assert.Nil(t, final)
	assert.Contains(t, err.Error(), "failed to capture screenshot")
	assert.Contains(t, err.Error(), "target closed")
	provider.AssertNotCalled(t, "SubmitScreenshot", mock.Anything, mock.Anything)
}

func TestRun_ProviderErrorPropagates(t *testing.T) {
	provider := &mockProvider{}
	page := &pagetest.MockPage{}
	reporter := &recordingReporter{}
	apiErr := errors.New("503 service unavailable")

	page.On("Screenshot").Return(png, nil).Once()
	provider.On("SubmitScreenshot", mock.Anything, mock.Anything).Return(nil, apiErr).Once()

	final, err := newTestLoop(provider, page, reporter).Run(context.Background(),
		callResponse("resp_1", "call_1", types.Action{Kind: types.ActionScreenshot}))

	assert.Nil(t, final)
	assert.ErrorIs(t, err, apiErr)
	assert.Contains(t, err.Error(), "call_1")
}

func TestRun_SettleDelay(t *testing.T) {
	provider := &mockProvider{}
	page := &pagetest.MockPage{}
	reporter := &recordingReporter{}
	var slept []time.Duration
	sleeper := func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	page.On("Screenshot").Return(png, nil).Once()
	provider.On("SubmitScreenshot", mock.Anything, mock.Anything).Return(finalResponse("resp_2"), nil).Once()

	_, err := newTestLoop(provider, page, reporter, WithSleeper(sleeper)).Run(context.Background(),
		callResponse("resp_1", "call_1", types.Action{Kind: types.ActionScreenshot}))

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{DefaultSettleDelay}, slept)
}

func TestRun_CancelledDuringSettle(t *testing.T) {
	provider := &mockProvider{}
	page := &pagetest.MockPage{}
	reporter := &recordingReporter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoop(provider, page, reporter, WithSleeper(computer.Sleep)).Run(ctx,
		callResponse("resp_1", "call_1", types.Action{Kind: types.ActionScreenshot}))

	assert.ErrorIs(t, err, context.Canceled)
	page.AssertNotCalled(t, "Screenshot")
	provider.AssertNotCalled(t, "SubmitScreenshot", mock.Anything, mock.Anything)
}

func TestRun_SafetyChecks(t *testing.T) {
	check := types.SafetyCheck{ID: "sc_1", Code: "malicious_instructions", Message: "Check the page."}

	tests := []struct {
		name     string
		ack      bool
		wantAcks []types.SafetyCheck
	}{
		{"acknowledged by default", true, []types.SafetyCheck{check}},
		{"not acknowledged when disabled", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{}
			page := &pagetest.MockPage{}
			reporter := &recordingReporter{}

			page.On("Screenshot").Return(png, nil).Once()
			provider.On("SubmitScreenshot", mock.Anything, llm.SubmitRequest{
				PreviousResponseID:       "resp_1",
				CallID:                   "call_1",
				Screenshot:               png,
				AcknowledgedSafetyChecks: tt.wantAcks,
			}).Return(finalResponse("resp_2"), nil).Once()

			_, err := newTestLoop(provider, page, reporter, WithSafetyCheckAcknowledgement(tt.ack)).Run(
				context.Background(),
				callResponse("resp_1", "call_1", types.Action{Kind: types.ActionScreenshot}, check))

			require.NoError(t, err)
			provider.AssertExpectations(t)
			assert.Equal(t, []types.SafetyCheck{check}, reporter.checks)
			assert.Equal(t, []bool{tt.ack}, reporter.acked)
		})
	}
}

func TestRun_DomainGuard(t *testing.T) {
	guard, err := domains.NewGuard([]string{"bing.com", "*.bing.com"})
	require.NoError(t, err)

	t.Run("allowed host continues", func(t *testing.T) {
		provider := &mockProvider{}
		page := &pagetest.MockPage{}
		reporter := &recordingReporter{}

		page.On("URL").Return("https://www.bing.com/search?q=openai").Once()
		page.On("Screenshot").Return(png, nil).Once()
		provider.On("SubmitScreenshot", mock.Anything, mock.Anything).Return(finalResponse("resp_2"), nil).Once()

		_, err := newTestLoop(provider, page, reporter, WithDomainGuard(guard)).Run(context.Background(),
			callResponse("resp_1", "call_1", types.Action{Kind: types.ActionScreenshot}))

		require.NoError(t, err)
		page.AssertExpectations(t)
	})

	t.Run("disallowed host stops the run", func(t *testing.T) {
		provider := &mockProvider{}
		page := &pagetest.MockPage{}
		reporter := &recordingReporter{}

		page.On("URL").Return("https://example.com/").Once()

		final, err := newTestLoop(provider, page, reporter, WithDomainGuard(guard)).Run(context.Background(),
			callResponse("resp_1", "call_1", types.Action{Kind: types.ActionScreenshot}))

		assert.Nil(t, final)
		assert.ErrorIs(t, err, ErrDomainNotAllowed)
		assert.Contains(t, err.Error(), "example.com")
		page.AssertNotCalled(t, "Screenshot")
		provider.AssertNotCalled(t, "SubmitScreenshot", mock.Anything, mock.Anything)
	})
}

func TestNewLoop_Defaults(t *testing.T) {
	loop := NewLoop(&mockProvider{}, &pagetest.MockPage{})

	assert.Equal(t, DefaultSettleDelay, loop.settleDelay)
	assert.True(t, loop.ackSafetyChecks)
	assert.NotNil(t, loop.dispatcher)
	assert.IsType(t, nopReporter{}, loop.reporter)
	assert.Zero(t, loop.Steps())
}
