package console

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/cua-browser/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name   string
		want   Level
		wantOK bool
	}{
		{"quiet", LevelQuiet, true},
		{"", LevelNormal, true},
		{"normal", LevelNormal, true},
		{"VERBOSE", LevelVerbose, true},
		{"debug", LevelDebug, true},
		{"loud", LevelNormal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLevel(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestReporter_Action(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporterTo(&buf, LevelNormal)

	r.Action(1, types.Action{Kind: types.ActionClick, X: 5, Y: 6, Button: "left"})
	r.ActionFailed(types.Action{Kind: types.ActionType, Text: "hi"}, errors.New("detached"))
	r.UnknownAction(types.Action{Kind: "drag"})

	out := buf.String()
	assert.Contains(t, out, "[1] Action: click at (5, 6) with left button")
	assert.Contains(t, out, `executing type "hi": detached`)
	assert.Contains(t, out, `unrecognized action "drag" ignored`)
}

func TestReporter_QuietSuppressesProgress(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporterTo(&buf, LevelQuiet)

	r.Header("Starting")
	r.Action(1, types.Action{Kind: types.ActionWait})
	r.Infof("navigating")
	r.ModelOutput("Initial response", &types.Response{Output: []types.OutputItem{{Type: types.OutputMessage, Text: "hello"}}})
	assert.Empty(t, buf.String())

	r.Warningf("careful")
	assert.Contains(t, buf.String(), "careful")
}

func TestReporter_ModelOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporterTo(&buf, LevelVerbose)

	r.ModelOutput("Initial response", &types.Response{
		ID:     "resp_1",
		Status: "completed",
		Output: []types.OutputItem{
			{Type: types.OutputReasoning, Text: "Open the news tab"},
			{Type: types.OutputComputerCall, Call: &types.ComputerCall{CallID: "call_1"}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Initial response (response resp_1, status completed)")
	assert.Contains(t, out, "reasoning: Open the news tab")
	assert.NotContains(t, out, "computer_call:")
}

func TestReporter_SafetyChecksAndSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporterTo(&buf, LevelNormal)

	r.SafetyChecks([]types.SafetyCheck{{ID: "sc_1", Code: "malicious_instructions", Message: "odd text"}}, true)
	r.Summary(3, &types.Response{ID: "resp_9", Output: []types.OutputItem{{Type: types.OutputMessage, Text: "All done"}}})

	out := buf.String()
	assert.Contains(t, out, "safety check sc_1 [malicious_instructions]: odd text (acknowledged)")
	assert.Contains(t, out, "RUN SUMMARY")
	assert.Contains(t, out, "Actions: 3")
	assert.Contains(t, out, "Final response: resp_9")
	assert.Contains(t, out, "All done")
}
