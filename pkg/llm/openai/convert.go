package openai

import (
	"strings"

	"github.com/openai/openai-go/responses"

	"github.com/entrhq/cua-browser/pkg/types"
)

// convertResponse maps an SDK response onto the domain response.
func convertResponse(resp *responses.Response) *types.Response {
	if resp == nil {
		return &types.Response{}
	}

	out := &types.Response{
		ID:     resp.ID,
		Status: string(resp.Status),
		Output: make([]types.OutputItem, 0, len(resp.Output)),
	}
	for _, item := range resp.Output {
		out.Output = append(out.Output, convertOutputItem(item))
	}
	return out
}

func convertOutputItem(item responses.ResponseOutputItemUnion) types.OutputItem {
	converted := types.OutputItem{
		Type: types.OutputItemType(item.Type),
		ID:   item.ID,
	}

	switch converted.Type {
	case types.OutputComputerCall:
		converted.Call = &types.ComputerCall{
			ID:                  item.ID,
			CallID:              item.CallID,
			Action:              convertAction(item.Action),
			PendingSafetyChecks: convertSafetyChecks(item.PendingSafetyChecks),
		}
	case types.OutputMessage:
		converted.Text = messageText(item.Content)
	case types.OutputReasoning:
		converted.Text = reasoningText(item.Summary)
	}

	return converted
}

func convertAction(action responses.ResponseOutputItemUnionAction) types.Action {
	return types.Action{
		Kind:    types.ActionKind(action.Type),
		X:       action.X,
		Y:       action.Y,
		Button:  action.Button,
		ScrollX: action.ScrollX,
		ScrollY: action.ScrollY,
		Keys:    action.Keys,
		Text:    action.Text,
	}
}

func convertSafetyChecks(checks []responses.ResponseComputerToolCallPendingSafetyCheck) []types.SafetyCheck {
	if len(checks) == 0 {
		return nil
	}
	out := make([]types.SafetyCheck, 0, len(checks))
	for _, check := range checks {
		out = append(out, types.SafetyCheck{
			ID:      check.ID,
			Code:    check.Code,
			Message: check.Message,
		})
	}
	return out
}

func messageText(content []responses.ResponseOutputMessageContentUnion) string {
	var parts []string
	for _, c := range content {
		switch {
		case c.Text != "":
			parts = append(parts, c.Text)
		case c.Refusal != "":
			parts = append(parts, "refusal: "+c.Refusal)
		}
	}
	return strings.Join(parts, "\n")
}

func reasoningText(summary []responses.ResponseReasoningItemSummary) string {
	var parts []string
	for _, s := range summary {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, "\n")
}
