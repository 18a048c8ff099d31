package types

import "strings"

// OutputItemType is the type tag of a response output entry.
type OutputItemType string

const (
	OutputComputerCall OutputItemType = "computer_call" // OutputComputerCall is an actionable item carrying an Action.
	OutputMessage      OutputItemType = "message"       // OutputMessage is assistant text.
	OutputReasoning    OutputItemType = "reasoning"     // OutputReasoning carries a reasoning summary.
)

// SafetyCheck is a pending safety check attached to a computer call.
type SafetyCheck struct {
	ID      string
	Code    string
	Message string
}

// ComputerCall is an actionable item: one action the model wants performed,
// answered by a screenshot sent back under CallID.
type ComputerCall struct {
	ID                  string
	CallID              string
	Action              Action
	PendingSafetyChecks []SafetyCheck
}

// OutputItem is one entry in a response's output list.
type OutputItem struct {
	Type OutputItemType
	ID   string

	// Text is the message text or reasoning summary, if any.
	Text string

	// Call is set only when Type is OutputComputerCall.
	Call *ComputerCall
}

// Response is one reply from the computer-use model. ID chains the next
// request to this one.
type Response struct {
	ID     string
	Status string
	Output []OutputItem
}

// ComputerCalls returns the actionable items in output order.
func (r *Response) ComputerCalls() []*ComputerCall {
	if r == nil {
		return nil
	}
	var calls []*ComputerCall
	for _, item := range r.Output {
		if item.Type == OutputComputerCall && item.Call != nil {
			calls = append(calls, item.Call)
		}
	}
	return calls
}

// NextCall returns the first actionable item, or nil when the model has
// stopped issuing actions.
func (r *Response) NextCall() *ComputerCall {
	calls := r.ComputerCalls()
	if len(calls) == 0 {
		return nil
	}
	return calls[0]
}

// Text joins the non-empty text of all output items.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var parts []string
	for _, item := range r.Output {
		if item.Text != "" {
			parts = append(parts, item.Text)
		}
	}
	return strings.Join(parts, "\n")
}
