package types

import (
	"fmt"
	"strings"
)

// ActionKind identifies the UI operation a computer-use model asks for.
type ActionKind string

const (
	ActionClick      ActionKind = "click"      // ActionClick presses a mouse button at a viewport coordinate.
	ActionScroll     ActionKind = "scroll"     // ActionScroll scrolls the window by an offset from a pointer position.
	ActionKeypress   ActionKind = "keypress"   // ActionKeypress presses one or more keys in order.
	ActionType       ActionKind = "type"       // ActionType types a string into the focused element.
	ActionWait       ActionKind = "wait"       // ActionWait pauses before the next screenshot.
	ActionScreenshot ActionKind = "screenshot" // ActionScreenshot only asks for a fresh screenshot.
)

// Mouse buttons accepted by the dispatcher. Anything else is coerced to left.
const (
	ButtonLeft  = "left"
	ButtonRight = "right"
)

// Action is a single model-suggested UI operation. Only the fields relevant to
// Kind are populated. Kinds outside the known set are kept verbatim so they can
// be logged.
type Action struct {
	Kind    ActionKind
	X       int64
	Y       int64
	Button  string
	ScrollX int64
	ScrollY int64
	Keys    []string
	Text    string
}

// Known reports whether the dispatcher has a handler for the action's kind.
func (a Action) Known() bool {
	switch a.Kind {
	case ActionClick, ActionScroll, ActionKeypress, ActionType, ActionWait, ActionScreenshot:
		return true
	default:
		return false
	}
}

// String renders the action for logs and console output.
func (a Action) String() string {
	switch a.Kind {
	case ActionClick:
		return fmt.Sprintf("click at (%d, %d) with %s button", a.X, a.Y, a.Button)
	case ActionScroll:
		return fmt.Sprintf("scroll at (%d, %d) by (x=%d, y=%d)", a.X, a.Y, a.ScrollX, a.ScrollY)
	case ActionKeypress:
		return fmt.Sprintf("keypress %s", strings.Join(a.Keys, "+"))
	case ActionType:
		return fmt.Sprintf("type %q", a.Text)
	case ActionWait:
		return "wait"
	case ActionScreenshot:
		return "screenshot"
	default:
		return fmt.Sprintf("unrecognized action %q", string(a.Kind))
	}
}
