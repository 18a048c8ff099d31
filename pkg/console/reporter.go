// Package console prints human-readable progress of a computer-use run to the
// terminal. Debug detail goes to the log file (see package logging); this is
// what the person watching the browser reads.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/cua-browser/pkg/types"
)

// Level represents the console verbosity level
type Level int

const (
	// LevelQuiet shows only warnings, errors and the final summary
	LevelQuiet Level = iota
	// LevelNormal shows each action and the model's text (default)
	LevelNormal
	// LevelVerbose also shows request/response identifiers
	LevelVerbose
	// LevelDebug shows everything
	LevelDebug
)

// ParseLevel converts a verbosity name to a Level. ok is false for unknown names.
func ParseLevel(name string) (level Level, ok bool) {
	switch strings.ToLower(name) {
	case "quiet":
		return LevelQuiet, true
	case "", "normal":
		return LevelNormal, true
	case "verbose":
		return LevelVerbose, true
	case "debug":
		return LevelDebug, true
	default:
		return LevelNormal, false
	}
}

var (
	salmonPink  = lipgloss.Color("#FFB3BA")
	mintGreen   = lipgloss.Color("#A8E6CF")
	amber       = lipgloss.Color("#FCD34D")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
)

type styles struct {
	header  lipgloss.Style
	step    lipgloss.Style
	model   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:  r.NewStyle().Foreground(brightWhite).Bold(true),
		step:    r.NewStyle().Foreground(salmonPink).Bold(true),
		model:   r.NewStyle().Foreground(brightWhite).Italic(true),
		success: r.NewStyle().Foreground(mintGreen).Bold(true),
		warning: r.NewStyle().Foreground(amber),
		err:     r.NewStyle().Foreground(salmonPink).Bold(true),
		muted:   r.NewStyle().Foreground(mutedGray),
	}
}

// Reporter writes leveled, styled progress lines.
type Reporter struct {
	level     Level
	writer    io.Writer
	styles    styles
	startTime time.Time
}

// NewReporter creates a reporter writing to stdout.
func NewReporter(level Level) *Reporter {
	return NewReporterTo(os.Stdout, level)
}

// NewReporterTo creates a reporter writing to w. Colors are used only when w
// is a terminal.
func NewReporterTo(w io.Writer, level Level) *Reporter {
	return &Reporter{
		level:     level,
		writer:    w,
		styles:    newStyles(lipgloss.NewRenderer(w)),
		startTime: time.Now(),
	}
}

func (r *Reporter) println(style lipgloss.Style, text string) {
	fmt.Fprintln(r.writer, style.Render(text))
}

// Header prints a prominent header message
func (r *Reporter) Header(message string) {
	if r.level >= LevelNormal {
		rule := strings.Repeat("=", 70)
		fmt.Fprintln(r.writer)
		r.println(r.styles.header, rule)
		r.println(r.styles.header, "  "+message)
		r.println(r.styles.header, rule)
	}
}

// Infof prints an informational message
func (r *Reporter) Infof(format string, args ...interface{}) {
	if r.level >= LevelNormal {
		r.println(r.styles.muted, fmt.Sprintf(format, args...))
	}
}

// Successf prints a success message with checkmark
func (r *Reporter) Successf(format string, args ...interface{}) {
	if r.level >= LevelNormal {
		r.println(r.styles.success, "✓ "+fmt.Sprintf(format, args...))
	}
}

// Warningf prints a warning message
func (r *Reporter) Warningf(format string, args ...interface{}) {
	if r.level >= LevelQuiet {
		r.println(r.styles.warning, "⚠ Warning: "+fmt.Sprintf(format, args...))
	}
}

// Errorf prints an error message
func (r *Reporter) Errorf(format string, args ...interface{}) {
	if r.level >= LevelQuiet {
		r.println(r.styles.err, "✗ Error: "+fmt.Sprintf(format, args...))
	}
}

// Verbosef prints detailed information (only in verbose mode)
func (r *Reporter) Verbosef(format string, args ...interface{}) {
	if r.level >= LevelVerbose {
		r.println(r.styles.muted, "→ "+fmt.Sprintf(format, args...))
	}
}

// Debugf prints debug information (only in debug mode)
func (r *Reporter) Debugf(format string, args ...interface{}) {
	if r.level >= LevelDebug {
		r.println(r.styles.muted, "[DEBUG] "+fmt.Sprintf(format, args...))
	}
}

// Action announces the action about to be replayed.
func (r *Reporter) Action(step int, action types.Action) {
	if r.level >= LevelNormal {
		r.println(r.styles.step, fmt.Sprintf("[%d] Action: %s", step, action))
	}
}

// ActionFailed reports an action whose simulation failed. The run continues.
func (r *Reporter) ActionFailed(action types.Action, err error) {
	r.Errorf("executing %s: %v", action, err)
}

// UnknownAction reports an action kind that has no handler.
func (r *Reporter) UnknownAction(action types.Action) {
	r.Warningf("%s ignored", action)
}

// SafetyChecks lists pending safety checks attached to a computer call.
func (r *Reporter) SafetyChecks(checks []types.SafetyCheck, acknowledged bool) {
	for _, check := range checks {
		suffix := ""
		if acknowledged {
			suffix = " (acknowledged)"
		}
		r.Warningf("safety check %s [%s]: %s%s", check.ID, check.Code, check.Message, suffix)
	}
}

// ModelOutput prints the text the model produced alongside its actions.
func (r *Reporter) ModelOutput(title string, resp *types.Response) {
	if r.level < LevelNormal || resp == nil {
		return
	}
	r.Verbosef("%s (response %s, status %s)", title, resp.ID, resp.Status)
	for _, item := range resp.Output {
		if item.Text == "" {
			continue
		}
		label := string(item.Type)
		r.println(r.styles.model, fmt.Sprintf("  %s: %s", label, item.Text))
	}
}

// Summary prints the final outcome of the run.
func (r *Reporter) Summary(steps int, final *types.Response) {
	if r.level < LevelQuiet {
		return
	}
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(r.writer)
	r.println(r.styles.header, rule)
	r.println(r.styles.header, "  RUN SUMMARY")
	r.println(r.styles.header, rule)
	fmt.Fprintf(r.writer, "  Actions: %d\n", steps)
	fmt.Fprintf(r.writer, "  Duration: %s\n", time.Since(r.startTime).Round(time.Second))
	if final != nil {
		fmt.Fprintf(r.writer, "  Final response: %s\n", final.ID)
		if text := final.Text(); text != "" {
			fmt.Fprintln(r.writer)
			r.println(r.styles.model, text)
		}
	}
	r.println(r.styles.header, rule)
}
