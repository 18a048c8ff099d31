// Package computer replays actions suggested by a computer-use model on a live
// page.
//
// The Dispatcher maps each action kind to one input-simulation call on a Page.
// It never returns an error: a failing call is logged and the caller moves on
// to the next screenshot, which shows the model what actually happened.
package computer

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/cua-browser/pkg/logging"
	"github.com/entrhq/cua-browser/pkg/types"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("computer")
	if err != nil {
		debugLog.Warnf("Failed to initialize computer logger, using stderr fallback: %v", err)
	}
}

// DefaultWaitDuration is how long a "wait" action pauses.
const DefaultWaitDuration = 2 * time.Second

// Page is the input-simulation surface the dispatcher drives. Coordinates are
// viewport pixels.
type Page interface {
	Click(x, y float64, button string) error
	MoveMouse(x, y float64) error
	ScrollBy(dx, dy int64) error
	PressKey(key string) error
	TypeText(text string) error
}

// Observer is notified about actions that did not run cleanly.
type Observer interface {
	ActionFailed(action types.Action, err error)
	UnknownAction(action types.Action)
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Dispatcher performs model actions on a Page.
type Dispatcher struct {
	wait     time.Duration
	sleep    SleepFunc
	observer Observer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWaitDuration sets the pause used for "wait" actions.
func WithWaitDuration(d time.Duration) Option {
	return func(disp *Dispatcher) {
		disp.wait = d
	}
}

// WithSleeper replaces the sleep implementation, mainly for tests.
func WithSleeper(sleep SleepFunc) Option {
	return func(disp *Dispatcher) {
		disp.sleep = sleep
	}
}

// WithObserver registers an observer for failed and unknown actions.
func WithObserver(o Observer) Option {
	return func(disp *Dispatcher) {
		disp.observer = o
	}
}

// NewDispatcher creates a dispatcher with a 2 second wait action.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		wait:  DefaultWaitDuration,
		sleep: Sleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch performs action on page. Errors and panics from the page are
// logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, page Page, action types.Action) {
	defer func() {
		if r := recover(); r != nil {
			d.fail(action, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := d.perform(ctx, page, action); err != nil {
		d.fail(action, err)
	}
}

func (d *Dispatcher) perform(ctx context.Context, page Page, action types.Action) error {
	switch action.Kind {
	case types.ActionClick:
		button := action.Button
		if button != types.ButtonLeft && button != types.ButtonRight {
			button = types.ButtonLeft
		}
		debugLog.Infof("click at (%d, %d) with button %q", action.X, action.Y, button)
		return page.Click(float64(action.X), float64(action.Y), button)

	case types.ActionScroll:
		debugLog.Infof("scroll at (%d, %d) by (x=%d, y=%d)", action.X, action.Y, action.ScrollX, action.ScrollY)
		if err := page.MoveMouse(float64(action.X), float64(action.Y)); err != nil {
			return err
		}
		return page.ScrollBy(action.ScrollX, action.ScrollY)

	case types.ActionKeypress:
		for _, key := range action.Keys {
			debugLog.Infof("keypress %q", key)
			if err := page.PressKey(KeyName(key)); err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
		}
		return nil

	case types.ActionType:
		debugLog.Infof("type text %q", action.Text)
		return page.TypeText(action.Text)

	case types.ActionWait:
		debugLog.Infof("wait %s", d.wait)
		return d.sleep(ctx, d.wait)

	case types.ActionScreenshot:
		// The loop captures a screenshot after every action anyway.
		debugLog.Infof("screenshot requested")
		return nil

	default:
		debugLog.Warnf("unrecognized action: %+v", action)
		if d.observer != nil {
			d.observer.UnknownAction(action)
		}
		return nil
	}
}

func (d *Dispatcher) fail(action types.Action, err error) {
	debugLog.Errorf("error executing action %+v: %v", action, err)
	if d.observer != nil {
		d.observer.ActionFailed(action, err)
	}
}

// Sleep blocks for d or until ctx is canceled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
