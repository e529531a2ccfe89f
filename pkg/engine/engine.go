// Package engine runs a flow's commands in order, one at a time, with a
// cancellable delay between each.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/devicelab-dev/adbflow/pkg/adb"
	"github.com/devicelab-dev/adbflow/pkg/logger"
	"github.com/devicelab-dev/adbflow/pkg/model"
)

var (
	// ErrBusy is returned when Run is invoked for a flow while a different
	// flow is already running. The caller must stop the active flow first.
	ErrBusy = errors.New("another flow is already running")
	// ErrStopRequested is returned when Run is invoked for the flow that is
	// already running; the invocation is interpreted as a stop request and
	// the active run is cancelled.
	ErrStopRequested = errors.New("stop requested for running flow")
)

// CommandResult is the outcome of dispatching one command of a flow.
type CommandResult struct {
	Keyword string
	Intent  string
	Success bool
	Output  string
	Error   string
}

// Result is the outcome of a full run. Cancellation is a normal terminal
// state, not an error: a cancelled run returns a Result with Canceled set.
type Result struct {
	FlowID     string
	Dispatched int
	Canceled   bool
	Duration   time.Duration
	Commands   []CommandResult
}

// Callbacks report live progress. All are optional.
type Callbacks struct {
	OnCommandStart func(idx, total int, cmd model.Command)
	OnCommandDone  func(idx int, cmd model.Command, res CommandResult)
	OnFlowEnd      func(res Result)
}

// Engine owns the process-wide single running flow. Only one flow may run at
// a time; Run for the running flow's id is a stop request, Run for any other
// flow while busy is rejected.
type Engine struct {
	dispatcher adb.Dispatcher
	callbacks  Callbacks

	mu            sync.Mutex
	runningFlowID string
	cancel        context.CancelFunc
}

// New creates an engine dispatching through d.
func New(d adb.Dispatcher, cb Callbacks) *Engine {
	return &Engine{dispatcher: d, callbacks: cb}
}

// Running returns the id of the currently running flow, or "" when idle.
func (e *Engine) Running() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runningFlowID
}

// Stop cancels the running flow, if any, and reports whether one was
// running. The run winds down cooperatively: an in-flight dispatch is not
// interrupted, but no further command or delay follows it.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel == nil {
		return false
	}
	logger.Info("stopping flow %s", e.runningFlowID)
	e.cancel()
	return true
}

// Run executes the flow's commands strictly in order, sleeping flow.Delay
// milliseconds between commands. A dispatch error is logged and the flow
// proceeds to the next command. Run blocks until the run finishes, is
// cancelled through ctx, or is stopped via Stop / a second Run for the same
// flow id.
func (e *Engine) Run(ctx context.Context, flow model.Flow) (*Result, error) {
	e.mu.Lock()
	if e.runningFlowID == flow.ID {
		// Toggle semantics: running the active flow again stops it.
		e.cancel()
		e.mu.Unlock()
		return nil, ErrStopRequested
	}
	if e.runningFlowID != "" {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.runningFlowID = flow.ID
	e.cancel = cancel
	e.mu.Unlock()

	// Cleanup is unconditional, whatever path the run exits through.
	defer func() {
		cancel()
		e.mu.Lock()
		e.runningFlowID = ""
		e.cancel = nil
		e.mu.Unlock()
	}()

	logger.Info("starting flow %s (%d commands, delay %dms)", flow.Name, len(flow.Commands), flow.Delay)
	start := time.Now()
	res := &Result{FlowID: flow.ID}

	total := len(flow.Commands)
	for i, cmd := range flow.Commands {
		if runCtx.Err() != nil {
			res.Canceled = true
			break
		}

		if e.callbacks.OnCommandStart != nil {
			e.callbacks.OnCommandStart(i, total, cmd)
		}

		intent := adb.IntentFor(cmd.Type)
		r := e.dispatcher.Send(runCtx, intent, cmd.Value)
		cr := CommandResult{
			Keyword: cmd.Keyword,
			Intent:  intent,
			Success: r.Success,
			Output:  r.Output,
			Error:   r.Error,
		}
		res.Commands = append(res.Commands, cr)
		res.Dispatched++

		if e.callbacks.OnCommandDone != nil {
			e.callbacks.OnCommandDone(i, cmd, cr)
		}

		if !r.Success {
			// Best-effort sequence: a single command's failure does not
			// abort the flow unless cancellation is also pending.
			logger.Error("command %q failed: %s", cmd.Keyword, r.Error)
			if runCtx.Err() != nil {
				res.Canceled = true
				break
			}
		}

		if i < total-1 {
			if !sleep(runCtx, time.Duration(flow.Delay)*time.Millisecond) {
				res.Canceled = true
				break
			}
		}
	}

	res.Duration = time.Since(start)
	if res.Canceled {
		logger.Info("flow %s cancelled after %d of %d commands", flow.Name, res.Dispatched, total)
	} else {
		logger.Info("flow %s completed in %s", flow.Name, res.Duration)
	}

	if e.callbacks.OnFlowEnd != nil {
		e.callbacks.OnFlowEnd(*res)
	}
	return res, nil
}

// sleep blocks for d or until ctx is cancelled, reporting whether the full
// delay elapsed. Cancellation resolves the sleep early without an error.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
