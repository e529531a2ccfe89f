// Package mock provides a Dispatcher for testing and dry runs without a
// connected device.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devicelab-dev/adbflow/pkg/adb"
)

// Dispatch records one Send call.
type Dispatch struct {
	Intent  string
	Payload string
	At      time.Time
}

// Dispatcher is a mock implementation of adb.Dispatcher.
type Dispatcher struct {
	// FailOn makes dispatch N fail (1-indexed). 0 = never fail.
	FailOn int
	// SendDelay adds artificial latency per dispatch.
	SendDelay time.Duration
	// Echo prints each dispatch to stdout (dry-run mode).
	Echo bool

	mu    sync.Mutex
	calls []Dispatch
}

// Send records the dispatch and succeeds unless configured otherwise.
func (d *Dispatcher) Send(ctx context.Context, intent, payload string) adb.Result {
	if d.SendDelay > 0 {
		select {
		case <-time.After(d.SendDelay):
		case <-ctx.Done():
			return adb.Result{Success: false, Error: ctx.Err().Error()}
		}
	}

	d.mu.Lock()
	d.calls = append(d.calls, Dispatch{Intent: intent, Payload: payload, At: time.Now()})
	n := len(d.calls)
	d.mu.Unlock()

	if d.Echo {
		fmt.Printf("[dry-run] %s data=%q\n", intent, payload)
	}

	if d.FailOn > 0 && n == d.FailOn {
		return adb.Result{Success: false, Error: fmt.Sprintf("mock failure on dispatch %d", n)}
	}
	return adb.Result{Success: true, Output: fmt.Sprintf("Broadcast completed: result=0 (%d)", n)}
}

// Calls returns a copy of every recorded dispatch, in order.
func (d *Dispatcher) Calls() []Dispatch {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Dispatch, len(d.calls))
	copy(out, d.calls)
	return out
}
