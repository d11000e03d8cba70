package booking

import (
	"fmt"
	"slices"
	"time"

	"clinicbook/services/auth"
	"clinicbook/utils"

	"go.uber.org/zap"
)

// State is a step of a single request's lifecycle.
type State string

const (
	StateReceived      State = "Received"
	StateAuthenticated State = "Authenticated"
	StateAuthorized    State = "Authorized"
	StateComputed      State = "Computed"
	StateCommitted     State = "Committed"
	StateResponded     State = "Responded"
	StateRejected      State = "Rejected"
)

var transitions = map[State][]State{
	StateReceived:      {StateAuthenticated, StateRejected},
	StateAuthenticated: {StateAuthorized, StateRejected},
	StateAuthorized:    {StateComputed, StateCommitted, StateRejected},
	StateComputed:      {StateResponded, StateRejected},
	StateCommitted:     {StateResponded, StateRejected},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateResponded || s == StateRejected
}

// Flow tracks one request through the state machine.
type Flow struct {
	Operation auth.Operation
	TenantID  string
	state     State
	path      []State
	started   time.Time
	reason    error
	logger    *zap.Logger
}

func newFlow(op auth.Operation, logger *zap.Logger) *Flow {
	return &Flow{Operation: op, state: StateReceived, path: []State{StateReceived}, started: time.Now(), logger: logger}
}

func (f *Flow) State() State { return f.state }

// Path lists every state visited, in order.
func (f *Flow) Path() []State { return slices.Clone(f.path) }

// Advance moves to next. An illegal transition is a programming error and is
// reported as Internal.
func (f *Flow) Advance(next State) error {
	if !slices.Contains(transitions[f.state], next) {
		return utils.Internal("illegal request state transition", fmt.Errorf("%s -> %s", f.state, next))
	}
	f.state = next
	f.path = append(f.path, next)
	if next == StateResponded {
		f.log()
	}
	return nil
}

// Reject ends the flow with err and returns it, so callers can `return nil, flow.Reject(err)`.
// Rejecting an already terminal flow keeps its first outcome.
func (f *Flow) Reject(err error) error {
	if f.state.Terminal() {
		return err
	}
	f.state = StateRejected
	f.path = append(f.path, StateRejected)
	f.reason = err
	f.log()
	return err
}

func (f *Flow) log() {
	if f.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("operation", string(f.Operation)),
		zap.String("tenant_id", f.TenantID),
		zap.String("state", string(f.state)),
		zap.Duration("elapsed", time.Since(f.started)),
	}
	if f.reason == nil {
		f.logger.Debug("booking request completed", fields...)
		return
	}
	fields = append(fields, zap.String("kind", utils.KindOf(f.reason).String()), zap.Error(f.reason))
	switch utils.KindOf(f.reason) {
	case utils.KindInternal:
		f.logger.Error("booking request failed", fields...)
	case utils.KindUnavailable:
		f.logger.Warn("booking request failed", fields...)
	default:
		// conflicts and rejected input are ordinary outcomes
		f.logger.Info("booking request rejected", fields...)
	}
}
