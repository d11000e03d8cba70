package booking

import (
	"errors"
	"slices"
	"testing"

	"clinicbook/services/auth"
	"clinicbook/utils"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFlowHappyPath(t *testing.T) {
	f := newFlow(auth.OpCreateBooking, zap.NewNop())
	for _, s := range []State{StateAuthenticated, StateAuthorized, StateCommitted, StateResponded} {
		if err := f.Advance(s); err != nil {
			t.Fatalf("Advance(%s): %v", s, err)
		}
	}
	want := []State{StateReceived, StateAuthenticated, StateAuthorized, StateCommitted, StateResponded}
	if !slices.Equal(f.Path(), want) {
		t.Fatalf("Path()=%v, want %v", f.Path(), want)
	}
}

func TestFlowRejectsIllegalTransitions(t *testing.T) {
	cases := []struct {
		from []State
		next State
	}{
		{nil, StateAuthorized},
		{nil, StateResponded},
		{[]State{StateAuthenticated}, StateCommitted},
		{[]State{StateAuthenticated, StateAuthorized, StateComputed}, StateCommitted},
		{[]State{StateAuthenticated, StateAuthorized, StateComputed, StateResponded}, StateRejected},
	}
	for _, tc := range cases {
		f := newFlow(auth.OpListBookings, nil)
		for _, s := range tc.from {
			if err := f.Advance(s); err != nil {
				t.Fatalf("setup Advance(%s): %v", s, err)
			}
		}
		if err := f.Advance(tc.next); !utils.IsKind(err, utils.KindInternal) {
			t.Fatalf("Advance(%s) from %s=%v, want Internal", tc.next, f.State(), err)
		}
	}
}

func TestFlowRejectKeepsFirstOutcome(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	f := newFlow(auth.OpCancelBooking, zap.New(core))

	first := utils.Conflict("taken")
	if got := f.Reject(first); !errors.Is(got, first) {
		t.Fatalf("Reject returned %v", got)
	}
	f.Reject(utils.Internal("late", nil))
	if f.State() != StateRejected || len(f.Path()) != 2 {
		t.Fatalf("state=%s path=%v", f.State(), f.Path())
	}
	if logs.Len() != 1 || logs.All()[0].Level != zap.InfoLevel {
		t.Fatalf("logged %d entries, want one info entry", logs.Len())
	}
}
