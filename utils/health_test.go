package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunHealthChecks(t *testing.T) {
	probes := []HealthProbe{
		{Name: "mongo", Check: func(context.Context) error { return nil }},
		{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
		{Name: "slow", Check: func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }},
	}
	status := RunHealthChecks(context.Background(), probes, 20*time.Millisecond)

	want := map[string]bool{"mongo": true, "redis": false, "slow": false}
	for name, ok := range want {
		if status.Checks[name] != ok {
			t.Fatalf("Checks[%q]=%v, want %v", name, status.Checks[name], ok)
		}
	}
	if got := GetHealthStatus(); got.CheckedAt.IsZero() || len(got.Checks) != 3 {
		t.Fatalf("GetHealthStatus()=%+v, want stored snapshot", got)
	}
}
