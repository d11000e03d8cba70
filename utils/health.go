package utils

import (
	"context"
	"sync"
	"time"
)

// HealthProbe pings one external dependency.
type HealthProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Checks    map[string]bool `json:"checks"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	out := HealthStatus{CheckedAt: currentHealth.CheckedAt, Checks: make(map[string]bool, len(currentHealth.Checks))}
	for k, v := range currentHealth.Checks {
		out.Checks[k] = v
	}
	return out
}

// RunHealthChecks probes every dependency with its own timeout and stores the snapshot.
func RunHealthChecks(ctx context.Context, probes []HealthProbe, timeout time.Duration) HealthStatus {
	checks := make(map[string]bool, len(probes))
	for _, p := range probes {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		checks[p.Name] = p.Check(pctx) == nil
		cancel()
	}

	mu.Lock()
	currentHealth = HealthStatus{Checks: checks, CheckedAt: time.Now()}
	mu.Unlock()
	return GetHealthStatus()
}
