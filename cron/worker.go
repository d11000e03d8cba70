package cron

import (
	"context"
	"time"

	"clinicbook/utils"

	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const probeTimeout = 2 * time.Second

// HealthWorker periodically probes storage dependencies and stores the snapshot
// served by /health.
type HealthWorker struct {
	scheduler *robfig.Cron
	probes    []utils.HealthProbe
	logger    *zap.Logger
}

// InitHealthWorker schedules the probes on spec (standard cron syntax or
// descriptors such as "@every 60s"), runs them once immediately and starts the
// scheduler.
func InitHealthWorker(spec string, probes []utils.HealthProbe, logger *zap.Logger) (*HealthWorker, error) {
	w := &HealthWorker{scheduler: robfig.New(), probes: probes, logger: logger}
	if _, err := w.scheduler.AddFunc(spec, w.run); err != nil {
		return nil, err
	}
	w.run()
	w.scheduler.Start()
	return w, nil
}

func (w *HealthWorker) run() {
	status := utils.RunHealthChecks(context.Background(), w.probes, probeTimeout)
	for name, ok := range status.Checks {
		if !ok {
			w.logger.Warn("dependency unhealthy", zap.String("dependency", name))
		}
	}
}

// Stop halts scheduling and waits for a running probe round to finish.
func (w *HealthWorker) Stop() {
	<-w.scheduler.Stop().Done()
}
