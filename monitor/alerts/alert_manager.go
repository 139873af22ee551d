package alerts

import (
	"context"
	"time"

	"github.com/omni/deposit-monitor/entity"
	"github.com/omni/deposit-monitor/logging"
)

type AlertManager struct {
	logger logging.Logger
	jobs   map[string]*Job
}

func NewAlertManager(logger logging.Logger, deposits entity.DepositsRepo) *AlertManager {
	provider := NewDepositsAlertsProvider(deposits)
	jobs := map[string]*Job{
		"duplicate_deposit": {
			Interval: time.Minute,
			Timeout:  time.Second * 10,
			Func:     provider.FindDuplicateDeposits,
			Metric:   AlertDuplicateDeposit,
		},
	}

	return &AlertManager{
		logger: logger,
		jobs:   jobs,
	}
}

func (m *AlertManager) Start(ctx context.Context, isSynced func() bool) {
	t := time.NewTicker(10 * time.Second)
	for !isSynced() {
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
			m.logger.Debug("waiting for deposit tracker to be synchronized")
		}
	}
	t.Stop()
	m.logger.Info("deposit tracker is synced, starting alert manager jobs")

	for name, job := range m.jobs {
		job.logger = m.logger.WithField("alert_job", name)
		go job.Start(ctx, isSynced)
	}
}
