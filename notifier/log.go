package notifier

import (
	"context"

	"github.com/omni/deposit-monitor/entity"
	"github.com/omni/deposit-monitor/logging"
)

// Log is used when no notification channel is configured.
type Log struct {
	logger logging.Logger
}

func NewLog(logger logging.Logger) *Log {
	return &Log{logger: logger}
}

func (n *Log) Notify(_ context.Context, deposit *entity.Deposit) error {
	n.logger.WithField("message", FormatDeposit(deposit)).Info("new deposit notification")
	ObserveNotification("log", nil)
	return nil
}
