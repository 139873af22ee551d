package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/omni/deposit-monitor/config"
	"github.com/omni/deposit-monitor/contract"
	"github.com/omni/deposit-monitor/db"
	"github.com/omni/deposit-monitor/ethclient"
	"github.com/omni/deposit-monitor/logging"
	"github.com/omni/deposit-monitor/monitor"
	"github.com/omni/deposit-monitor/monitor/alerts"
	"github.com/omni/deposit-monitor/notifier"
	"github.com/omni/deposit-monitor/presenter"
	"github.com/omni/deposit-monitor/repository"
)

func main() {
	logger := logging.New()

	cfg, err := config.ReadConfigFromFile(config.PathFromEnv())
	if err != nil {
		logger.WithError(err).Fatal("can't read config")
	}
	logger.SetLevel(cfg.LogLevel)

	dbConn, err := db.ConnectToDBAndMigrate(cfg.DBConfig)
	if err != nil {
		logger.WithError(err).Fatal("can't connect to database and apply migrations")
	}
	defer func() {
		if err2 := dbConn.Close(); err2 != nil {
			logger.WithError(err2).Error("can't close database connection")
		}
	}()

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		err2 := http.ListenAndServe(":2112", nil)
		if err2 != nil {
			logger.WithError(err2).Fatal("can't start listener for prometheus metrics")
		}
	}()

	client, err := ethclient.NewClient(cfg.Chain.RPC.Host, cfg.Chain.RPC.Timeout, cfg.Chain.ChainID)
	if err != nil {
		logger.WithError(err).Fatal("can't dial rpc client")
	}
	chainLogger := logger.WithFields(logrus.Fields{
		"chain_id": client.ChainID(),
		"address":  cfg.DepositContract,
	})

	var n monitor.Notifier
	if cfg.Telegram != nil {
		n = notifier.NewTelegram(chainLogger.WithField("service", "telegram"), cfg.Telegram)
	} else {
		chainLogger.Warn("telegram is not configured, deposit notifications are written to the log")
		n = notifier.NewLog(chainLogger.WithField("service", "notifier"))
	}

	repo := repository.NewRepo(dbConn)
	depositContract := contract.NewDepositContract(client, cfg.DepositContract)
	tracker := monitor.NewDepositTracker(chainLogger.WithField("service", "tracker"), cfg.Tracker, repo, client, depositContract, n)

	if cfg.Presenter != nil {
		pr := presenter.NewPresenter(logger.WithField("service", "presenter"), repo, client.ChainID(), cfg.DepositContract, tracker.IsSynced)
		go func() {
			err2 := pr.Serve(cfg.Presenter.Host)
			if err2 != nil {
				logger.WithError(err2).Fatal("can't serve presenter")
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	alertManager := alerts.NewAlertManager(chainLogger.WithField("service", "alert_manager"), repo.Deposits)
	go alertManager.Start(ctx, tracker.IsSynced)

	tracker.Start(ctx)
	logger.Warn("caught termination signal, gracefully terminated")
}
