package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/omni/deposit-monitor/config"
	"github.com/omni/deposit-monitor/db"
	"github.com/omni/deposit-monitor/logging"
	"github.com/omni/deposit-monitor/repository"
)

var columns = []string{"id", "block_number", "block_timestamp", "fee", "transaction_hash", "pubkey", "created_at"}

func main() {
	logger := logging.New()

	cfg, err := config.ReadConfigFromFile(config.PathFromEnv())
	if err != nil {
		logger.WithError(err).Fatal("can't read config")
	}
	logger.SetLevel(cfg.LogLevel)

	dbConn, err := db.NewDB(cfg.DBConfig)
	if err != nil {
		logger.WithError(err).Fatal("can't connect to database")
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo := repository.NewRepo(dbConn)
	deposits, err := repo.Deposits.FindAll(ctx)
	if err != nil {
		logger.WithError(err).Error("can't read deposits")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	for _, d := range deposits {
		createdAt := ""
		if d.CreatedAt != nil {
			createdAt = d.CreatedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t%s\t%s\n",
			d.ID, d.BlockNumber, d.BlockTimestamp, d.Fee, d.TransactionHash, d.Pubkey, createdAt)
	}
	if err = w.Flush(); err != nil {
		logger.WithError(err).Error("can't write deposits")
		return
	}
	logger.WithField("count", len(deposits)).Info("listed stored deposits")
}
