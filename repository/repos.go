package repository

import (
	"github.com/omni/deposit-monitor/db"
	"github.com/omni/deposit-monitor/entity"
	"github.com/omni/deposit-monitor/repository/postgres"
)

type Repo struct {
	Deposits    entity.DepositsRepo
	ScanCursors entity.ScanCursorsRepo
}

func NewRepo(db *db.DB) *Repo {
	return &Repo{
		Deposits:    postgres.NewDepositsRepo("deposits", db),
		ScanCursors: postgres.NewScanCursorsRepo("scan_cursors", db),
	}
}
