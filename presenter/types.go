package presenter

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/omni/deposit-monitor/entity"
)

type DepositInfo struct {
	*entity.Deposit
	Link string `json:"link"`
}

type DepositsResult struct {
	Count    int            `json:"count"`
	Deposits []*DepositInfo `json:"deposits"`
}

type CursorResult struct {
	ChainID            string         `json:"chainId"`
	Address            common.Address `json:"address"`
	LastProcessedBlock uint           `json:"lastProcessedBlock"`
	IsSynced           bool           `json:"isSynced"`
}
