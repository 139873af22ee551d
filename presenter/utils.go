package presenter

import (
	"fmt"

	"github.com/omni/deposit-monitor/entity"
)

var formats = map[string]string{
	"1":        "https://etherscan.io/tx/%s",
	"5":        "https://goerli.etherscan.io/tx/%s",
	"17000":    "https://holesky.etherscan.io/tx/%s",
	"11155111": "https://sepolia.etherscan.io/tx/%s",
	"100":      "https://gnosisscan.io/tx/%s",
}

func txLink(chainID string, deposit *entity.Deposit) string {
	if format, ok := formats[chainID]; ok {
		return fmt.Sprintf(format, deposit.TransactionHash)
	}
	return deposit.TransactionHash.String()
}

func depositToDepositInfo(chainID string, deposit *entity.Deposit) *DepositInfo {
	return &DepositInfo{
		Deposit: deposit,
		Link:    txLink(chainID, deposit),
	}
}
