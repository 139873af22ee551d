package notifier

import (
	"fmt"

	"github.com/omni/deposit-monitor/entity"
)

const weiDecimals = 18

// FormatDeposit renders the human readable message, the fee is scaled from wei to ETH.
func FormatDeposit(deposit *entity.Deposit) string {
	return fmt.Sprintf("New ETH deposit detected!\n\nBlock: %d\nFee: %s ETH\nTransaction: %s",
		deposit.BlockNumber,
		deposit.Fee.Shift(-weiDecimals).String(),
		deposit.TransactionHash.Hex(),
	)
}
