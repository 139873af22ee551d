package depositabi

//nolint:golint
import (
	_ "embed"

	"github.com/omni/deposit-monitor/contract/abi"
)

//go:embed deposit_contract.json
var depositContractJSONABI string

const (
	DepositMethod         = "deposit"
	GetDepositCountMethod = "get_deposit_count"
	GetDepositRootMethod  = "get_deposit_root"

	PubkeyArgument = "pubkey"

	// PubkeyLength is the size of a BLS12-381 validator public key.
	PubkeyLength = 48
)

var DepositContractABI = abi.MustReadABI(depositContractJSONABI)
