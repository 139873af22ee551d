package contract

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"github.com/omni/deposit-monitor/contract/depositabi"
	"github.com/omni/deposit-monitor/entity"
	"github.com/omni/deposit-monitor/ethclient"
)

var (
	ErrMalformedInput  = errors.New("malformed deposit call data")
	ErrMismatchedBlock = errors.New("transaction does not belong to the block")
)

type DepositContract struct {
	*Contract
}

func NewDepositContract(client ethclient.Client, addr common.Address) *DepositContract {
	return &DepositContract{NewContract(client, addr, depositabi.DepositContractABI)}
}

// IsDeposit reports whether tx is addressed to the deposit contract.
// Contract creations have no destination and never match.
func (c *DepositContract) IsDeposit(tx *types.Transaction) bool {
	to := tx.To()
	return to != nil && *to == c.address
}

func (c *DepositContract) FilterDeposits(txs types.Transactions) types.Transactions {
	var res types.Transactions
	for _, tx := range txs {
		if c.IsDeposit(tx) {
			res = append(res, tx)
		}
	}
	return res
}

// DecodeDeposit builds a deposit record out of a matching transaction.
// Call data that does not carry a complete deposit(...) call is rejected with ErrMalformedInput,
// the pubkey is never truncated or padded.
func (c *DepositContract) DecodeDeposit(tx *types.Transaction, block *types.Block) (*entity.Deposit, error) {
	if block.Transaction(tx.Hash()) == nil {
		return nil, fmt.Errorf("tx %s, block %d: %w", tx.Hash(), block.NumberU64(), ErrMismatchedBlock)
	}
	pubkey, err := c.extractPubkey(tx.Data())
	if err != nil {
		return nil, fmt.Errorf("tx %s: %w", tx.Hash(), err)
	}
	return &entity.Deposit{
		BlockNumber:     uint(block.NumberU64()),
		BlockTimestamp:  block.Time(),
		Fee:             decimal.NewFromBigInt(DeclaredFee(tx), 0),
		TransactionHash: tx.Hash(),
		Pubkey:          pubkey,
	}, nil
}

func (c *DepositContract) extractPubkey(data []byte) (entity.HexBytes, error) {
	method, args, err := c.ParseCall(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedInput, err)
	}
	if method != depositabi.DepositMethod {
		return nil, fmt.Errorf("%w: unexpected method %s", ErrMalformedInput, method)
	}
	pubkey, ok := args[depositabi.PubkeyArgument].([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: missing pubkey argument", ErrMalformedInput)
	}
	if len(pubkey) != depositabi.PubkeyLength {
		return nil, fmt.Errorf("%w: pubkey is %d bytes long, expected %d", ErrMalformedInput, len(pubkey), depositabi.PubkeyLength)
	}
	return pubkey, nil
}

// DepositCount reads get_deposit_count(), which is encoded as 8 little-endian bytes.
func (c *DepositContract) DepositCount(ctx context.Context) (uint64, error) {
	res, err := c.Call(ctx, depositabi.GetDepositCountMethod)
	if err != nil {
		return 0, fmt.Errorf("cannot obtain deposit count: %w", err)
	}
	raw, ok := res[0].([]byte)
	if !ok || len(raw) != 8 {
		return 0, fmt.Errorf("unexpected get_deposit_count result %v", res[0])
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// DeclaredFee is the gas limit multiplied by the declared gas price (fee cap for dynamic fee txs).
func DeclaredFee(tx *types.Transaction) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(tx.Gas()), tx.GasPrice())
}

// ReceiptFee is the gas actually used multiplied by the price actually paid.
func ReceiptFee(tx *types.Transaction, receipt *types.Receipt, baseFee *big.Int) (*big.Int, error) {
	if receipt.TxHash != tx.Hash() {
		return nil, fmt.Errorf("receipt %s does not belong to tx %s", receipt.TxHash, tx.Hash())
	}
	price, err := tx.EffectiveGasTip(baseFee)
	if err != nil {
		return nil, fmt.Errorf("can't compute effective gas price: %w", err)
	}
	if baseFee != nil {
		price.Add(price, baseFee)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), price), nil
}
