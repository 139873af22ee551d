package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type Deposit struct {
	ID              uint            `db:"id" json:"-"`
	BlockNumber     uint            `db:"block_number" json:"blockNumber"`
	BlockTimestamp  uint64          `db:"block_timestamp" json:"blockTimestamp"`
	Fee             decimal.Decimal `db:"fee" json:"fee"`
	TransactionHash common.Hash     `db:"transaction_hash" json:"hash"`
	Pubkey          HexBytes        `db:"pubkey" json:"pubkey"`
	CreatedAt       *time.Time      `db:"created_at" json:"-"`
}

type DuplicateDeposit struct {
	TransactionHash common.Hash `db:"transaction_hash"`
	BlockNumber     uint        `db:"block_number"`
	Count           uint        `db:"count"`
}

// DepositsFilter narrows a deposits lookup, nil fields are not applied.
type DepositsFilter struct {
	FromBlock *uint
	ToBlock   *uint
	TxHash    *common.Hash
}

type DepositsRepo interface {
	Insert(ctx context.Context, deposit *Deposit) error
	FindAll(ctx context.Context) ([]*Deposit, error)
	Find(ctx context.Context, filter *DepositsFilter) ([]*Deposit, error)
	FindByTxHash(ctx context.Context, txHash common.Hash) ([]*Deposit, error)
	FindDuplicates(ctx context.Context) ([]*DuplicateDeposit, error)
}
