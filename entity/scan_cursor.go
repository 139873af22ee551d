package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type ScanCursor struct {
	ChainID            string         `db:"chain_id" json:"chainId"`
	Address            common.Address `db:"address" json:"address"`
	LastProcessedBlock uint           `db:"last_processed_block" json:"lastProcessedBlock"`
	CreatedAt          *time.Time     `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt          *time.Time     `db:"updated_at" json:"updatedAt,omitempty"`
}

type ScanCursorsRepo interface {
	Ensure(ctx context.Context, cursor *ScanCursor) error
	GetByChainIDAndAddress(ctx context.Context, chainID string, addr common.Address) (*ScanCursor, error)
}
