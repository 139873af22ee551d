package alerts

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/omni/deposit-monitor/entity"
)

type DepositsAlertsProvider struct {
	repo entity.DepositsRepo
}

func NewDepositsAlertsProvider(repo entity.DepositsRepo) *DepositsAlertsProvider {
	return &DepositsAlertsProvider{
		repo: repo,
	}
}

type DuplicateDeposit struct {
	TransactionHash common.Hash `json:"tx_hash"`
	BlockNumber     uint        `json:"block_number,string"`
	Count           uint        `json:"_value,string"`
}

func (p *DepositsAlertsProvider) FindDuplicateDeposits(ctx context.Context) (interface{}, error) {
	duplicates, err := p.repo.FindDuplicates(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't find duplicate deposits: %w", err)
	}
	res := make([]*DuplicateDeposit, len(duplicates))
	for i, d := range duplicates {
		res[i] = &DuplicateDeposit{
			TransactionHash: d.TransactionHash,
			BlockNumber:     d.BlockNumber,
			Count:           d.Count,
		}
	}
	return res, nil
}
