package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"

	"github.com/omni/deposit-monitor/db"
	"github.com/omni/deposit-monitor/entity"
)

type depositsRepo basePostgresRepo

func NewDepositsRepo(table string, db *db.DB) entity.DepositsRepo {
	return (*depositsRepo)(newBasePostgresRepo(table, db))
}

// Insert appends unconditionally, a transaction hash may appear more than once.
func (r *depositsRepo) Insert(ctx context.Context, deposit *entity.Deposit) error {
	q, args, err := buildInsertDepositQuery(r.table, deposit)
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	err = r.db.GetContext(ctx, &deposit.ID, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert deposit: %w", err)
	}
	return nil
}

func buildInsertDepositQuery(table string, deposit *entity.Deposit) (string, []interface{}, error) {
	return sq.Insert(table).
		Columns("block_number", "block_timestamp", "fee", "transaction_hash", "pubkey").
		Values(deposit.BlockNumber, deposit.BlockTimestamp, deposit.Fee, deposit.TransactionHash, deposit.Pubkey).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func (r *depositsRepo) FindAll(ctx context.Context) ([]*entity.Deposit, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		OrderBy("id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	deposits := make([]*entity.Deposit, 0, 10)
	err = r.db.SelectContext(ctx, &deposits, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get deposits: %w", err)
	}
	return deposits, nil
}

func (r *depositsRepo) Find(ctx context.Context, filter *entity.DepositsFilter) ([]*entity.Deposit, error) {
	q, args, err := buildFindDepositsQuery(r.table, filter)
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	deposits := make([]*entity.Deposit, 0, 10)
	err = r.db.SelectContext(ctx, &deposits, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get filtered deposits: %w", err)
	}
	return deposits, nil
}

func buildFindDepositsQuery(table string, filter *entity.DepositsFilter) (string, []interface{}, error) {
	cond := sq.And{}
	if filter.FromBlock != nil {
		cond = append(cond, sq.GtOrEq{"block_number": *filter.FromBlock})
	}
	if filter.ToBlock != nil {
		cond = append(cond, sq.LtOrEq{"block_number": *filter.ToBlock})
	}
	if filter.TxHash != nil {
		cond = append(cond, sq.Eq{"transaction_hash": *filter.TxHash})
	}
	query := sq.Select("*").From(table)
	if len(cond) > 0 {
		query = query.Where(cond)
	}
	return query.OrderBy("id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func (r *depositsRepo) FindByTxHash(ctx context.Context, txHash common.Hash) ([]*entity.Deposit, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"transaction_hash": txHash}).
		OrderBy("id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	deposits := make([]*entity.Deposit, 0, 1)
	err = r.db.SelectContext(ctx, &deposits, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get deposits by tx hash: %w", err)
	}
	return deposits, nil
}

func (r *depositsRepo) FindDuplicates(ctx context.Context) ([]*entity.DuplicateDeposit, error) {
	q, args, err := buildFindDuplicatesQuery(r.table)
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	duplicates := make([]*entity.DuplicateDeposit, 0, 5)
	err = r.db.SelectContext(ctx, &duplicates, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get duplicated deposits: %w", err)
	}
	return duplicates, nil
}

func buildFindDuplicatesQuery(table string) (string, []interface{}, error) {
	return sq.Select("transaction_hash", "MIN(block_number) AS block_number", "COUNT(*) AS count").
		From(table).
		GroupBy("transaction_hash").
		Having("COUNT(*) > 1").
		OrderBy("block_number").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}
