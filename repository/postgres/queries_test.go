package postgres

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/omni/deposit-monitor/entity"
)

func TestBuildInsertDepositQuery(t *testing.T) {
	t.Parallel()

	deposit := &entity.Deposit{
		BlockNumber:     103,
		BlockTimestamp:  1700000000,
		Fee:             decimal.NewFromInt(210000),
		TransactionHash: common.HexToHash("0xabc"),
		Pubkey:          entity.HexBytes{1, 2, 3},
	}
	q, args, err := buildInsertDepositQuery("deposits", deposit)
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO deposits (block_number,block_timestamp,fee,transaction_hash,pubkey) "+
		"VALUES ($1,$2,$3,$4,$5) RETURNING id", q)
	require.Equal(t, []interface{}{
		uint(103),
		uint64(1700000000),
		decimal.NewFromInt(210000),
		common.HexToHash("0xabc"),
		entity.HexBytes{1, 2, 3},
	}, args)
}

func TestBuildFindDepositsQuery(t *testing.T) {
	t.Parallel()

	from, to := uint(100), uint(110)
	txHash := common.HexToHash("0xabc")

	for _, c := range []struct {
		Name   string
		Filter *entity.DepositsFilter
		Query  string
		Args   []interface{}
	}{
		{
			Name:   "empty",
			Filter: &entity.DepositsFilter{},
			Query:  "SELECT * FROM deposits ORDER BY id",
		},
		{
			Name:   "block range",
			Filter: &entity.DepositsFilter{FromBlock: &from, ToBlock: &to},
			Query:  "SELECT * FROM deposits WHERE (block_number >= $1 AND block_number <= $2) ORDER BY id",
			Args:   []interface{}{uint(100), uint(110)},
		},
		{
			Name:   "all fields",
			Filter: &entity.DepositsFilter{FromBlock: &from, ToBlock: &to, TxHash: &txHash},
			Query: "SELECT * FROM deposits WHERE (block_number >= $1 AND block_number <= $2 " +
				"AND transaction_hash = $3) ORDER BY id",
			// common.Hash is bound through its driver.Valuer
			Args: []interface{}{uint(100), uint(110), txHash.Bytes()},
		},
	} {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			t.Parallel()

			q, args, err := buildFindDepositsQuery("deposits", c.Filter)
			require.NoError(t, err)
			require.Equal(t, c.Query, q)
			if c.Args == nil {
				require.Empty(t, args)
			} else {
				require.Equal(t, c.Args, args)
			}
		})
	}
}

func TestBuildFindDuplicatesQuery(t *testing.T) {
	t.Parallel()

	q, args, err := buildFindDuplicatesQuery("deposits")
	require.NoError(t, err)
	require.Equal(t, "SELECT transaction_hash, MIN(block_number) AS block_number, COUNT(*) AS count "+
		"FROM deposits GROUP BY transaction_hash HAVING COUNT(*) > 1 ORDER BY block_number", q)
	require.Empty(t, args)
}

func TestBuildEnsureCursorQuery(t *testing.T) {
	t.Parallel()

	addr := common.HexToAddress("0x00000000219ab540356cBB839Cbe05303d7705Fa")
	q, args, err := buildEnsureCursorQuery("scan_cursors", &entity.ScanCursor{
		ChainID:            "1",
		Address:            addr,
		LastProcessedBlock: 105,
	})
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO scan_cursors (chain_id,address,last_processed_block) VALUES ($1,$2,$3) "+
		"ON CONFLICT (chain_id, address) DO UPDATE SET updated_at = NOW(), "+
		"last_processed_block = GREATEST(scan_cursors.last_processed_block, EXCLUDED.last_processed_block)", q)
	require.Equal(t, []interface{}{"1", addr, uint(105)}, args)
}
