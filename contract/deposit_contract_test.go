package contract_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/omni/deposit-monitor/contract"
	"github.com/omni/deposit-monitor/contract/depositabi"
	"github.com/omni/deposit-monitor/ethclient"
)

var (
	depositContractAddr = common.HexToAddress("0x00000000219ab540356cBB839Cbe05303d7705Fa")
	otherAddr           = common.HexToAddress("0x0000000000000000000000000000000000000bad")
	testPubkey          = bytes.Repeat([]byte{0xaa}, depositabi.PubkeyLength)
)

type callClient struct {
	ethclient.Client
	result []byte
	err    error
}

func (c *callClient) CallContract(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
	if *msg.To != depositContractAddr {
		return nil, errors.New("unexpected contract")
	}
	return c.result, c.err
}

func depositCallData(t *testing.T, pubkey []byte) []byte {
	t.Helper()
	data, err := depositabi.DepositContractABI.Pack(depositabi.DepositMethod,
		pubkey, bytes.Repeat([]byte{0x01}, 32), bytes.Repeat([]byte{0x02}, 96), [32]byte{0x03})
	require.NoError(t, err)
	return data
}

func newTx(to *common.Address, gas uint64, gasPrice int64, data []byte) *types.Transaction {
	return types.NewTx(&types.LegacyTx{
		Nonce:    1,
		GasPrice: big.NewInt(gasPrice),
		Gas:      gas,
		To:       to,
		Value:    big.NewInt(32),
		Data:     data,
	})
}

func newBlock(number, timestamp uint64, txs ...*types.Transaction) *types.Block {
	header := &types.Header{
		Number: new(big.Int).SetUint64(number),
		Time:   timestamp,
	}
	return types.NewBlockWithHeader(header).WithBody(types.Body{Transactions: txs})
}

func TestDepositContract_IsDeposit(t *testing.T) {
	t.Parallel()

	c := contract.NewDepositContract(nil, depositContractAddr)
	lowerCase := common.HexToAddress("0x00000000219ab540356cbb839cbe05303d7705fa")
	upperCase := common.HexToAddress("0x00000000219AB540356CBB839CBE05303D7705FA")

	require.True(t, c.IsDeposit(newTx(&lowerCase, 21000, 1, nil)))
	require.True(t, c.IsDeposit(newTx(&upperCase, 21000, 1, nil)))
	require.False(t, c.IsDeposit(newTx(&otherAddr, 21000, 1, nil)))
	require.False(t, c.IsDeposit(newTx(nil, 21000, 1, nil)), "contract creation never matches")
}

func TestDepositContract_FilterDeposits(t *testing.T) {
	t.Parallel()

	c := contract.NewDepositContract(nil, depositContractAddr)
	tx1 := newTx(&depositContractAddr, 100000, 1, nil)
	tx2 := newTx(&otherAddr, 100000, 2, nil)
	tx3 := newTx(&depositContractAddr, 100000, 3, nil)
	tx4 := newTx(nil, 100000, 4, nil)

	require.Equal(t, types.Transactions{tx1, tx3}, c.FilterDeposits(types.Transactions{tx1, tx2, tx3, tx4}))
	require.Empty(t, c.FilterDeposits(nil))
}

func TestDepositContract_DecodeDeposit(t *testing.T) {
	t.Parallel()

	c := contract.NewDepositContract(nil, depositContractAddr)

	t.Run("should decode well formed deposit", func(t *testing.T) {
		t.Parallel()
		tx := newTx(&depositContractAddr, 21000, 50, depositCallData(t, testPubkey))
		block := newBlock(103, 1700000000, tx)

		deposit, err := c.DecodeDeposit(tx, block)
		require.NoError(t, err)
		require.Equal(t, uint(103), deposit.BlockNumber)
		require.Equal(t, uint64(1700000000), deposit.BlockTimestamp)
		require.Equal(t, "1050000", deposit.Fee.String())
		require.Equal(t, tx.Hash(), deposit.TransactionHash)
		require.Len(t, deposit.Pubkey, depositabi.PubkeyLength)
		require.Equal(t, testPubkey, []byte(deposit.Pubkey))
	})

	t.Run("should reject payload shorter than selector", func(t *testing.T) {
		t.Parallel()
		tx := newTx(&depositContractAddr, 21000, 50, []byte{0x22, 0x89})
		_, err := c.DecodeDeposit(tx, newBlock(1, 1, tx))
		require.ErrorIs(t, err, contract.ErrMalformedInput)
	})

	t.Run("should reject truncated payload instead of truncating pubkey", func(t *testing.T) {
		t.Parallel()
		data := depositCallData(t, testPubkey)
		tx := newTx(&depositContractAddr, 21000, 50, data[:4+32*4+32+20])
		_, err := c.DecodeDeposit(tx, newBlock(1, 1, tx))
		require.ErrorIs(t, err, contract.ErrMalformedInput)
	})

	t.Run("should reject pubkey of unexpected length", func(t *testing.T) {
		t.Parallel()
		tx := newTx(&depositContractAddr, 21000, 50, depositCallData(t, testPubkey[:32]))
		_, err := c.DecodeDeposit(tx, newBlock(1, 1, tx))
		require.ErrorIs(t, err, contract.ErrMalformedInput)
	})

	t.Run("should reject other methods", func(t *testing.T) {
		t.Parallel()
		data, err := depositabi.DepositContractABI.Pack(depositabi.GetDepositCountMethod)
		require.NoError(t, err)
		tx := newTx(&depositContractAddr, 21000, 50, data)
		_, err = c.DecodeDeposit(tx, newBlock(1, 1, tx))
		require.ErrorIs(t, err, contract.ErrMalformedInput)
	})

	t.Run("should reject tx from another block", func(t *testing.T) {
		t.Parallel()
		tx := newTx(&depositContractAddr, 21000, 50, depositCallData(t, testPubkey))
		_, err := c.DecodeDeposit(tx, newBlock(1, 1))
		require.ErrorIs(t, err, contract.ErrMismatchedBlock)
	})
}

func TestDepositContract_DepositCount(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, 123456)
	packed, err := depositabi.DepositContractABI.Methods[depositabi.GetDepositCountMethod].Outputs.Pack(raw)
	require.NoError(t, err)

	c := contract.NewDepositContract(&callClient{result: packed}, depositContractAddr)
	count, err := c.DepositCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(123456), count)

	c = contract.NewDepositContract(&callClient{err: ethclient.ErrConnectivity}, depositContractAddr)
	_, err = c.DepositCount(context.Background())
	require.ErrorIs(t, err, ethclient.ErrConnectivity)
}

func TestDeclaredFee(t *testing.T) {
	t.Parallel()

	require.Equal(t, big.NewInt(1050000), contract.DeclaredFee(newTx(&depositContractAddr, 21000, 50, nil)))
	require.Equal(t, big.NewInt(210000), contract.DeclaredFee(newTx(&depositContractAddr, 21000, 10, nil)))
	require.Equal(t, 0, contract.DeclaredFee(newTx(&depositContractAddr, 21000, 0, nil)).Sign())
}

func TestReceiptFee(t *testing.T) {
	t.Parallel()

	legacy := newTx(&depositContractAddr, 100000, 50, nil)
	fee, err := contract.ReceiptFee(legacy, &types.Receipt{TxHash: legacy.Hash(), GasUsed: 60000}, big.NewInt(30))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(60000*50), fee)

	fee, err = contract.ReceiptFee(legacy, &types.Receipt{TxHash: legacy.Hash(), GasUsed: 60000}, nil)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(60000*50), fee)

	dynamic := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(1),
		GasTipCap: big.NewInt(2),
		GasFeeCap: big.NewInt(100),
		Gas:       100000,
		To:        &depositContractAddr,
	})
	fee, err = contract.ReceiptFee(dynamic, &types.Receipt{TxHash: dynamic.Hash(), GasUsed: 50000}, big.NewInt(40))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(50000*42), fee)

	_, err = contract.ReceiptFee(dynamic, &types.Receipt{TxHash: legacy.Hash(), GasUsed: 50000}, big.NewInt(40))
	require.Error(t, err)
}
