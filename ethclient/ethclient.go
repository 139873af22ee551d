package ethclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	ErrIncompatibleChainID = errors.New("rpc url returned incompatible chainID")
	ErrConnectivity        = errors.New("rpc endpoint is unreachable or returned malformed data")
	ErrBlockNotFound       = errors.New("block is not available yet")
)

type Client interface {
	ChainID() string
	BlockNumber(ctx context.Context) (uint, error)
	BlockByNumber(ctx context.Context, n uint) (*types.Block, error)
	TransactionReceiptByHash(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

type rpcClient struct {
	chainID string
	url     string
	timeout time.Duration
	client  *ethclient.Client
}

func NewClient(url string, timeout time.Duration, chainID string) (Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rawClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("can't dial JSON rpc url: %w", err)
	}
	client := &rpcClient{
		chainID: chainID,
		url:     url,
		timeout: timeout,
		client:  ethclient.NewClient(rawClient),
	}
	ctx2, cancel2 := context.WithTimeout(context.Background(), timeout)
	defer cancel2()
	rpcChainID, err := client.client.ChainID(ctx2)
	if err != nil {
		return nil, fmt.Errorf("can't get chainID: %w", err)
	}
	if chainID == "" {
		client.chainID = rpcChainID.String()
	} else if rpcChainID.String() != chainID {
		return nil, fmt.Errorf("received chainID %s != expected %s: %w", rpcChainID, chainID, ErrIncompatibleChainID)
	}
	return client, nil
}

func (c *rpcClient) ChainID() string {
	return c.chainID
}

func (c *rpcClient) BlockNumber(ctx context.Context) (uint, error) {
	defer ObserveDuration(c.chainID, c.url, "eth_blockNumber")()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	n, err := c.client.BlockNumber(ctx)
	ObserveError(c.chainID, c.url, "eth_blockNumber", err)
	if err != nil {
		return 0, classifyError("can't get latest block number", err)
	}
	return uint(n), nil
}

// BlockByNumber returns the block together with full transaction bodies.
func (c *rpcClient) BlockByNumber(ctx context.Context, n uint) (*types.Block, error) {
	defer ObserveDuration(c.chainID, c.url, "eth_getBlockByNumber")()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	block, err := c.client.BlockByNumber(ctx, new(big.Int).SetUint64(uint64(n)))
	ObserveError(c.chainID, c.url, "eth_getBlockByNumber", err)
	if err != nil {
		return nil, classifyError(fmt.Sprintf("can't get block %d", n), err)
	}
	return block, nil
}

func (c *rpcClient) TransactionReceiptByHash(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	defer ObserveDuration(c.chainID, c.url, "eth_getTransactionReceipt")()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	receipt, err := c.client.TransactionReceipt(ctx, txHash)
	ObserveError(c.chainID, c.url, "eth_getTransactionReceipt", err)
	if err != nil {
		return nil, classifyError(fmt.Sprintf("can't get receipt for %s", txHash), err)
	}
	return receipt, nil
}

func (c *rpcClient) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	defer ObserveDuration(c.chainID, c.url, "eth_call")()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.client.CallContract(ctx, msg, nil)
	ObserveError(c.chainID, c.url, "eth_call", err)
	if err != nil {
		return nil, classifyError("can't call contract", err)
	}
	return res, nil
}

// classifyError maps a transport level error onto ErrBlockNotFound or ErrConnectivity.
func classifyError(msg string, err error) error {
	if errors.Is(err, ethereum.NotFound) {
		return fmt.Errorf("%s: %w", msg, ErrBlockNotFound)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrConnectivity, err)
}
