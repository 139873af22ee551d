package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/omni/deposit-monitor/config"
	"github.com/omni/deposit-monitor/contract"
	"github.com/omni/deposit-monitor/db"
	"github.com/omni/deposit-monitor/entity"
	"github.com/omni/deposit-monitor/ethclient"
	"github.com/omni/deposit-monitor/logging"
	"github.com/omni/deposit-monitor/repository"
	"github.com/omni/deposit-monitor/utils"
)

const defaultSyncedThreshold = 10

type Notifier interface {
	Notify(ctx context.Context, deposit *entity.Deposit) error
}

// DepositTracker scans blocks for transactions sent to the deposit contract.
// It is driven by a single goroutine, only State and IsSynced are safe to call concurrently.
type DepositTracker struct {
	logger    logging.Logger
	cfg       *config.TrackerConfig
	repo      *repository.Repo
	client    ethclient.Client
	contract  *contract.DepositContract
	notifier  Notifier
	cursor    *entity.ScanCursor
	state     atomic.Int32
	headBlock uint
	isSynced  atomic.Bool

	// notified holds deposits of the uncommitted chunk that were already announced.
	notified map[common.Hash]struct{}

	stateMetric          prometheus.Gauge
	syncedMetric         prometheus.Gauge
	headBlockMetric      prometheus.Gauge
	processedBlockMetric prometheus.Gauge
	depositsMetric       prometheus.Counter
	malformedMetric      prometheus.Counter
}

func NewDepositTracker(logger logging.Logger, cfg *config.TrackerConfig, repo *repository.Repo, client ethclient.Client, depositContract *contract.DepositContract, notifier Notifier) *DepositTracker {
	commonLabels := prometheus.Labels{
		"chain_id": client.ChainID(),
		"address":  depositContract.Address().String(),
	}
	t := &DepositTracker{
		logger:               logger,
		cfg:                  cfg,
		repo:                 repo,
		client:               client,
		contract:             depositContract,
		notifier:             notifier,
		notified:             make(map[common.Hash]struct{}),
		stateMetric:          TrackerState.With(commonLabels),
		syncedMetric:         SyncedTracker.With(commonLabels),
		headBlockMetric:      LatestHeadBlock.With(commonLabels),
		processedBlockMetric: LatestProcessedBlock.With(commonLabels),
		depositsMetric:       DepositsFound.With(commonLabels),
		malformedMetric:      MalformedDeposits.With(commonLabels),
	}
	t.setState(StateInitializing)
	return t
}

func (t *DepositTracker) State() State {
	return State(t.state.Load())
}

func (t *DepositTracker) IsSynced() bool {
	return t.isSynced.Load()
}

// LastProcessedBlock returns the in-memory scan cursor, zero before Initialize.
func (t *DepositTracker) LastProcessedBlock() uint {
	if t.cursor == nil {
		return 0
	}
	return t.cursor.LastProcessedBlock
}

func (t *DepositTracker) setState(state State) {
	if prev := State(t.state.Swap(int32(state))); prev != state {
		t.logger.WithFields(logrus.Fields{
			"from": prev.String(),
			"to":   state.String(),
		}).Debug("tracker state transition")
	}
	t.stateMetric.Set(float64(state))
}

// Initialize loads the persisted scan cursor. Without one, scanning starts lookback blocks behind the head.
func (t *DepositTracker) Initialize(ctx context.Context) error {
	t.setState(StateInitializing)
	chainID, addr := t.client.ChainID(), t.contract.Address()

	cursor, err := t.repo.ScanCursors.GetByChainIDAndAddress(ctx, chainID, addr)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("failed to read scan cursor: %w", err)
		}
		head, err2 := t.client.BlockNumber(ctx)
		if err2 != nil {
			return fmt.Errorf("can't fetch latest block number: %w", err2)
		}
		var start uint
		if head > t.cfg.Lookback {
			start = head - t.cfg.Lookback
		}
		t.logger.WithFields(logrus.Fields{
			"chain_id":   chainID,
			"address":    addr,
			"head_block": head,
			"lookback":   t.cfg.Lookback,
			"cursor":     start,
		}).Warn("scan cursor is not present, starting from the lookback window")
		cursor = &entity.ScanCursor{
			ChainID:            chainID,
			Address:            addr,
			LastProcessedBlock: start,
		}
	} else {
		t.logger.WithField("cursor", cursor.LastProcessedBlock).Info("loaded persisted scan cursor")
	}
	t.cursor = cursor
	t.processedBlockMetric.Set(float64(cursor.LastProcessedBlock))

	count, err := t.contract.DepositCount(ctx)
	if err != nil {
		t.logger.WithError(err).Warn("can't read deposit count from the contract")
	} else {
		t.logger.WithField("deposit_count", count).Info("obtained deposit contract state")
	}
	return nil
}

// Poll performs a single tracker iteration: it reads the chain head and processes all blocks past the cursor.
func (t *DepositTracker) Poll(ctx context.Context) error {
	t.setState(StatePolling)
	head, err := t.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("can't fetch latest block number: %w", err)
	}
	if head > t.cfg.BlockConfirmations {
		head -= t.cfg.BlockConfirmations
	} else {
		head = 0
	}
	t.recordHeadBlockNumber(head)

	if head <= t.cursor.LastProcessedBlock {
		t.logger.WithFields(logrus.Fields{
			"head_block": head,
			"cursor":     t.cursor.LastProcessedBlock,
		}).Debug("no new blocks")
		return nil
	}
	return t.ProcessBlockRange(ctx, t.cursor.LastProcessedBlock+1, head)
}

// ProcessBlockRange processes blocks in [fromBlock, toBlock] in ascending order, chunk by chunk.
// The cursor is advanced after every chunk. Cancellation of ctx is honoured only between chunks.
func (t *DepositTracker) ProcessBlockRange(ctx context.Context, fromBlock, toBlock uint) error {
	t.setState(StateProcessing)
	workCtx := context.WithoutCancel(ctx)

	for _, br := range SplitBlockRange(fromBlock, toBlock, t.cfg.MaxBlockRangeSize) {
		if err := ctx.Err(); err != nil {
			t.logger.WithField("cursor", t.cursor.LastProcessedBlock).Info("stopping block range processing")
			return err
		}
		t.logger.WithFields(logrus.Fields{
			"from_block": br.From,
			"to_block":   br.To,
		}).Info("processing block range")
		for n := br.From; n <= br.To; n++ {
			if err := t.processBlock(workCtx, n); err != nil {
				return err
			}
		}
		t.recordProcessedBlockNumber(workCtx, br.To)
	}
	return nil
}

func (t *DepositTracker) processBlock(ctx context.Context, blockNumber uint) error {
	block, err := t.client.BlockByNumber(ctx, blockNumber)
	if err != nil {
		return err
	}
	txs := t.contract.FilterDeposits(block.Transactions())
	if len(txs) > 0 {
		t.logger.WithFields(logrus.Fields{
			"block_number": blockNumber,
			"count":        len(txs),
		}).Debug("found deposit contract transactions")
	}
	for _, tx := range txs {
		if err = t.processDeposit(ctx, tx, block); err != nil {
			return err
		}
	}
	return nil
}

func (t *DepositTracker) processDeposit(ctx context.Context, tx *types.Transaction, block *types.Block) error {
	logger := t.logger.WithFields(logrus.Fields{
		"block_number": block.NumberU64(),
		"tx_hash":      tx.Hash(),
	})
	deposit, err := t.contract.DecodeDeposit(tx, block)
	if err != nil {
		if errors.Is(err, contract.ErrMalformedInput) {
			t.malformedMetric.Inc()
			logger.WithError(err).Warn("skipping malformed deposit transaction")
			return nil
		}
		return err
	}
	if t.cfg.FeeSource == config.FeeSourceReceipt {
		if err = t.applyReceiptFee(ctx, tx, block, deposit); err != nil {
			return err
		}
	}

	var persistErr error
	if err = t.repo.Deposits.Insert(ctx, deposit); err != nil {
		persistErr = fmt.Errorf("%w: tx %s: %w", ErrPersistence, tx.Hash(), err)
		logger.WithError(err).Error("can't save deposit")
	} else {
		t.depositsMetric.Inc()
		logger.WithFields(logrus.Fields{
			"fee":    deposit.Fee.String(),
			"pubkey": deposit.Pubkey,
		}).Info("saved new deposit")
	}

	// a chunk that failed to persist is rescanned, announce each deposit once
	if _, ok := t.notified[deposit.TransactionHash]; ok {
		logger.Debug("deposit was already announced, skipping notification")
		return persistErr
	}
	if err = t.notifier.Notify(ctx, deposit); err != nil {
		logger.WithError(fmt.Errorf("%w: %w", ErrNotification, err)).Error("can't notify about deposit")
	}
	t.notified[deposit.TransactionHash] = struct{}{}
	return persistErr
}

func (t *DepositTracker) applyReceiptFee(ctx context.Context, tx *types.Transaction, block *types.Block, deposit *entity.Deposit) error {
	receipt, err := t.client.TransactionReceiptByHash(ctx, tx.Hash())
	if err != nil {
		return err
	}
	fee, err := contract.ReceiptFee(tx, receipt, block.BaseFee())
	if err != nil {
		return fmt.Errorf("can't compute receipt fee: %w", err)
	}
	deposit.Fee = decimal.NewFromBigInt(fee, 0)
	return nil
}

func (t *DepositTracker) recordHeadBlockNumber(blockNumber uint) {
	if blockNumber < t.headBlock {
		return
	}

	t.headBlock = blockNumber
	t.headBlockMetric.Set(float64(blockNumber))
	t.recordIsSynced()
}

func (t *DepositTracker) recordIsSynced() {
	synced := t.cursor.LastProcessedBlock+defaultSyncedThreshold > t.headBlock
	t.isSynced.Store(synced)
	if synced {
		t.syncedMetric.Set(1)
	} else {
		t.syncedMetric.Set(0)
	}
}

// recordProcessedBlockNumber advances the cursor. A failed save is only logged,
// the stored cursor catches up on the next successful save.
func (t *DepositTracker) recordProcessedBlockNumber(ctx context.Context, blockNumber uint) {
	if blockNumber < t.cursor.LastProcessedBlock {
		return
	}

	t.cursor.LastProcessedBlock = blockNumber
	clear(t.notified)
	t.processedBlockMetric.Set(float64(blockNumber))
	t.recordIsSynced()
	if err := t.repo.ScanCursors.Ensure(ctx, t.cursor); err != nil {
		t.logger.WithError(err).WithField("block_number", blockNumber).
			Error("failed to persist scan cursor")
	}
}

// backoff moves the tracker into BACKOFF and returns how long to wait before the next attempt.
func (t *DepositTracker) backoff(err error) time.Duration {
	t.setState(StateBackoff)
	interval := t.backoffInterval(err)
	t.logger.WithError(err).WithFields(logrus.Fields{
		"cursor":  t.LastProcessedBlock(),
		"backoff": interval.String(),
	}).Error("tracker iteration failed, backing off")
	return interval
}

func (t *DepositTracker) backoffInterval(err error) time.Duration {
	if errors.Is(err, ethclient.ErrBlockNotFound) {
		// node is still catching up
		return t.cfg.PollInterval
	}
	return t.cfg.BackoffInterval
}

func (t *DepositTracker) Start(ctx context.Context) {
	t.logger.Info("starting deposit tracker")

	for {
		err := t.Initialize(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return
		}
		if utils.ContextSleep(ctx, t.backoff(err)) == nil {
			return
		}
	}

	for {
		if ctx.Err() != nil {
			break
		}
		interval := t.cfg.PollInterval
		if err := t.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			interval = t.backoff(err)
		}
		if utils.ContextSleep(ctx, interval) == nil {
			break
		}
	}
	t.logger.WithField("cursor", t.cursor.LastProcessedBlock).Info("deposit tracker stopped")
}
