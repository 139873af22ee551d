package presenter

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/omni/deposit-monitor/db"
	"github.com/omni/deposit-monitor/logging"
	"github.com/omni/deposit-monitor/presenter/http/middleware"
	"github.com/omni/deposit-monitor/presenter/http/render"
	"github.com/omni/deposit-monitor/repository"
)

type Presenter struct {
	logger   logging.Logger
	repo     *repository.Repo
	chainID  string
	address  common.Address
	isSynced func() bool
	root     chi.Router
}

func NewPresenter(logger logging.Logger, repo *repository.Repo, chainID string, address common.Address, isSynced func() bool) *Presenter {
	p := &Presenter{
		logger:   logger,
		repo:     repo,
		chainID:  chainID,
		address:  address,
		isSynced: isSynced,
		root:     chi.NewMux(),
	}
	p.root.Use(chimiddleware.Throttle(5))
	p.root.Use(chimiddleware.RequestID)
	p.root.Use(middleware.NewLoggerMiddleware(p.logger))
	p.root.Use(middleware.Recoverer)

	p.root.With(middleware.GetBlockNumberMiddleware, middleware.GetTxHashMiddleware, middleware.GetFilterMiddleware).
		Get("/deposits", p.GetDeposits)
	p.root.With(middleware.GetTxHashMiddleware, middleware.GetFilterMiddleware).
		Get("/deposits/{txHash:0x[0-9a-fA-F]{64}}", p.GetDepositsByTxHash)
	p.root.Get("/cursor", p.GetCursor)
	return p
}

func (p *Presenter) Handler() http.Handler {
	return p.root
}

func (p *Presenter) Serve(addr string) error {
	p.logger.WithField("addr", addr).Info("starting presenter service")
	return http.ListenAndServe(addr, p.root)
}

func (p *Presenter) GetDeposits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := middleware.GetFilterContext(ctx)

	deposits, err := p.repo.Deposits.Find(ctx, filter.DepositsFilter())
	if err != nil {
		render.Error(w, r, fmt.Errorf("failed to find deposits: %w", err))
		return
	}

	res := &DepositsResult{Deposits: make([]*DepositInfo, len(deposits)), Count: len(deposits)}
	for i, deposit := range deposits {
		res.Deposits[i] = depositToDepositInfo(p.chainID, deposit)
	}
	render.JSON(w, r, http.StatusOK, res)
}

func (p *Presenter) GetDepositsByTxHash(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter := middleware.GetFilterContext(ctx)

	deposits, err := p.repo.Deposits.FindByTxHash(ctx, *filter.TxHash)
	if err != nil {
		render.Error(w, r, fmt.Errorf("failed to find deposits by tx hash: %w", err))
		return
	}
	if len(deposits) == 0 {
		render.JSON(w, r, http.StatusNotFound, fmt.Sprintf("deposit with tx hash %s not found", filter.TxHash))
		return
	}

	res := &DepositsResult{Deposits: make([]*DepositInfo, len(deposits)), Count: len(deposits)}
	for i, deposit := range deposits {
		res.Deposits[i] = depositToDepositInfo(p.chainID, deposit)
	}
	render.JSON(w, r, http.StatusOK, res)
}

func (p *Presenter) GetCursor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cursor, err := p.repo.ScanCursors.GetByChainIDAndAddress(ctx, p.chainID, p.address)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			render.JSON(w, r, http.StatusNotFound, "scan cursor is not persisted yet")
			return
		}
		render.Error(w, r, fmt.Errorf("failed to get scan cursor: %w", err))
		return
	}

	render.JSON(w, r, http.StatusOK, &CursorResult{
		ChainID:            cursor.ChainID,
		Address:            cursor.Address,
		LastProcessedBlock: cursor.LastProcessedBlock,
		IsSynced:           p.isSynced(),
	})
}
