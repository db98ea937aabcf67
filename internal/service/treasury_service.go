package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"treasury_dashboard/internal/client"
	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/internal/repository"
	"treasury_dashboard/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var (
	// ErrNotConfigured is returned when an upstream API key is missing.
	ErrNotConfigured = errors.New("upstream API key not configured")
	// ErrRefreshBusy is returned when a refresh is already in flight.
	ErrRefreshBusy = errors.New("treasury refresh already in progress")
)

// TreasuryService drives the refresh cycle: fetch every configured wallet via
// the balance API, fold the results into an aggregate snapshot and publish it.
// Requests are served from the last published snapshot, never from a cycle
// still in flight.
type TreasuryService struct {
	debankClient  client.DeBankClient
	repo          repository.SnapshotRepository
	rules         *RuleSet
	wallets       []entity.WalletSpec
	staticWallets []entity.StaticWallet
	limiter       *rate.Limiter
	busy          atomic.Bool
	configured    bool
	logger        *zap.Logger
	now           func() time.Time
}

// NewTreasuryService creates a TreasuryService. configured reports whether a
// DeBank access key is available; without one Refresh fails fast.
func NewTreasuryService(
	debankClient client.DeBankClient,
	repo repository.SnapshotRepository,
	rules *RuleSet,
	wallets []entity.WalletSpec,
	staticWallets []entity.StaticWallet,
	walletRate float64,
	walletBurst int,
	configured bool,
	logger *zap.Logger,
) *TreasuryService {
	return &TreasuryService{
		debankClient:  debankClient,
		repo:          repo,
		rules:         rules,
		wallets:       wallets,
		staticWallets: staticWallets,
		limiter:       rate.NewLimiter(rate.Limit(walletRate), walletBurst),
		configured:    configured,
		logger:        logger.Named("TreasuryService"),
		now:           time.Now,
	}
}

// Latest returns the last published snapshot, if any refresh has completed.
func (s *TreasuryService) Latest() (entity.AggregateSnapshot, bool) {
	return s.repo.Latest()
}

// Configured reports whether the service has an upstream access key.
func (s *TreasuryService) Configured() bool {
	return s.configured
}

// Busy reports whether a refresh cycle is currently in flight.
func (s *TreasuryService) Busy() bool {
	return s.busy.Load()
}

// Refresh runs one full fetch-and-aggregate cycle. A wallet that fails is
// recorded as an error entry and skipped; the cycle still publishes a snapshot
// from the wallets that succeeded. A concurrent call is rejected with
// ErrRefreshBusy so overlapping cycles cannot interleave.
func (s *TreasuryService) Refresh(ctx context.Context) error {
	if !s.configured {
		return ErrNotConfigured
	}
	if !s.busy.CompareAndSwap(false, true) {
		metrics.RefreshTotal.WithLabelValues("busy").Inc()
		return ErrRefreshBusy
	}
	defer s.busy.Store(false)

	start := s.now()
	s.logger.Info("Starting treasury refresh", zap.Int("wallets", len(s.wallets)))

	agg := NewAggregator(s.rules)
	failed := 0
	for _, spec := range s.wallets {
		if err := s.limiter.Wait(ctx); err != nil {
			metrics.RefreshTotal.WithLabelValues("failed").Inc()
			return err
		}

		result, err := s.fetchWallet(ctx, spec)
		if err != nil {
			failed++
			s.logger.Warn("Wallet fetch failed, continuing with remaining wallets",
				zap.String("address", spec.Address),
				zap.String("name", spec.Name),
				zap.Error(err))
			metrics.WalletFetchErrors.WithLabelValues(spec.Name).Inc()
			agg.AddError(entity.WalletError{
				Address: spec.Address,
				Name:    spec.Name,
				Message: err.Error(),
			})
			continue
		}
		agg.AddWallet(result)
	}

	for _, sw := range s.staticWallets {
		agg.AddStaticWallet(sw)
	}

	snapshot := agg.Build(s.now())
	s.repo.Store(*snapshot)

	elapsed := time.Since(start)
	metrics.RefreshDuration.Observe(elapsed.Seconds())
	outcome := "ok"
	if failed > 0 {
		outcome = "partial"
	}
	metrics.RefreshTotal.WithLabelValues(outcome).Inc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int("walletsFetched", len(s.wallets)-failed),
		zap.Int("walletsFailed", failed),
		zap.Float64("totalValue", snapshot.TotalValue),
	}
	if top, ok := snapshot.TopProtocol(); ok {
		fields = append(fields, zap.String("topProtocol", top.Name))
	}
	s.logger.Info("Treasury refresh finished", fields...)
	return nil
}

// fetchWallet pulls the balance, token list and protocol list for one wallet
// concurrently. Any of the three failing fails the wallet as a whole.
func (s *TreasuryService) fetchWallet(ctx context.Context, spec entity.WalletSpec) (entity.WalletResult, error) {
	var (
		balance   float64
		tokens    []entity.RawToken
		protocols []entity.RawProtocol
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balance, err = s.debankClient.GetTotalBalance(gctx, spec.Address)
		return err
	})
	g.Go(func() error {
		var err error
		tokens, err = s.debankClient.GetTokenList(gctx, spec.Address)
		return err
	})
	g.Go(func() error {
		var err error
		protocols, err = s.debankClient.GetProtocolList(gctx, spec.Address)
		return err
	})
	if err := g.Wait(); err != nil {
		return entity.WalletResult{}, err
	}

	return entity.WalletResult{
		WalletSpec:   spec,
		TotalBalance: balance,
		Tokens:       tokens,
		Protocols:    protocols,
	}, nil
}
