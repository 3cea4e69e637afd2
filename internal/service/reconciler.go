package service

import (
	"context"
	"time"

	"chain-wallet-gateway/internal/core/ports"

	"github.com/rs/zerolog"
)

// Reconciler periodically re-validates stale pending records. It closes the
// gap left by a crash between broadcast and persistence, and settles
// transactions nobody asked about again.
type Reconciler struct {
	txSvc            ports.TransactionService
	txRepo           ports.TransactionRepository
	interval         time.Duration
	maxAge           time.Duration
	minConfirmations uint64
	log              zerolog.Logger
}

// NewReconciler creates a reconciler sweeping every interval over pending
// records older than maxAge.
func NewReconciler(
	txSvc ports.TransactionService,
	txRepo ports.TransactionRepository,
	interval, maxAge time.Duration,
	minConfirmations uint64,
	log zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		txSvc:            txSvc,
		txRepo:           txRepo,
		interval:         interval,
		maxAge:           maxAge,
		minConfirmations: minConfirmations,
		log:              log,
	}
}

// Run blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().
		Dur("interval", r.interval).
		Dur("max_age", r.maxAge).
		Msg("reconciler started")

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("reconciler stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep re-validates every stale pending record once. Per-hash failures are
// logged and skipped; the sweep itself never fails.
func (r *Reconciler) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.maxAge)
	pending, err := r.txRepo.ListPending(ctx, cutoff)
	if err != nil {
		r.log.Error().Err(err).Msg("listing pending transactions failed")
		return
	}
	if len(pending) == 0 {
		return
	}

	r.log.Debug().Int("count", len(pending)).Msg("reconciling pending transactions")
	for _, txn := range pending {
		_, err := r.txSvc.Validate(ctx, ports.ValidateTransactionRequest{
			Hash:                 txn.Hash,
			RequireConfirmations: true,
			MinConfirmations:     r.minConfirmations,
		})
		if err != nil {
			r.log.Warn().Err(err).Str("hash", txn.Hash).Msg("reconcile validation failed")
		}
	}
}
