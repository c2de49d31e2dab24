// Package reconciliation cross-checks the derived vault counters against the
// batch table they summarize. Executions update total_paid and batch_count in
// the same transaction as the batch rows, so the two views can only disagree
// after operator surgery or a storage-level fault; a drift is always worth an
// alert.
package reconciliation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kodax/bulkpay/internal/alert"
	"github.com/kodax/bulkpay/internal/domain/model"
	"github.com/kodax/bulkpay/internal/metrics"
	"github.com/kodax/bulkpay/internal/store"
)

// VaultSummary pairs a vault's stored counters with aggregates computed from
// its batch rows.
type VaultSummary struct {
	Vault         model.Address
	TotalPaid     uint64
	BatchCount    uint64
	ExecutedTotal uint64
	BatchRows     uint64
}

// LedgerSource reads vault counters and batch aggregates in one pass.
type LedgerSource interface {
	VaultSummaries(ctx context.Context) ([]VaultSummary, error)
}

// Check is the outcome of reconciling a single vault.
type Check struct {
	Vault         string    `json:"vault"`
	TotalPaid     uint64    `json:"total_paid"`
	ExecutedTotal uint64    `json:"executed_total"`
	BatchCount    uint64    `json:"batch_count"`
	BatchRows     uint64    `json:"batch_rows"`
	PaidMatch     bool      `json:"paid_match"`
	CountMatch    bool      `json:"count_match"`
	CheckedAt     time.Time `json:"checked_at"`
}

// Clean reports whether both counters agree with the batch table.
func (c Check) Clean() bool { return c.PaidMatch && c.CountMatch }

// RunResult aggregates a full reconciliation run.
type RunResult struct {
	Total      int       `json:"total"`
	Matched    int       `json:"matched"`
	Mismatched int       `json:"mismatched"`
	Checks     []Check   `json:"checks"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// CheckRepository persists reconciliation results.
type CheckRepository interface {
	SaveChecksTx(ctx context.Context, tx *sql.Tx, checks []Check) error
}

// Service periodically verifies vault counter integrity.
type Service struct {
	db      store.TxBeginner
	source  LedgerSource
	alerter alert.Alerter
	logger  *slog.Logger

	checkRepo CheckRepository

	mu       sync.Mutex
	drifting bool // last run found at least one mismatch
}

// NewService creates a reconciliation service. alerter may be nil when no
// channels are configured.
func NewService(db store.TxBeginner, source LedgerSource, alerter alert.Alerter, logger *slog.Logger) *Service {
	return &Service{
		db:      db,
		source:  source,
		alerter: alerter,
		logger:  logger.With("component", "reconciliation"),
	}
}

// SetCheckRepository sets the optional check persistence layer.
func (s *Service) SetCheckRepository(repo CheckRepository) {
	s.checkRepo = repo
}

// Run reconciles every vault once and returns the per-vault results.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{StartedAt: time.Now()}

	summaries, err := s.source.VaultSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vault summaries: %w", err)
	}

	for _, sum := range summaries {
		check := Check{
			Vault:         string(sum.Vault),
			TotalPaid:     sum.TotalPaid,
			ExecutedTotal: sum.ExecutedTotal,
			BatchCount:    sum.BatchCount,
			BatchRows:     sum.BatchRows,
			PaidMatch:     sum.TotalPaid == sum.ExecutedTotal,
			CountMatch:    sum.BatchCount == sum.BatchRows,
			CheckedAt:     time.Now(),
		}
		result.Checks = append(result.Checks, check)
		result.Total++
		if check.Clean() {
			result.Matched++
			continue
		}
		result.Mismatched++
		s.alertDrift(ctx, check)
	}

	result.FinishedAt = time.Now()

	metrics.ReconcileRunsTotal.Inc()
	metrics.ReconcileDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	if result.Mismatched > 0 {
		metrics.ReconcileMismatchesTotal.Add(float64(result.Mismatched))
	}

	s.noteRunOutcome(ctx, result)

	if s.checkRepo != nil && len(result.Checks) > 0 {
		s.persistChecks(ctx, result.Checks)
	}

	s.logger.Info("reconciliation completed",
		"total", result.Total,
		"matched", result.Matched,
		"mismatched", result.Mismatched,
	)
	return result, nil
}

func (s *Service) alertDrift(ctx context.Context, check Check) {
	s.logger.Error("vault counter drift",
		"vault", check.Vault,
		"total_paid", check.TotalPaid,
		"executed_total", check.ExecutedTotal,
		"batch_count", check.BatchCount,
		"batch_rows", check.BatchRows,
	)
	if s.alerter == nil {
		return
	}

	alertType := alert.AlertTypeLedgerDrift
	title := "Vault total_paid disagrees with executed batch totals"
	if check.PaidMatch {
		alertType = alert.AlertTypeCountDrift
		title = "Vault batch_count disagrees with batch rows"
	}

	_ = s.alerter.Send(ctx, alert.Alert{
		Type:    alertType,
		Vault:   check.Vault,
		Title:   title,
		Message: "stored counters no longer match the batch table",
		Fields: map[string]string{
			"total_paid":     fmt.Sprintf("%d", check.TotalPaid),
			"executed_total": fmt.Sprintf("%d", check.ExecutedTotal),
			"batch_count":    fmt.Sprintf("%d", check.BatchCount),
			"batch_rows":     fmt.Sprintf("%d", check.BatchRows),
		},
	})
}

// noteRunOutcome tracks drift state across runs and emits a recovery alert on
// the first clean run after a drifting one.
func (s *Service) noteRunOutcome(ctx context.Context, result *RunResult) {
	s.mu.Lock()
	wasDrifting := s.drifting
	s.drifting = result.Mismatched > 0
	s.mu.Unlock()

	if wasDrifting && result.Mismatched == 0 && s.alerter != nil {
		_ = s.alerter.Send(ctx, alert.Alert{
			Type:    alert.AlertTypeRecovery,
			Title:   "Ledger reconciliation recovered",
			Message: fmt.Sprintf("all %d vaults match again", result.Total),
		})
	}
}

func (s *Service) persistChecks(ctx context.Context, checks []Check) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Warn("failed to begin tx for check persistence", "error", err)
		return
	}
	if err := s.checkRepo.SaveChecksTx(ctx, tx, checks); err != nil {
		_ = tx.Rollback()
		s.logger.Warn("failed to save reconciliation checks", "error", err)
		return
	}
	if err := tx.Commit(); err != nil {
		s.logger.Warn("failed to commit reconciliation checks", "error", err)
	}
}

// RunPeriodic reconciles at the given interval until the context is
// cancelled.
func (s *Service) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	s.logger.Info("periodic reconciliation started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("periodic reconciliation stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				s.logger.Warn("periodic reconciliation failed", "error", err)
			}
		}
	}
}
