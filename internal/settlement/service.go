// Package settlement drives the vault/batch lifecycle: vault initialization,
// batch creation, execution (fan-out disbursement), and cancellation. Every
// mutation runs in a single database transaction, so a lifecycle transition
// and all of its recipient transfers commit or vanish together.
package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kodax/bulkpay/internal/domain/event"
	"github.com/kodax/bulkpay/internal/domain/model"
	"github.com/kodax/bulkpay/internal/ledger"
	"github.com/kodax/bulkpay/internal/metrics"
	"github.com/kodax/bulkpay/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/kodax/bulkpay/internal/store"
)

// Service is the batch lifecycle controller.
type Service struct {
	db        store.TxBeginner
	vaults    store.VaultRepository
	batches   store.BatchRepository
	ledger    ledger.Ledger
	engine    *Engine
	publisher event.Publisher
	logger    *slog.Logger
	nowFunc   func() time.Time
}

type Option func(*Service)

// WithNowFunc injects the clock, used by tests for deterministic timestamps.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		s.nowFunc = now
	}
}

func New(
	db store.TxBeginner,
	vaults store.VaultRepository,
	batches store.BatchRepository,
	l ledger.Ledger,
	publisher event.Publisher,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		db:        db,
		vaults:    vaults,
		batches:   batches,
		ledger:    l,
		engine:    NewEngine(l, logger),
		publisher: publisher,
		logger:    logger.With("component", "settlement"),
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// InitializeVault creates the vault record deterministically addressed by
// authority. A second initialization for the same authority fails with
// model.ErrVaultExists.
func (s *Service) InitializeVault(ctx context.Context, authority model.Address) (*model.Vault, error) {
	now := s.nowFunc().UTC()
	vault := &model.Vault{
		Address:    model.DeriveVaultAddress(authority),
		Authority:  authority,
		TotalPaid:  0,
		BatchCount: 0,
		IsActive:   true,
		CreatedAt:  now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			s.rollback(tx)
		}
	}()

	if err := s.vaults.InsertTx(ctx, tx, vault); err != nil {
		return nil, fmt.Errorf("insert vault: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true

	metrics.VaultsInitialized.Inc()
	s.publish(ctx, event.VaultInitialized{
		Vault:     vault.Address,
		Authority: vault.Authority,
	})
	s.logger.Info("vault initialized",
		"vault", vault.Address,
		"authority", vault.Authority,
	)
	return vault, nil
}

// CreateBatchParams carries the inputs of a batch creation. Any principal may
// create a batch under an existing vault; only that creator can later cancel
// it.
type CreateBatchParams struct {
	Vault      model.Address
	Creator    model.Address
	BatchID    uint64
	TokenMint  *model.Address
	Recipients []model.Recipient
}

// CreateBatch validates the recipient list, writes the batch record at the
// address derived from (vault, batch_id), and increments the vault's batch
// counter. The recipient list and total amount are immutable afterwards.
func (s *Service) CreateBatch(ctx context.Context, p CreateBatchParams) (*model.Batch, error) {
	if len(p.Recipients) < model.MinRecipients || len(p.Recipients) > model.MaxRecipients {
		return nil, model.ErrInvalidRecipientCount
	}
	for i, r := range p.Recipients {
		if len(r.Memo) > model.MaxMemoBytes {
			return nil, fmt.Errorf("recipient %d: %w", i, model.ErrMemoTooLong)
		}
	}
	total, ok := model.SumAmounts(p.Recipients)
	if !ok {
		return nil, model.ErrAmountOverflow
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			s.rollback(tx)
		}
	}()

	vault, err := s.vaults.GetForUpdateTx(ctx, tx, p.Vault)
	if err != nil {
		return nil, fmt.Errorf("load vault %s: %w", p.Vault, err)
	}

	recipients := make([]model.Recipient, len(p.Recipients))
	copy(recipients, p.Recipients)

	batch := &model.Batch{
		Address:        model.DeriveBatchAddress(vault.Address, p.BatchID),
		Vault:          vault.Address,
		Creator:        p.Creator,
		BatchID:        p.BatchID,
		RecipientCount: len(recipients),
		TotalAmount:    total,
		TokenMint:      p.TokenMint,
		Status:         model.BatchStatusPending,
		CreatedAt:      s.nowFunc().UTC(),
		Recipients:     recipients,
	}

	if err := s.batches.InsertTx(ctx, tx, batch); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}
	if err := s.vaults.IncrementBatchCountTx(ctx, tx, vault.Address); err != nil {
		return nil, fmt.Errorf("increment batch count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true

	metrics.BatchesCreated.WithLabelValues(fundMode(batch)).Inc()
	s.publish(ctx, event.BatchCreated{
		Batch:          batch.Address,
		Vault:          batch.Vault,
		BatchID:        batch.BatchID,
		RecipientCount: batch.RecipientCount,
		TotalAmount:    batch.TotalAmount,
	})
	s.logger.Info("batch created",
		"batch", batch.Address,
		"vault", batch.Vault,
		"batch_id", batch.BatchID,
		"recipients", batch.RecipientCount,
		"total_amount", batch.TotalAmount,
	)
	return batch, nil
}

// ExecuteBatch disburses a pending batch's funds to its recipients and
// finalizes it. Only the vault's authority may execute; the caller identity
// is the signature-verified principal of the invocation. accounts is the
// positionally matched auxiliary account list for the disbursement engine.
//
// On any failure the enclosing transaction rolls back, so the batch remains
// observably Pending: there is no persisted partially-executing state.
func (s *Service) ExecuteBatch(ctx context.Context, caller model.Address, batchAddr, vaultAddr model.Address, accounts []ledger.AccountRef) error {
	spanCtx, span := tracing.Tracer("settlement").Start(ctx, "settlement.executeBatch",
		otelTrace.WithAttributes(
			attribute.String("batch", batchAddr.String()),
			attribute.String("vault", vaultAddr.String()),
		),
	)
	defer span.End()
	start := time.Now()

	batch, err := s.executeBatch(spanCtx, caller, batchAddr, vaultAddr, accounts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.ExecuteErrors.WithLabelValues(errorReason(err)).Inc()
		return err
	}

	mode := fundMode(batch)
	metrics.BatchesExecuted.WithLabelValues(mode).Inc()
	metrics.RecipientsDisbursed.WithLabelValues(mode).Add(float64(batch.RecipientCount))
	metrics.AmountDisbursed.WithLabelValues(mode).Add(float64(batch.TotalAmount))
	metrics.ExecuteLatency.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	s.publish(ctx, event.BatchExecuted{
		Batch:          batch.Address,
		TotalAmount:    batch.TotalAmount,
		RecipientCount: batch.RecipientCount,
	})
	s.logger.Info("batch executed",
		"batch", batch.Address,
		"vault", batch.Vault,
		"recipients", batch.RecipientCount,
		"total_amount", batch.TotalAmount,
		"mode", mode,
	)
	return nil
}

func (s *Service) executeBatch(ctx context.Context, caller model.Address, batchAddr, vaultAddr model.Address, accounts []ledger.AccountRef) (*model.Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			s.rollback(tx)
		}
	}()

	vault, err := s.vaults.GetForUpdateTx(ctx, tx, vaultAddr)
	if err != nil {
		return nil, fmt.Errorf("load vault %s: %w", vaultAddr, err)
	}
	batch, err := s.batches.GetForUpdateTx(ctx, tx, batchAddr)
	if err != nil {
		return nil, fmt.Errorf("load batch %s: %w", batchAddr, err)
	}

	if batch.Status != model.BatchStatusPending {
		return nil, fmt.Errorf("batch %s is %s: %w", batch.Address, batch.Status, model.ErrInvalidBatchStatus)
	}
	if batch.Vault != vault.Address {
		return nil, fmt.Errorf("batch %s belongs to vault %s, not %s: %w",
			batch.Address, batch.Vault, vault.Address, model.ErrInvalidVault)
	}
	if caller != vault.Authority {
		return nil, fmt.Errorf("caller %s is not the vault authority: %w", caller, model.ErrUnauthorized)
	}

	balance, err := s.ledger.BalanceTx(ctx, tx, vault.Address)
	if err != nil {
		return nil, fmt.Errorf("read vault balance: %w", err)
	}
	if balance < batch.TotalAmount {
		return nil, fmt.Errorf("vault balance %d below batch total %d: %w",
			balance, batch.TotalAmount, model.ErrInsufficientFunds)
	}

	// The Executing status is transient: it is observable only if the host
	// environment lacked an atomic boundary. A failed disbursement rolls it
	// back with everything else, leaving the batch Pending.
	if err := s.batches.UpdateStatusTx(ctx, tx, batch.Address, model.BatchStatusExecuting, sql.NullTime{}); err != nil {
		return nil, fmt.Errorf("mark executing: %w", err)
	}

	auth, err := ledger.AuthorityFor(vault)
	if err != nil {
		return nil, fmt.Errorf("derive vault authority: %w", err)
	}
	if err := s.engine.Disburse(ctx, tx, batch, auth, accounts); err != nil {
		return nil, fmt.Errorf("disburse: %w", err)
	}

	executedAt := s.nowFunc().UTC()
	if err := s.batches.UpdateStatusTx(ctx, tx, batch.Address, model.BatchStatusExecuted, sql.NullTime{Time: executedAt, Valid: true}); err != nil {
		return nil, fmt.Errorf("mark executed: %w", err)
	}
	if err := s.vaults.AddTotalPaidTx(ctx, tx, vault.Address, batch.TotalAmount); err != nil {
		return nil, fmt.Errorf("add total paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true

	batch.Status = model.BatchStatusExecuted
	batch.ExecutedAt = &executedAt
	return batch, nil
}

// CancelBatch cancels a still-pending batch. Only the batch creator may
// cancel. No funds move.
func (s *Service) CancelBatch(ctx context.Context, caller model.Address, batchAddr model.Address) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			s.rollback(tx)
		}
	}()

	batch, err := s.batches.GetForUpdateTx(ctx, tx, batchAddr)
	if err != nil {
		return fmt.Errorf("load batch %s: %w", batchAddr, err)
	}
	if batch.Status != model.BatchStatusPending {
		return fmt.Errorf("batch %s is %s: %w", batch.Address, batch.Status, model.ErrCannotCancelExecutedBatch)
	}
	if caller != batch.Creator {
		return fmt.Errorf("caller %s is not the batch creator: %w", caller, model.ErrUnauthorized)
	}

	if err := s.batches.UpdateStatusTx(ctx, tx, batch.Address, model.BatchStatusCancelled, sql.NullTime{}); err != nil {
		return fmt.Errorf("mark cancelled: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true

	metrics.BatchesCancelled.Inc()
	s.publish(ctx, event.BatchCancelled{Batch: batch.Address})
	s.logger.Info("batch cancelled",
		"batch", batch.Address,
		"creator", batch.Creator,
	)
	return nil
}

func (s *Service) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.Warn("rollback failed", "error", err)
	}
}

// publish appends a notification to the external event log after commit.
// The log is outside the core's storage and never read back, so a publish
// failure is surfaced in metrics and logs but does not fail the operation.
func (s *Service) publish(ctx context.Context, p event.Payload) {
	env, err := event.NewEnvelope(s.nowFunc(), p)
	if err != nil {
		metrics.EventPublishErrors.Inc()
		s.logger.Warn("build event envelope failed", "kind", p.Kind(), "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, env); err != nil {
		metrics.EventPublishErrors.Inc()
		s.logger.Warn("publish event failed", "kind", env.Kind, "error", err)
	}
}

func fundMode(b *model.Batch) string {
	if b.TokenMint != nil {
		return "token"
	}
	return "native"
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidBatchStatus):
		return "invalid_status"
	case errors.Is(err, model.ErrInvalidVault):
		return "invalid_vault"
	case errors.Is(err, model.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, model.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, model.ErrMissingAccounts):
		return "missing_accounts"
	case errors.Is(err, model.ErrVaultNotFound), errors.Is(err, model.ErrBatchNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
