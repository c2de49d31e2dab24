package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kodax/bulkpay/internal/domain/model"
	"github.com/kodax/bulkpay/internal/store"
)

// SQLLedger implements Ledger over the accounts schema. It performs no
// transaction management of its own; callers own the commit/rollback
// boundary.
type SQLLedger struct {
	accounts store.AccountRepository
	logger   *slog.Logger
}

var _ Ledger = (*SQLLedger)(nil)

func NewSQLLedger(accounts store.AccountRepository, logger *slog.Logger) *SQLLedger {
	return &SQLLedger{
		accounts: accounts,
		logger:   logger.With("component", "ledger"),
	}
}

func (l *SQLLedger) BalanceTx(ctx context.Context, tx *sql.Tx, address model.Address) (uint64, error) {
	return l.accounts.GetBalanceForUpdateTx(ctx, tx, address)
}

func (l *SQLLedger) TransferTx(ctx context.Context, tx *sql.Tx, auth Authority, to model.Address, amount uint64) error {
	if auth.vault == "" {
		return model.ErrUnauthorized
	}
	if err := l.accounts.DebitTx(ctx, tx, auth.vault, amount); err != nil {
		return fmt.Errorf("debit vault %s: %w", auth.vault, err)
	}
	if err := l.accounts.CreditTx(ctx, tx, to, amount); err != nil {
		return fmt.Errorf("credit %s: %w", to, err)
	}
	l.logger.Debug("native transfer",
		"from", auth.vault,
		"to", to,
		"amount", amount,
	)
	return nil
}

func (l *SQLLedger) TokenTransferTx(ctx context.Context, tx *sql.Tx, program AccountRef, auth Authority, from, to AccountRef, mint model.Address, amount uint64) error {
	if auth.vault == "" {
		return model.ErrUnauthorized
	}
	if program.Address == "" {
		return fmt.Errorf("token transfer: %w: program handle", model.ErrMissingAccounts)
	}
	if err := l.accounts.DebitTokenTx(ctx, tx, from.Address, mint, amount); err != nil {
		return fmt.Errorf("debit token account %s: %w", from.Address, err)
	}
	if err := l.accounts.CreditTokenTx(ctx, tx, to.Address, mint, amount); err != nil {
		return fmt.Errorf("credit token account %s: %w", to.Address, err)
	}
	l.logger.Debug("token transfer",
		"program", program.Address,
		"from", from.Address,
		"to", to.Address,
		"mint", mint,
		"amount", amount,
	)
	return nil
}

func (l *SQLLedger) CreditTx(ctx context.Context, tx *sql.Tx, address model.Address, amount uint64) error {
	return l.accounts.CreditTx(ctx, tx, address, amount)
}

func (l *SQLLedger) CreditTokenTx(ctx context.Context, tx *sql.Tx, account model.Address, mint model.Address, amount uint64) error {
	return l.accounts.CreditTokenTx(ctx, tx, account, mint, amount)
}
