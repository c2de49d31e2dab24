package settlement

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kodax/bulkpay/internal/domain/model"
	"github.com/kodax/bulkpay/internal/ledger"
)

// Token-mode account layout: the first two handles are reserved, recipients'
// destination token accounts follow in list order.
const (
	tokenProgramIndex      = 0
	vaultTokenAccountIndex = 1
	tokenReservedAccounts  = 2
)

// Engine performs the fan-out of funds to a batch's recipients. It moves
// exactly recipient.Amount to each destination, in strict list order, under
// the vault's delegated authority. Any single transfer failure fails the
// whole disbursement; the caller's transaction boundary discards the partial
// writes.
type Engine struct {
	ledger ledger.Ledger
	logger *slog.Logger
}

func NewEngine(l ledger.Ledger, logger *slog.Logger) *Engine {
	return &Engine{
		ledger: l,
		logger: logger.With("component", "engine"),
	}
}

// Disburse pays every recipient of the batch. accounts is the caller-supplied
// auxiliary account list, matched positionally against the recipient list
// (token mode reserves the first two entries).
func (e *Engine) Disburse(ctx context.Context, tx *sql.Tx, batch *model.Batch, auth ledger.Authority, accounts []ledger.AccountRef) error {
	if batch.TokenMint != nil {
		return e.disburseToken(ctx, tx, batch, auth, accounts)
	}
	return e.disburseNative(ctx, tx, batch, auth, accounts)
}

func (e *Engine) disburseNative(ctx context.Context, tx *sql.Tx, batch *model.Batch, auth ledger.Authority, accounts []ledger.AccountRef) error {
	if len(accounts) < len(batch.Recipients) {
		return fmt.Errorf("have %d destination accounts for %d recipients: %w",
			len(accounts), len(batch.Recipients), model.ErrMissingAccounts)
	}

	for i, r := range batch.Recipients {
		dest := accounts[i]
		if dest.Address != r.Address {
			return fmt.Errorf("recipient %d: account %s does not match expected %s: %w",
				i, dest.Address, r.Address, model.ErrInvalidVault)
		}
		if err := e.ledger.TransferTx(ctx, tx, auth, dest.Address, r.Amount); err != nil {
			return fmt.Errorf("transfer to recipient %d: %w", i, err)
		}
	}

	e.logger.Debug("native disbursement complete",
		"batch", batch.Address,
		"recipients", len(batch.Recipients),
		"total_amount", batch.TotalAmount,
	)
	return nil
}

func (e *Engine) disburseToken(ctx context.Context, tx *sql.Tx, batch *model.Batch, auth ledger.Authority, accounts []ledger.AccountRef) error {
	if len(accounts) < tokenReservedAccounts+len(batch.Recipients) {
		return fmt.Errorf("have %d accounts, need %d for token disbursement: %w",
			len(accounts), tokenReservedAccounts+len(batch.Recipients), model.ErrMissingAccounts)
	}

	program := accounts[tokenProgramIndex]
	vaultToken := accounts[vaultTokenAccountIndex]
	mint := *batch.TokenMint

	for i, r := range batch.Recipients {
		dest := accounts[tokenReservedAccounts+i]
		if err := e.ledger.TokenTransferTx(ctx, tx, program, auth, vaultToken, dest, mint, r.Amount); err != nil {
			return fmt.Errorf("token transfer to recipient %d: %w", i, err)
		}
	}

	e.logger.Debug("token disbursement complete",
		"batch", batch.Address,
		"mint", mint,
		"recipients", len(batch.Recipients),
		"total_amount", batch.TotalAmount,
	)
	return nil
}
