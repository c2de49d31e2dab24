package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kodax/bulkpay/internal/domain/model"
)

// AccountRepo backs the ledger's native and token balances. Debits are
// guarded conditional updates: a balance never goes below zero, and a debit
// against a missing or underfunded account reports insufficient funds.
type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) GetBalanceForUpdateTx(ctx context.Context, tx *sql.Tx, address model.Address) (uint64, error) {
	var balance string
	err := tx.QueryRowContext(ctx, `
		SELECT balance::text
		FROM accounts
		WHERE address = $1
		FOR UPDATE
	`, address).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return parseUint(balance)
}

func (r *AccountRepo) DebitTx(ctx context.Context, tx *sql.Tx, address model.Address, amount uint64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = balance - $2::numeric, updated_at = now()
		WHERE address = $1 AND balance >= $2::numeric
	`, address, formatUint(amount))
	if err != nil {
		return fmt.Errorf("debit account: %w", err)
	}
	return requireOneRow(res, model.ErrInsufficientFunds)
}

func (r *AccountRepo) CreditTx(ctx context.Context, tx *sql.Tx, address model.Address, amount uint64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (address, balance)
		VALUES ($1, $2::numeric)
		ON CONFLICT (address) DO UPDATE SET
			balance = accounts.balance + $2::numeric,
			updated_at = now()
	`, address, formatUint(amount))
	if err != nil {
		return fmt.Errorf("credit account: %w", err)
	}
	return nil
}

func (r *AccountRepo) GetTokenBalanceForUpdateTx(ctx context.Context, tx *sql.Tx, account model.Address, mint model.Address) (uint64, error) {
	var balance string
	err := tx.QueryRowContext(ctx, `
		SELECT balance::text
		FROM token_accounts
		WHERE address = $1 AND mint = $2
		FOR UPDATE
	`, account, mint).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get token balance: %w", err)
	}
	return parseUint(balance)
}

func (r *AccountRepo) DebitTokenTx(ctx context.Context, tx *sql.Tx, account model.Address, mint model.Address, amount uint64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE token_accounts
		SET balance = balance - $3::numeric, updated_at = now()
		WHERE address = $1 AND mint = $2 AND balance >= $3::numeric
	`, account, mint, formatUint(amount))
	if err != nil {
		return fmt.Errorf("debit token account: %w", err)
	}
	return requireOneRow(res, model.ErrInsufficientFunds)
}

func (r *AccountRepo) CreditTokenTx(ctx context.Context, tx *sql.Tx, account model.Address, mint model.Address, amount uint64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO token_accounts (address, mint, balance)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (address, mint) DO UPDATE SET
			balance = token_accounts.balance + $3::numeric,
			updated_at = now()
	`, account, mint, formatUint(amount))
	if err != nil {
		return fmt.Errorf("credit token account: %w", err)
	}
	return nil
}
