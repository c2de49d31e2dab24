package store

import (
	"context"
	"database/sql"

	"github.com/kodax/bulkpay/internal/domain/model"
)

// TxBeginner abstracts the ability to begin a database transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// VaultRepository provides access to vault records.
type VaultRepository interface {
	// InsertTx creates the vault record. Returns model.ErrVaultExists when
	// the derived address is already occupied.
	InsertTx(ctx context.Context, tx *sql.Tx, v *model.Vault) error

	Get(ctx context.Context, address model.Address) (*model.Vault, error)

	// GetForUpdateTx loads the vault with a row lock so concurrent lifecycle
	// operations against the same vault serialize.
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, address model.Address) (*model.Vault, error)

	// IncrementBatchCountTx bumps batch_count by one.
	IncrementBatchCountTx(ctx context.Context, tx *sql.Tx, address model.Address) error

	// AddTotalPaidTx adds amount to total_paid. total_paid never decreases.
	AddTotalPaidTx(ctx context.Context, tx *sql.Tx, address model.Address, amount uint64) error
}

// BatchRepository provides access to batch records and their recipient lists.
type BatchRepository interface {
	// InsertTx creates the batch record and its ordered recipient rows.
	// Returns model.ErrBatchExists when the derived address is occupied
	// (duplicate batch_id under the same vault).
	InsertTx(ctx context.Context, tx *sql.Tx, b *model.Batch) error

	Get(ctx context.Context, address model.Address) (*model.Batch, error)

	// GetForUpdateTx loads the batch (recipients included) with a row lock;
	// of two racing execute/cancel calls, the loser observes the winner's
	// terminal status.
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, address model.Address) (*model.Batch, error)

	// UpdateStatusTx moves the batch to status. executedAt is set only on
	// the Executed transition.
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, address model.Address, status model.BatchStatus, executedAt sql.NullTime) error

	// ListByVault returns batches under a vault, newest first.
	ListByVault(ctx context.Context, vault model.Address, limit, offset int) ([]model.Batch, error)
}

// AccountRepository provides access to ledger account balances. All mutating
// methods take the caller's transaction so a batch execution's transfers
// commit or roll back as one unit.
type AccountRepository interface {
	// GetBalanceForUpdateTx returns the native balance with a row lock.
	// A missing account reads as zero.
	GetBalanceForUpdateTx(ctx context.Context, tx *sql.Tx, address model.Address) (uint64, error)

	// DebitTx subtracts amount from the native balance; fails rather than
	// going below zero.
	DebitTx(ctx context.Context, tx *sql.Tx, address model.Address, amount uint64) error

	// CreditTx adds amount to the native balance, creating the account row
	// if absent.
	CreditTx(ctx context.Context, tx *sql.Tx, address model.Address, amount uint64) error

	// GetTokenBalanceForUpdateTx returns a token account's balance with a
	// row lock, keyed by the token account address and mint.
	GetTokenBalanceForUpdateTx(ctx context.Context, tx *sql.Tx, account model.Address, mint model.Address) (uint64, error)

	// DebitTokenTx subtracts amount from a token account balance; fails
	// rather than going below zero.
	DebitTokenTx(ctx context.Context, tx *sql.Tx, account model.Address, mint model.Address, amount uint64) error

	// CreditTokenTx adds amount to a token account balance, creating the row
	// if absent.
	CreditTokenTx(ctx context.Context, tx *sql.Tx, account model.Address, mint model.Address, amount uint64) error
}
