// Package ledger supplies the host-ledger collaborators the settlement core
// builds on: account balances, the native and token transfer primitives, and
// the vault's delegated signing authority.
package ledger

import (
	"context"
	"database/sql"

	"github.com/kodax/bulkpay/internal/domain/model"
)

// AccountRef is a caller-supplied account handle. During execution the engine
// matches these positionally against the batch's recipient list.
type AccountRef struct {
	Address model.Address
}

// Authority authorizes outgoing transfers from exactly one vault. It carries
// no key material: it is minted by re-deriving the vault's address from its
// authority seed, so only code holding the genuine vault record can obtain
// it. The zero value authorizes nothing, and the type is deliberately not
// serializable.
type Authority struct {
	vault model.Address
}

// Vault returns the vault this authority can move funds from.
func (a Authority) Vault() model.Address {
	return a.vault
}

// AuthorityFor derives the signing authority for v. It fails with
// model.ErrInvalidVault when the record's address does not re-derive from its
// authority seed, which rejects forged or tampered vault records.
func AuthorityFor(v *model.Vault) (Authority, error) {
	if v == nil || model.DeriveVaultAddress(v.Authority) != v.Address {
		return Authority{}, model.ErrInvalidVault
	}
	return Authority{vault: v.Address}, nil
}

// Ledger is the value-movement surface. Every method runs inside the caller's
// transaction: a batch execution's transfers commit or roll back as one unit
// with the lifecycle writes.
type Ledger interface {
	// BalanceTx returns the native balance of address with a row lock held
	// for the remainder of tx.
	BalanceTx(ctx context.Context, tx *sql.Tx, address model.Address) (uint64, error)

	// TransferTx moves amount native units from the authority's vault to the
	// destination. Fails with model.ErrInsufficientFunds when the vault
	// balance cannot cover it.
	TransferTx(ctx context.Context, tx *sql.Tx, auth Authority, to model.Address, amount uint64) error

	// TokenTransferTx issues a delegated token transfer of amount units of
	// mint from one token account to another, authorized by the vault's
	// authority and routed through the caller-nominated program handle.
	TokenTransferTx(ctx context.Context, tx *sql.Tx, program AccountRef, auth Authority, from, to AccountRef, mint model.Address, amount uint64) error

	// CreditTx funds an account's native balance. Used by the funding
	// operation and by tests; not reachable from batch execution.
	CreditTx(ctx context.Context, tx *sql.Tx, address model.Address, amount uint64) error

	// CreditTokenTx funds a token account balance.
	CreditTokenTx(ctx context.Context, tx *sql.Tx, account model.Address, mint model.Address, amount uint64) error
}
