package model

import "errors"

// Settlement error taxonomy. Every failure is a terminal, synchronous
// rejection of the current invocation; nothing is retried by the core and no
// partial writes survive a failed call.
var (
	// ErrInvalidRecipientCount rejects a recipient list outside [1,50] at creation.
	ErrInvalidRecipientCount = errors.New("invalid recipient count (must be 1-50)")

	// ErrInvalidBatchStatus rejects a lifecycle operation attempted from a
	// state that does not permit it.
	ErrInvalidBatchStatus = errors.New("invalid batch status for this operation")

	// ErrInvalidVault rejects a vault/batch pairing that does not match, or a
	// positionally matched destination account that does not match the
	// expected recipient address.
	ErrInvalidVault = errors.New("invalid vault")

	// ErrCannotCancelExecutedBatch rejects a cancel on a non-pending batch.
	ErrCannotCancelExecutedBatch = errors.New("cannot cancel executed batch")

	// ErrUnauthorized rejects a caller that is not the principal entitled to
	// the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsufficientFunds rejects an execution when the vault balance is
	// below the batch total.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrMissingAccounts rejects an execution whose supplied account list is
	// shorter than the recipient list requires. Historically reported as
	// insufficient funds; kept distinct so a malformed invocation is not
	// mistaken for a balance problem.
	ErrMissingAccounts = errors.New("missing destination accounts")

	// ErrAmountOverflow rejects a batch whose recipient amounts overflow a
	// uint64 accumulator.
	ErrAmountOverflow = errors.New("recipient amount sum overflows")

	// ErrMemoTooLong rejects a recipient memo over the fixed 32-byte capacity.
	ErrMemoTooLong = errors.New("recipient memo exceeds 32 bytes")

	// ErrVaultExists means a vault already occupies the derived address.
	ErrVaultExists = errors.New("vault already exists")

	// ErrBatchExists means a batch already occupies the derived address
	// (duplicate batch_id under the same vault).
	ErrBatchExists = errors.New("batch already exists")

	ErrVaultNotFound = errors.New("vault not found")
	ErrBatchNotFound = errors.New("batch not found")
)
