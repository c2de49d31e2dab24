package model

import (
	"math"
	"time"
)

type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "PENDING"
	BatchStatusExecuting BatchStatus = "EXECUTING"
	BatchStatusExecuted  BatchStatus = "EXECUTED"
	BatchStatusCancelled BatchStatus = "CANCELLED"
)

func (s BatchStatus) String() string {
	return string(s)
}

// Terminal reports whether no further transition is permitted.
func (s BatchStatus) Terminal() bool {
	return s == BatchStatusExecuted || s == BatchStatusCancelled
}

const (
	// MinRecipients and MaxRecipients bound the recipient list at creation.
	MinRecipients = 1
	MaxRecipients = 50

	// MaxMemoBytes is the fixed memo capacity carried per recipient.
	MaxMemoBytes = 32
)

// Recipient is one destination in a batch: fixed at creation, never mutated.
type Recipient struct {
	Address Address `db:"recipient_address"`
	Amount  uint64  `db:"amount"`
	Memo    string  `db:"memo"`
}

// Batch is an immutable-once-created instruction to pay a fixed list of
// recipients. Status only moves forward: Pending → Executing → Executed,
// or Pending → Cancelled.
type Batch struct {
	Address        Address     `db:"address"`
	Vault          Address     `db:"vault_address"`
	Creator        Address     `db:"creator"`
	BatchID        uint64      `db:"batch_id"`
	RecipientCount int         `db:"recipient_count"`
	TotalAmount    uint64      `db:"total_amount"`
	TokenMint      *Address    `db:"token_mint"`
	Status         BatchStatus `db:"status"`
	CreatedAt      time.Time   `db:"created_at"`
	ExecutedAt     *time.Time  `db:"executed_at"`
	Recipients     []Recipient
}

// SumAmounts computes the batch total with checked arithmetic. Overflowing
// a uint64 accumulator is a validation failure, not a wrap: a manipulated
// list must not declare a smaller total than its recipients sum to.
func SumAmounts(recipients []Recipient) (uint64, bool) {
	var total uint64
	for _, r := range recipients {
		if r.Amount > math.MaxUint64-total {
			return 0, false
		}
		total += r.Amount
	}
	return total, true
}
