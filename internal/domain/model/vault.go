package model

import "time"

// Vault is a custodial pool holding funds under one authority. Only the
// authority can execute batches against it. TotalPaid accumulates the
// total_amount of every batch that reaches Executed and never decreases.
type Vault struct {
	Address    Address   `db:"address"`
	Authority  Address   `db:"authority"`
	TotalPaid  uint64    `db:"total_paid"`
	BatchCount uint64    `db:"batch_count"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
