package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kodax/bulkpay/internal/domain/model"
)

// Kind identifies a settlement lifecycle notification.
type Kind string

const (
	KindVaultInitialized Kind = "vault_initialized"
	KindBatchCreated     Kind = "batch_created"
	KindBatchExecuted    Kind = "batch_executed"
	KindBatchCancelled   Kind = "batch_cancelled"
)

// VaultInitialized is emitted once when a vault record is created.
type VaultInitialized struct {
	Vault     model.Address `json:"vault"`
	Authority model.Address `json:"authority"`
}

func (VaultInitialized) Kind() Kind { return KindVaultInitialized }

// BatchCreated is emitted when a batch record is written under a vault.
type BatchCreated struct {
	Batch          model.Address `json:"batch"`
	Vault          model.Address `json:"vault"`
	BatchID        uint64        `json:"batch_id"`
	RecipientCount int           `json:"recipient_count"`
	TotalAmount    uint64        `json:"total_amount"`
}

func (BatchCreated) Kind() Kind { return KindBatchCreated }

// BatchExecuted is emitted after a batch transitions to Executed and every
// recipient transfer has committed.
type BatchExecuted struct {
	Batch          model.Address `json:"batch"`
	TotalAmount    uint64        `json:"total_amount"`
	RecipientCount int           `json:"recipient_count"`
}

func (BatchExecuted) Kind() Kind { return KindBatchExecuted }

// BatchCancelled is emitted when a pending batch is cancelled by its creator.
type BatchCancelled struct {
	Batch model.Address `json:"batch"`
}

func (BatchCancelled) Kind() Kind { return KindBatchCancelled }

// Payload is implemented by every settlement event body.
type Payload interface {
	Kind() Kind
}

// Envelope is one immutable record in the external event log.
type Envelope struct {
	ID      uuid.UUID       `json:"id"`
	Kind    Kind            `json:"kind"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a payload into a log record with a fresh ID.
func NewEnvelope(at time.Time, p Payload) (Envelope, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return Envelope{
		ID:      uuid.New(),
		Kind:    p.Kind(),
		At:      at.UTC(),
		Payload: body,
	}, nil
}

// Publisher appends envelopes to an ordered, append-only log outside the
// core's storage. The core never reads the log back.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}
