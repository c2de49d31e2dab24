package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kodax/bulkpay/internal/domain/model"
)

type BatchRepo struct {
	db *DB
}

func NewBatchRepo(db *DB) *BatchRepo {
	return &BatchRepo{db: db}
}

// InsertTx writes the batch record and its ordered recipient rows. The batch
// address primary key enforces the deterministic-address occupancy contract:
// a duplicate batch_id under the same vault derives the same address and
// conflicts.
func (r *BatchRepo) InsertTx(ctx context.Context, tx *sql.Tx, b *model.Batch) error {
	var mint sql.NullString
	if b.TokenMint != nil {
		mint = sql.NullString{String: string(*b.TokenMint), Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO batches (address, vault_address, creator, batch_id, recipient_count, total_amount, token_mint, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9)
	`, b.Address, b.Vault, b.Creator, int64(b.BatchID), b.RecipientCount,
		formatUint(b.TotalAmount), mint, b.Status, b.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrBatchExists
		}
		return fmt.Errorf("insert batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO batch_recipients (batch_address, idx, recipient_address, amount, memo)
		VALUES ($1, $2, $3, $4::numeric, $5)
	`)
	if err != nil {
		return fmt.Errorf("prepare recipient insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range b.Recipients {
		if _, err := stmt.ExecContext(ctx, b.Address, i, rec.Address, formatUint(rec.Amount), rec.Memo); err != nil {
			return fmt.Errorf("insert recipient %d: %w", i, err)
		}
	}
	return nil
}

func (r *BatchRepo) Get(ctx context.Context, address model.Address) (*model.Batch, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	b, err := scanBatch(r.db.QueryRowContext(ctx, `
		SELECT address, vault_address, creator, batch_id, recipient_count, total_amount::text, token_mint, status, created_at, executed_at
		FROM batches
		WHERE address = $1
	`, address))
	if err != nil {
		return nil, err
	}
	b.Recipients, err = r.loadRecipients(ctx, r.db.DB, address)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BatchRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, address model.Address) (*model.Batch, error) {
	b, err := scanBatch(tx.QueryRowContext(ctx, `
		SELECT address, vault_address, creator, batch_id, recipient_count, total_amount::text, token_mint, status, created_at, executed_at
		FROM batches
		WHERE address = $1
		FOR UPDATE
	`, address))
	if err != nil {
		return nil, err
	}
	b.Recipients, err = r.loadRecipients(ctx, tx, address)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BatchRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, address model.Address, status model.BatchStatus, executedAt sql.NullTime) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE batches
		SET status = $2, executed_at = COALESCE($3, executed_at)
		WHERE address = $1
	`, address, status, executedAt)
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	return requireOneRow(res, model.ErrBatchNotFound)
}

func (r *BatchRepo) ListByVault(ctx context.Context, vault model.Address, limit, offset int) ([]model.Batch, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT address, vault_address, creator, batch_id, recipient_count, total_amount::text, token_mint, status, created_at, executed_at
		FROM batches
		WHERE vault_address = $1
		ORDER BY created_at DESC, batch_id DESC
		LIMIT $2 OFFSET $3
	`, vault, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []model.Batch
	for rows.Next() {
		b, err := scanBatchRows(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *b)
	}
	return batches, rows.Err()
}

// querier lets recipient loading run against either the pool or a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *BatchRepo) loadRecipients(ctx context.Context, q querier, batch model.Address) ([]model.Recipient, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT recipient_address, amount::text, memo
		FROM batch_recipients
		WHERE batch_address = $1
		ORDER BY idx ASC
	`, batch)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	var recipients []model.Recipient
	for rows.Next() {
		var rec model.Recipient
		var amount string
		if err := rows.Scan(&rec.Address, &amount, &rec.Memo); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		if rec.Amount, err = parseUint(amount); err != nil {
			return nil, fmt.Errorf("parse recipient amount: %w", err)
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row *sql.Row) (*model.Batch, error) {
	b, err := scanBatchFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrBatchNotFound
		}
		return nil, err
	}
	return b, nil
}

func scanBatchRows(rows *sql.Rows) (*model.Batch, error) {
	return scanBatchFrom(rows)
}

func scanBatchFrom(s rowScanner) (*model.Batch, error) {
	var b model.Batch
	var batchID int64
	var total string
	var mint sql.NullString
	var executedAt sql.NullTime
	if err := s.Scan(&b.Address, &b.Vault, &b.Creator, &batchID, &b.RecipientCount,
		&total, &mint, &b.Status, &b.CreatedAt, &executedAt); err != nil {
		return nil, err
	}
	b.BatchID = uint64(batchID)
	amount, err := parseUint(total)
	if err != nil {
		return nil, fmt.Errorf("parse total_amount: %w", err)
	}
	b.TotalAmount = amount
	if mint.Valid {
		m := model.Address(mint.String)
		b.TokenMint = &m
	}
	if executedAt.Valid {
		t := executedAt.Time
		b.ExecutedAt = &t
	}
	return &b, nil
}
