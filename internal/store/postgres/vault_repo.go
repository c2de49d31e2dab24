package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kodax/bulkpay/internal/domain/model"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres primary-key/unique
// conflict. Creation at an already-occupied deterministic address surfaces
// through this path.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

type VaultRepo struct {
	db *DB
}

func NewVaultRepo(db *DB) *VaultRepo {
	return &VaultRepo{db: db}
}

func (r *VaultRepo) InsertTx(ctx context.Context, tx *sql.Tx, v *model.Vault) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO vaults (address, authority, total_paid, batch_count, is_active, created_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6)
	`, v.Address, v.Authority, formatUint(v.TotalPaid), int64(v.BatchCount), v.IsActive, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrVaultExists
		}
		return fmt.Errorf("insert vault: %w", err)
	}
	return nil
}

func (r *VaultRepo) Get(ctx context.Context, address model.Address) (*model.Vault, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()
	return scanVault(r.db.QueryRowContext(ctx, `
		SELECT address, authority, total_paid::text, batch_count, is_active, created_at, updated_at
		FROM vaults
		WHERE address = $1
	`, address))
}

func (r *VaultRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, address model.Address) (*model.Vault, error) {
	return scanVault(tx.QueryRowContext(ctx, `
		SELECT address, authority, total_paid::text, batch_count, is_active, created_at, updated_at
		FROM vaults
		WHERE address = $1
		FOR UPDATE
	`, address))
}

func (r *VaultRepo) IncrementBatchCountTx(ctx context.Context, tx *sql.Tx, address model.Address) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE vaults
		SET batch_count = batch_count + 1, updated_at = now()
		WHERE address = $1
	`, address)
	if err != nil {
		return fmt.Errorf("increment batch count: %w", err)
	}
	return requireOneRow(res, model.ErrVaultNotFound)
}

func (r *VaultRepo) AddTotalPaidTx(ctx context.Context, tx *sql.Tx, address model.Address, amount uint64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE vaults
		SET total_paid = total_paid + $2::numeric, updated_at = now()
		WHERE address = $1
	`, address, formatUint(amount))
	if err != nil {
		return fmt.Errorf("add total paid: %w", err)
	}
	return requireOneRow(res, model.ErrVaultNotFound)
}

func scanVault(row *sql.Row) (*model.Vault, error) {
	var v model.Vault
	var totalPaid string
	var batchCount int64
	if err := row.Scan(&v.Address, &v.Authority, &totalPaid, &batchCount, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrVaultNotFound
		}
		return nil, fmt.Errorf("scan vault: %w", err)
	}
	paid, err := parseUint(totalPaid)
	if err != nil {
		return nil, fmt.Errorf("parse total_paid: %w", err)
	}
	v.TotalPaid = paid
	v.BatchCount = uint64(batchCount)
	return &v, nil
}

func requireOneRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}
