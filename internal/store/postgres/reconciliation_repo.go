package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kodax/bulkpay/internal/domain/model"
	"github.com/kodax/bulkpay/internal/reconciliation"
)

// ReconciliationRepo serves the reconciler's read and persistence needs. It
// implements both reconciliation.LedgerSource and
// reconciliation.CheckRepository.
type ReconciliationRepo struct {
	db *DB
}

func NewReconciliationRepo(db *DB) *ReconciliationRepo {
	return &ReconciliationRepo{db: db}
}

// VaultSummaries returns every vault's stored counters next to the aggregates
// recomputed from its batch rows, in one grouped query.
func (r *ReconciliationRepo) VaultSummaries(ctx context.Context) ([]reconciliation.VaultSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT v.address, v.total_paid::text, v.batch_count,
		       COALESCE(SUM(b.total_amount) FILTER (WHERE b.status = $1), 0)::text,
		       COUNT(b.address)
		FROM vaults v
		LEFT JOIN batches b ON b.vault_address = v.address
		GROUP BY v.address, v.total_paid, v.batch_count
		ORDER BY v.address
	`, model.BatchStatusExecuted)
	if err != nil {
		return nil, fmt.Errorf("query vault summaries: %w", err)
	}
	defer rows.Close()

	var summaries []reconciliation.VaultSummary
	for rows.Next() {
		var (
			s             reconciliation.VaultSummary
			totalPaid     string
			executedTotal string
			batchCount    int64
			batchRows     int64
		)
		if err := rows.Scan(&s.Vault, &totalPaid, &batchCount, &executedTotal, &batchRows); err != nil {
			return nil, fmt.Errorf("scan vault summary: %w", err)
		}
		if s.TotalPaid, err = parseUint(totalPaid); err != nil {
			return nil, fmt.Errorf("parse total_paid: %w", err)
		}
		if s.ExecutedTotal, err = parseUint(executedTotal); err != nil {
			return nil, fmt.Errorf("parse executed total: %w", err)
		}
		s.BatchCount = uint64(batchCount)
		s.BatchRows = uint64(batchRows)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vault summaries: %w", err)
	}
	return summaries, nil
}

// SaveChecksTx appends one audit row per reconciled vault.
func (r *ReconciliationRepo) SaveChecksTx(ctx context.Context, tx *sql.Tx, checks []reconciliation.Check) error {
	for _, c := range checks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reconciliation_checks
				(vault_address, total_paid, executed_total, batch_count, batch_rows, paid_match, count_match, checked_at)
			VALUES ($1, $2::numeric, $3::numeric, $4, $5, $6, $7, $8)
		`, c.Vault, formatUint(c.TotalPaid), formatUint(c.ExecutedTotal),
			int64(c.BatchCount), int64(c.BatchRows), c.PaidMatch, c.CountMatch, c.CheckedAt)
		if err != nil {
			return fmt.Errorf("insert reconciliation check: %w", err)
		}
	}
	return nil
}
