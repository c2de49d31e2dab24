package settlement

import (
	"context"
	"fmt"

	"github.com/kodax/bulkpay/internal/domain/model"
)

// FundVault credits amount native units to the vault's account. This is the
// operational funding path; it never runs as part of batch execution.
func (s *Service) FundVault(ctx context.Context, vaultAddr model.Address, amount uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			s.rollback(tx)
		}
	}()

	// The vault record must exist; funding an arbitrary address would
	// silently create an unowned pool.
	if _, err := s.vaults.GetForUpdateTx(ctx, tx, vaultAddr); err != nil {
		return fmt.Errorf("load vault %s: %w", vaultAddr, err)
	}
	if err := s.ledger.CreditTx(ctx, tx, vaultAddr, amount); err != nil {
		return fmt.Errorf("credit vault: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true

	s.logger.Info("vault funded", "vault", vaultAddr, "amount", amount)
	return nil
}

// FundTokenAccount credits amount token units of mint to a token account.
// Used to seed the vault's token-holding sub-account before token-mode
// batches execute.
func (s *Service) FundTokenAccount(ctx context.Context, account model.Address, mint model.Address, amount uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			s.rollback(tx)
		}
	}()

	if err := s.ledger.CreditTokenTx(ctx, tx, account, mint, amount); err != nil {
		return fmt.Errorf("credit token account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true

	s.logger.Info("token account funded", "account", account, "mint", mint, "amount", amount)
	return nil
}
