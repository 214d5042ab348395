package postgres

import (
	"context"
	"fmt"

	"github.com/MacroMan5/budgetmanager/internal/fingerprint"
	"github.com/MacroMan5/budgetmanager/internal/model"
)

// LoadSignatures returns every fingerprint on record for an account.
// Called once per import run, never per row.
func (s *Store) LoadSignatures(ctx context.Context, accountID string) (fingerprint.Set, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT signature FROM transactions WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading signatures: %w", err)
	}
	defer rows.Close()

	set := fingerprint.NewSet()
	for rows.Next() {
		var sig string
		if err := rows.Scan(&sig); err != nil {
			return nil, fmt.Errorf("scanning signature: %w", err)
		}
		set.Add(sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading signatures: %w", err)
	}
	return set, nil
}

// InsertBatch persists an import batch and its transactions in one
// database transaction. A per-account advisory lock serializes commits
// for the same account; runs that both loaded signatures before either
// committed are caught by the unique (account_id, signature) index, and
// the caller must not run concurrent imports against one account. Any
// failure rolls back the whole batch.
func (s *Store) InsertBatch(ctx context.Context, batch model.ImportBatch, txns []model.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning batch transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, batch.AccountID); err != nil {
		return fmt.Errorf("locking account %s: %w", batch.AccountID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO import_batches
			(id, account_id, mapping_id, file_name, total_rows, inserted, duplicates, rejected, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)`,
		batch.ID, batch.AccountID, batch.MappingID, batch.FileName,
		batch.TotalRows, batch.Inserted, batch.Duplicates, batch.Rejected, batch.CreatedAt,
	); err != nil {
		return fmt.Errorf("inserting batch record: %w", err)
	}

	for _, t := range txns {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transactions
				(id, account_id, date, amount, description, category_id, signature, batch_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, t.AccountID, t.Date, t.Amount.StringFixed(2), t.Description,
			t.CategoryID, t.Signature, t.BatchID, t.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting transaction row %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// ListBatches returns the import history for an account, newest first.
func (s *Store) ListBatches(ctx context.Context, accountID string) ([]model.ImportBatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, COALESCE(mapping_id::text, ''), file_name,
		       total_rows, inserted, duplicates, rejected, created_at
		FROM import_batches
		WHERE account_id = $1
		ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	defer rows.Close()

	var out []model.ImportBatch
	for rows.Next() {
		var b model.ImportBatch
		if err := rows.Scan(
			&b.ID, &b.AccountID, &b.MappingID, &b.FileName,
			&b.TotalRows, &b.Inserted, &b.Duplicates, &b.Rejected, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
