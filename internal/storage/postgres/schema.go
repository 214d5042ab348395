package postgres

import (
	"context"
	"fmt"
)

// schema is applied by Migrate. Statements are idempotent so Migrate can
// run at every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id             UUID PRIMARY KEY,
		user_id        TEXT NOT NULL,
		name           TEXT NOT NULL,
		account_type   TEXT NOT NULL,
		bank_name      TEXT NOT NULL DEFAULT '',
		account_number TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL DEFAULT '',
		active         BOOLEAN NOT NULL DEFAULT true,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts (user_id)`,

	`CREATE TABLE IF NOT EXISTS institution_mappings (
		id                  UUID PRIMARY KEY,
		user_id             TEXT NOT NULL,
		institution         TEXT NOT NULL,
		date_column         INT NOT NULL,
		date_format         TEXT NOT NULL,
		amount_column       INT NOT NULL,
		flip_sign           BOOLEAN NOT NULL DEFAULT false,
		debit_column        INT NOT NULL,
		credit_column       INT NOT NULL,
		description_columns INT[] NOT NULL,
		has_header          BOOLEAN NOT NULL DEFAULT false,
		skip_rows           INT NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, institution)
	)`,

	`CREATE TABLE IF NOT EXISTS import_batches (
		id         UUID PRIMARY KEY,
		account_id UUID NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
		mapping_id UUID,
		file_name  TEXT NOT NULL,
		total_rows INT NOT NULL,
		inserted   INT NOT NULL,
		duplicates INT NOT NULL,
		rejected   INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id          UUID PRIMARY KEY,
		account_id  UUID NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
		date        DATE NOT NULL,
		amount      NUMERIC(14,2) NOT NULL,
		description TEXT NOT NULL,
		category_id TEXT NOT NULL DEFAULT '',
		signature   CHAR(64) NOT NULL,
		batch_id    UUID REFERENCES import_batches (id),
		created_at  TIMESTAMPTZ NOT NULL,
		UNIQUE (account_id, signature)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions (account_id, date)`,
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
