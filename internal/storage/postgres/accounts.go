package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MacroMan5/budgetmanager/internal/model"
)

// ErrDuplicateName is returned when a user already has an active account
// with the requested name.
var ErrDuplicateName = errors.New("account name already in use")

const accountColumns = `id, user_id, name, account_type, bank_name,
	account_number, description, active, created_at, updated_at`

// CreateAccount stores a new account after checking the name is free for
// the user.
func (s *Store) CreateAccount(ctx context.Context, a *model.Account) error {
	var taken bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM accounts
			WHERE user_id = $1 AND name = $2 AND active = true
		)`, a.UserID, a.Name).Scan(&taken)
	if err != nil {
		return fmt.Errorf("checking account name: %w", err)
	}
	if taken {
		return ErrDuplicateName
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.Active = true
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO accounts
			(id, user_id, name, account_type, bank_name, account_number, description, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.UserID, a.Name, a.Type, a.BankName, a.AccountNumber,
		a.Description, a.Active, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

// GetAccount returns an account by ID, scoped to its owner.
func (s *Store) GetAccount(ctx context.Context, userID, id string) (model.Account, error) {
	var a model.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = $1 AND id = $2`, userID, id).Scan(
		&a.ID, &a.UserID, &a.Name, &a.Type, &a.BankName,
		&a.AccountNumber, &a.Description, &a.Active, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("getting account: %w", err)
	}
	return a, nil
}

// ListAccounts returns a user's accounts, optionally filtered by type
// and active state.
func (s *Store) ListAccounts(ctx context.Context, userID string, accountType model.AccountType, activeOnly bool) ([]model.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	args := []any{userID}
	idx := 2

	if accountType != "" {
		q += fmt.Sprintf(" AND account_type = $%d", idx)
		args = append(args, accountType)
		idx++
	}
	if activeOnly {
		q += " AND active = true"
	}
	q += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Name, &a.Type, &a.BankName,
			&a.AccountNumber, &a.Description, &a.Active, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeactivateAccount soft-deletes an account. Transactions and import
// history are kept.
func (s *Store) DeactivateAccount(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET active = false, updated_at = $3
		WHERE user_id = $1 AND id = $2`, userID, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivating account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivating account: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTransactions returns an account's transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]model.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, date, amount, description, category_id, signature, COALESCE(batch_id::text, ''), created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var amount string
		if err := rows.Scan(
			&t.ID, &t.AccountID, &t.Date, &amount, &t.Description,
			&t.CategoryID, &t.Signature, &t.BatchID, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.Amount, err = decimalFromDB(amount)
		if err != nil {
			return nil, fmt.Errorf("parsing amount %q: %w", amount, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
