package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/MacroMan5/budgetmanager/internal/importer"
	"github.com/MacroMan5/budgetmanager/internal/mapping"
)

// ErrMappingInUse is returned when deleting a mapping that import
// batches still reference.
var ErrMappingInUse = errors.New("mapping is referenced by import batches")

const mappingColumns = `id, user_id, institution, date_column, date_format,
	amount_column, flip_sign, debit_column, credit_column,
	description_columns, has_header, skip_rows, created_at, updated_at`

// CreateMapping validates and stores a new institution mapping.
func (s *Store) CreateMapping(ctx context.Context, m *mapping.Mapping) error {
	if errs := m.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid mapping: %w", errs[0])
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO institution_mappings
			(id, user_id, institution, date_column, date_format,
			 amount_column, flip_sign, debit_column, credit_column,
			 description_columns, has_header, skip_rows, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		m.ID, m.UserID, m.Institution, m.DateColumn, m.DateFormat,
		m.AmountColumn, m.FlipSign, m.DebitColumn, m.CreditColumn,
		pq.Array(intsToInt64(m.DescriptionColumns)), m.HasHeader, m.SkipRows,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}
	return nil
}

// ResolveMapping implements importer.MappingResolver.
func (s *Store) ResolveMapping(ctx context.Context, userID, institution string) (mapping.Mapping, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mappingColumns+`
		FROM institution_mappings
		WHERE user_id = $1 AND institution = $2`, userID, institution)

	m, err := scanMapping(row)
	if errors.Is(err, sql.ErrNoRows) {
		return mapping.Mapping{}, importer.ErrMappingNotFound
	}
	if err != nil {
		return mapping.Mapping{}, fmt.Errorf("resolving mapping: %w", err)
	}
	return m, nil
}

// GetMapping returns a mapping by ID for a user.
func (s *Store) GetMapping(ctx context.Context, userID, id string) (mapping.Mapping, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mappingColumns+`
		FROM institution_mappings
		WHERE user_id = $1 AND id = $2`, userID, id)

	m, err := scanMapping(row)
	if errors.Is(err, sql.ErrNoRows) {
		return mapping.Mapping{}, ErrNotFound
	}
	if err != nil {
		return mapping.Mapping{}, fmt.Errorf("getting mapping: %w", err)
	}
	return m, nil
}

// ListMappings returns all mappings owned by a user.
func (s *Store) ListMappings(ctx context.Context, userID string) ([]mapping.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+mappingColumns+`
		FROM institution_mappings
		WHERE user_id = $1
		ORDER BY institution`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var out []mapping.Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateMapping validates and replaces a mapping's configuration.
func (s *Store) UpdateMapping(ctx context.Context, m *mapping.Mapping) error {
	if errs := m.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid mapping: %w", errs[0])
	}
	m.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE institution_mappings
		SET institution = $3, date_column = $4, date_format = $5,
		    amount_column = $6, flip_sign = $7, debit_column = $8,
		    credit_column = $9, description_columns = $10,
		    has_header = $11, skip_rows = $12, updated_at = $13
		WHERE user_id = $1 AND id = $2`,
		m.UserID, m.ID, m.Institution, m.DateColumn, m.DateFormat,
		m.AmountColumn, m.FlipSign, m.DebitColumn, m.CreditColumn,
		pq.Array(intsToInt64(m.DescriptionColumns)), m.HasHeader, m.SkipRows,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating mapping: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating mapping: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMapping removes a mapping unless import batches reference it.
func (s *Store) DeleteMapping(ctx context.Context, userID, id string) error {
	var inUse bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM import_batches WHERE mapping_id = $1)`, id,
	).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("checking mapping references: %w", err)
	}
	if inUse {
		return ErrMappingInUse
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM institution_mappings WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMapping(row rowScanner) (mapping.Mapping, error) {
	m := mapping.New()
	var descCols []int64
	err := row.Scan(
		&m.ID, &m.UserID, &m.Institution, &m.DateColumn, &m.DateFormat,
		&m.AmountColumn, &m.FlipSign, &m.DebitColumn, &m.CreditColumn,
		pq.Array(&descCols), &m.HasHeader, &m.SkipRows, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return mapping.Mapping{}, err
	}
	m.DescriptionColumns = int64sToInts(descCols)
	return m, nil
}

func intsToInt64(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func int64sToInts(in []int64) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
