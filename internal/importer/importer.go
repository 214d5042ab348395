// Package importer coordinates one CSV import run end to end: resolve
// the institution mapping, split the file into rows, normalize each row,
// drop duplicates by fingerprint, and persist the surviving transactions
// as a single atomic batch.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/MacroMan5/budgetmanager/internal/fingerprint"
	"github.com/MacroMan5/budgetmanager/internal/mapping"
	"github.com/MacroMan5/budgetmanager/internal/model"
	"github.com/MacroMan5/budgetmanager/internal/normalize"
)

// Setup and batch-level failures. Row-level failures are collected in
// the report and never surface as errors.
var (
	ErrMappingNotFound   = errors.New("no mapping found for institution")
	ErrEmptyFile         = errors.New("file contains no data rows")
	ErrTooManyRows       = errors.New("file exceeds the row limit")
	ErrPersistenceFailed = errors.New("persisting import batch failed")
)

// Store is the persistence collaborator. InsertBatch must be atomic:
// either every transaction in the batch is committed or none are. The
// store also guarantees at most one in-flight import per account; the
// importer relies on that exclusion rather than enforcing it.
type Store interface {
	LoadSignatures(ctx context.Context, accountID string) (fingerprint.Set, error)
	InsertBatch(ctx context.Context, batch model.ImportBatch, txns []model.Transaction) error
}

// MappingResolver looks up the institution mapping for a user. A miss is
// reported as ErrMappingNotFound.
type MappingResolver interface {
	ResolveMapping(ctx context.Context, userID, institution string) (mapping.Mapping, error)
}

// Importer drives CSV import runs. Safe for concurrent use across
// different accounts; runs for the same account are serialized by the
// store.
type Importer struct {
	store    Store
	mappings MappingResolver
	logger   *log.Logger

	// MaxRows caps the data rows accepted per file. Zero means no cap.
	// Set before the first Import call.
	MaxRows int
}

// New creates an Importer.
func New(store Store, mappings MappingResolver, logger *log.Logger) *Importer {
	return &Importer{store: store, mappings: mappings, logger: logger}
}

// Import runs one import: file rows from r are normalized under the
// user's mapping for institution and inserted for accountID. The report
// is returned for every completed run; a non-nil error means setup or
// persistence failed and nothing was inserted.
func (imp *Importer) Import(ctx context.Context, userID, accountID, institution, fileName string, r io.Reader) (*model.ImportReport, error) {
	m, err := imp.mappings.ResolveMapping(ctx, userID, institution)
	if err != nil {
		return nil, fmt.Errorf("resolving mapping for %q: %w", institution, err)
	}

	rows, err := readRows(r, m)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	if imp.MaxRows > 0 && len(rows) > imp.MaxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(rows), imp.MaxRows)
	}

	report := &model.ImportReport{TotalRows: len(rows)}

	// Normalize every row, collecting rejections. One bad row never
	// aborts the run.
	drafts := make([]model.TransactionDraft, 0, len(rows))
	for _, row := range rows {
		draft, err := normalize.Row(row.cells, row.index, m)
		if err != nil {
			var rowErr normalize.RowError
			if !errors.As(err, &rowErr) {
				return nil, fmt.Errorf("normalizing row %d: %w", row.index, err)
			}
			report.Errors = append(report.Errors, model.RowError{
				RowIndex: rowErr.Row(),
				Reason:   rowErr.Reason(),
				Detail:   rowErr.Error(),
			})
			continue
		}
		drafts = append(drafts, draft)
	}

	// Existing signatures are loaded once per run, then extended in
	// memory so duplicates within this file are caught as well.
	seen, err := imp.store.LoadSignatures(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading signatures for account %s: %w", accountID, err)
	}

	batchID := uuid.NewString()
	now := time.Now().UTC()

	txns := make([]model.Transaction, 0, len(drafts))
	for _, draft := range drafts {
		sig := fingerprint.Signature(accountID, draft)
		if seen.Contains(sig) {
			report.Duplicates++
			continue
		}
		seen.Add(sig)
		txns = append(txns, model.Transaction{
			ID:          uuid.NewString(),
			AccountID:   accountID,
			Date:        draft.Date,
			Amount:      draft.Amount,
			Description: draft.Description,
			Signature:   sig,
			BatchID:     batchID,
			CreatedAt:   now,
		})
	}

	batch := model.ImportBatch{
		ID:         batchID,
		AccountID:  accountID,
		MappingID:  m.ID,
		FileName:   fileName,
		TotalRows:  report.TotalRows,
		Inserted:   len(txns),
		Duplicates: report.Duplicates,
		Rejected:   len(report.Errors),
		CreatedAt:  now,
	}

	if err := imp.store.InsertBatch(ctx, batch, txns); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	report.Inserted = len(txns)

	imp.logger.Info("import complete",
		"account", accountID,
		"institution", institution,
		"total", report.TotalRows,
		"inserted", report.Inserted,
		"duplicates", report.Duplicates,
		"rejected", len(report.Errors),
	)
	return report, nil
}
