package importer

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MacroMan5/budgetmanager/internal/fingerprint"
	"github.com/MacroMan5/budgetmanager/internal/mapping"
	"github.com/MacroMan5/budgetmanager/internal/model"
)

// fakeStore keeps batches in memory and mimics the real store's
// all-or-nothing insert.
type fakeStore struct {
	txns      []model.Transaction
	batches   []model.ImportBatch
	loadErr   error
	insertErr error
}

func (s *fakeStore) LoadSignatures(_ context.Context, accountID string) (fingerprint.Set, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	set := fingerprint.NewSet()
	for _, t := range s.txns {
		if t.AccountID == accountID {
			set.Add(t.Signature)
		}
	}
	return set, nil
}

func (s *fakeStore) InsertBatch(_ context.Context, batch model.ImportBatch, txns []model.Transaction) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.batches = append(s.batches, batch)
	s.txns = append(s.txns, txns...)
	return nil
}

type fakeResolver struct {
	mappings map[string]mapping.Mapping
}

func (r *fakeResolver) ResolveMapping(_ context.Context, _, institution string) (mapping.Mapping, error) {
	m, ok := r.mappings[institution]
	if !ok {
		return mapping.Mapping{}, ErrMappingNotFound
	}
	return m, nil
}

func testMapping() mapping.Mapping {
	m := mapping.New()
	m.ID = "map-1"
	m.Institution = "testbank"
	m.DateColumn = 0
	m.DateFormat = "01/02/2006"
	m.AmountColumn = 1
	m.DescriptionColumns = []int{2}
	return m
}

func newTestImporter(store *fakeStore, m mapping.Mapping) *Importer {
	resolver := &fakeResolver{mappings: map[string]mapping.Mapping{m.Institution: m}}
	return New(store, resolver, log.New(io.Discard))
}

func runImport(t *testing.T, imp *Importer, file string) (*model.ImportReport, error) {
	t.Helper()
	return imp.Import(context.Background(), "user-1", "acct-1", "testbank", "upload.csv", strings.NewReader(file))
}

func TestImport_InsertsRows(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store, testMapping())

	report, err := runImport(t, imp, "01/15/2024,-42.50,Coffee Shop\n01/16/2024,-12.00,Lunch\n")
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 0, report.Duplicates)
	assert.Empty(t, report.Errors)
	require.Len(t, store.txns, 2)
	assert.Equal(t, "Coffee Shop", store.txns[0].Description)
	assert.Equal(t, "-42.50", store.txns[0].Amount.StringFixed(2))
	assert.NotEmpty(t, store.txns[0].Signature)
	assert.Equal(t, store.txns[0].BatchID, store.txns[1].BatchID)
}

func TestImport_DuplicateWithinFile(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store, testMapping())

	report, err := runImport(t, imp, "01/15/2024,-42.50,Coffee Shop\n01/15/2024,-42.50,Coffee Shop\n")
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Duplicates)
	assert.Empty(t, report.Errors)
	assert.Len(t, store.txns, 1)
}

func TestImport_Idempotent(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store, testMapping())
	file := "01/15/2024,-42.50,Coffee Shop\n01/16/2024,-12.00,Lunch\n"

	_, err := runImport(t, imp, file)
	require.NoError(t, err)

	report, err := runImport(t, imp, file)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 2, report.Duplicates)
	assert.Len(t, store.txns, 2)
}

func TestImport_PartialFailureIsolation(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store, testMapping())

	var b strings.Builder
	b.WriteString("01/10/2024,-1.00,Row one\n")
	b.WriteString("garbage-date,-2.00,Bad row\n")
	for i := 0; i < 8; i++ {
		b.WriteString("01/1" + string(rune('1'+i)) + "/2024,-3.00,Row\n")
	}

	report, err := runImport(t, imp, b.String())
	require.NoError(t, err)

	assert.Equal(t, 10, report.TotalRows)
	assert.Equal(t, 9, report.Inserted)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, model.ReasonDateParse, report.Errors[0].Reason)
	assert.Equal(t, 2, report.Errors[0].RowIndex)
}

func TestImport_BadDateRejected(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store, testMapping())

	report, err := runImport(t, imp, "13/40/2024,10.00,Bad Date\n")
	require.NoError(t, err)

	assert.Equal(t, 0, report.Inserted)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, model.ReasonDateParse, report.Errors[0].Reason)
	assert.Empty(t, store.txns)
}

func TestImport_AmbiguousAmountRejected(t *testing.T) {
	m := mapping.New()
	m.Institution = "testbank"
	m.DateColumn = 0
	m.DateFormat = "01/02/2006"
	m.DebitColumn = 2
	m.CreditColumn = 3
	m.DescriptionColumns = []int{1}

	store := &fakeStore{}
	imp := newTestImporter(store, m)

	report, err := runImport(t, imp, "01/15/2024,Odd row,10.00,20.00\n")
	require.NoError(t, err)

	assert.Equal(t, 0, report.Inserted)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, model.ReasonAmbiguousAmount, report.Errors[0].Reason)
	assert.Empty(t, store.txns)
}

func TestImport_UnknownInstitution(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store, testMapping())

	_, err := imp.Import(context.Background(), "user-1", "acct-1", "unknown", "f.csv", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrMappingNotFound)
	assert.Empty(t, store.txns)
}

func TestImport_EmptyFile(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store, testMapping())

	_, err := runImport(t, imp, "")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestImport_RowLimit(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store, testMapping())
	imp.MaxRows = 2

	_, err := runImport(t, imp, "01/15/2024,-1.00,A\n01/16/2024,-2.00,B\n01/17/2024,-3.00,C\n")
	assert.ErrorIs(t, err, ErrTooManyRows)
	assert.Empty(t, store.txns)

	report, err := runImport(t, imp, "01/15/2024,-1.00,A\n01/16/2024,-2.00,B\n")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserted)
}

func TestImport_HeaderOnlyFile(t *testing.T) {
	m := testMapping()
	m.HasHeader = true
	store := &fakeStore{}
	imp := newTestImporter(store, m)

	_, err := runImport(t, imp, "Date,Amount,Description\n")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestImport_SkipRowsAndHeader(t *testing.T) {
	m := testMapping()
	m.HasHeader = true
	m.SkipRows = 2
	store := &fakeStore{}
	imp := newTestImporter(store, m)

	file := "Account Summary\nBalance: 100.00\nDate,Amount,Description\n01/15/2024,-42.50,Coffee Shop\n"
	report, err := runImport(t, imp, file)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalRows)
	assert.Equal(t, 1, report.Inserted)
	// Row index counts from the top of the file.
	require.Len(t, store.txns, 1)
}

func TestImport_PersistenceFailureAbortsBatch(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("connection reset")}
	imp := newTestImporter(store, testMapping())

	_, err := runImport(t, imp, "01/15/2024,-42.50,Coffee Shop\n01/16/2024,-12.00,Lunch\n")
	assert.ErrorIs(t, err, ErrPersistenceFailed)
	assert.Empty(t, store.txns)
	assert.Empty(t, store.batches)
}

func TestImport_LoadSignaturesFailure(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("connection refused")}
	imp := newTestImporter(store, testMapping())

	_, err := runImport(t, imp, "01/15/2024,-42.50,Coffee Shop\n")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPersistenceFailed)
}

func TestImport_BatchRecordCounts(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store, testMapping())

	file := "01/15/2024,-42.50,Coffee Shop\n01/15/2024,-42.50,Coffee Shop\nbad,-1.00,Broken\n"
	_, err := runImport(t, imp, file)
	require.NoError(t, err)

	require.Len(t, store.batches, 1)
	b := store.batches[0]
	assert.Equal(t, 3, b.TotalRows)
	assert.Equal(t, 1, b.Inserted)
	assert.Equal(t, 1, b.Duplicates)
	assert.Equal(t, 1, b.Rejected)
	assert.Equal(t, "upload.csv", b.FileName)
	assert.Equal(t, "map-1", b.MappingID)
}

func TestImport_ChaseFixture(t *testing.T) {
	data, err := os.ReadFile("testdata/chase_checking.csv")
	require.NoError(t, err)

	m, ok := mapping.Preset("chase")
	require.True(t, ok)
	m.Institution = "testbank"

	store := &fakeStore{}
	imp := newTestImporter(store, m)

	report, err := runImport(t, imp, string(data))
	require.NoError(t, err)
	assert.Equal(t, 6, report.Inserted)
	assert.Empty(t, report.Errors)
}

func TestImport_BOMStripped(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store, testMapping())

	report, err := runImport(t, imp, "\xEF\xBB\xBF01/15/2024,-42.50,Coffee Shop\n")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
}
