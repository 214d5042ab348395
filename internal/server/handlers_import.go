package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MacroMan5/budgetmanager/internal/importer"
	"github.com/MacroMan5/budgetmanager/internal/model"
)

// handleImport accepts a multipart upload (file + institution field) and
// runs one import for the account. Row-level problems come back inside
// the report with a 200; only setup and persistence failures are HTTP
// errors.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	// Account must exist and belong to the caller.
	if _, err := s.accounts.Get(r.Context(), userID(r), accountID); err != nil {
		s.respondError(w, http.StatusNotFound, "account not found")
		return
	}

	// MaxBytesReader enforces the upload cap; ParseMultipartForm's
	// argument only tunes how much is held in memory.
	r.Body = http.MaxBytesReader(w, r.Body, s.imports.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.imports.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
			return
		}
		s.respondError(w, http.StatusBadRequest, "parsing upload: "+err.Error())
		return
	}

	institution := r.FormValue("institution")
	if institution == "" {
		s.respondError(w, http.StatusBadRequest, "institution field is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	report, err := s.importer.Import(r.Context(), userID(r), accountID, institution, header.Filename, file)
	switch {
	case errors.Is(err, importer.ErrMappingNotFound):
		s.respondError(w, http.StatusNotFound, "no mapping configured for institution "+institution)
		return
	case errors.Is(err, importer.ErrEmptyFile):
		s.respondError(w, http.StatusBadRequest, "file contains no data rows")
		return
	case errors.Is(err, importer.ErrTooManyRows):
		s.respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, importer.ErrPersistenceFailed):
		s.respondError(w, http.StatusBadGateway, "import could not be saved; no rows were committed")
		return
	case err != nil:
		s.logger.Error("import failed", "account", accountID, "err", err)
		s.respondError(w, http.StatusInternalServerError, "import failed")
		return
	}

	if report.Errors == nil {
		report.Errors = []model.RowError{}
	}
	s.respondJSON(w, http.StatusOK, report)
}

type batchResponse struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name"`
	TotalRows  int    `json:"total_rows"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Rejected   int    `json:"rejected"`
	CreatedAt  string `json:"created_at"`
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	if _, err := s.accounts.Get(r.Context(), userID(r), accountID); err != nil {
		s.respondError(w, http.StatusNotFound, "account not found")
		return
	}

	batches, err := s.history.ListBatches(r.Context(), accountID)
	if err != nil {
		s.logger.Error("listing imports", "account", accountID, "err", err)
		s.respondError(w, http.StatusInternalServerError, "listing imports failed")
		return
	}

	out := make([]batchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, batchResponse{
			ID:         b.ID,
			FileName:   b.FileName,
			TotalRows:  b.TotalRows,
			Inserted:   b.Inserted,
			Duplicates: b.Duplicates,
			Rejected:   b.Rejected,
			CreatedAt:  b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	s.respondJSON(w, http.StatusOK, out)
}

type transactionResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id,omitempty"`
	BatchID     string `json:"batch_id,omitempty"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	if _, err := s.accounts.Get(r.Context(), userID(r), accountID); err != nil {
		s.respondError(w, http.StatusNotFound, "account not found")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	txns, err := s.history.ListTransactions(r.Context(), accountID, limit, offset)
	if err != nil {
		s.logger.Error("listing transactions", "account", accountID, "err", err)
		s.respondError(w, http.StatusInternalServerError, "listing transactions failed")
		return
	}

	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, transactionResponse{
			ID:          t.ID,
			Date:        t.Date.Format("2006-01-02"),
			Amount:      t.Amount.StringFixed(2),
			Description: t.Description,
			CategoryID:  t.CategoryID,
			BatchID:     t.BatchID,
		})
	}
	s.respondJSON(w, http.StatusOK, out)
}
