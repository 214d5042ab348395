package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MacroMan5/budgetmanager/internal/mapping"
	"github.com/MacroMan5/budgetmanager/internal/storage/postgres"
)

// mappingRequest mirrors mapping.Mapping with JSON tags. Column fields
// use pointers so "absent" and "column zero" stay distinguishable.
type mappingRequest struct {
	Institution        string `json:"institution"`
	DateColumn         *int   `json:"date_column"`
	DateFormat         string `json:"date_format"`
	AmountColumn       *int   `json:"amount_column"`
	FlipSign           bool   `json:"flip_sign"`
	DebitColumn        *int   `json:"debit_column"`
	CreditColumn       *int   `json:"credit_column"`
	DescriptionColumns []int  `json:"description_columns"`
	HasHeader          bool   `json:"has_header"`
	SkipRows           int    `json:"skip_rows"`
}

func (req mappingRequest) toMapping(userID string) mapping.Mapping {
	m := mapping.New()
	m.UserID = userID
	m.Institution = req.Institution
	m.DateFormat = req.DateFormat
	m.FlipSign = req.FlipSign
	m.DescriptionColumns = req.DescriptionColumns
	m.HasHeader = req.HasHeader
	m.SkipRows = req.SkipRows
	if req.DateColumn != nil {
		m.DateColumn = *req.DateColumn
	}
	if req.AmountColumn != nil {
		m.AmountColumn = *req.AmountColumn
	}
	if req.DebitColumn != nil {
		m.DebitColumn = *req.DebitColumn
	}
	if req.CreditColumn != nil {
		m.CreditColumn = *req.CreditColumn
	}
	return m
}

type mappingResponse struct {
	ID                 string `json:"id"`
	Institution        string `json:"institution"`
	DateColumn         int    `json:"date_column"`
	DateFormat         string `json:"date_format"`
	AmountColumn       int    `json:"amount_column"`
	FlipSign           bool   `json:"flip_sign"`
	DebitColumn        int    `json:"debit_column"`
	CreditColumn       int    `json:"credit_column"`
	DescriptionColumns []int  `json:"description_columns"`
	HasHeader          bool   `json:"has_header"`
	SkipRows           int    `json:"skip_rows"`
	AmountPolicy       string `json:"amount_policy"`
}

func toMappingResponse(m mapping.Mapping) mappingResponse {
	return mappingResponse{
		ID:                 m.ID,
		Institution:        m.Institution,
		DateColumn:         m.DateColumn,
		DateFormat:         m.DateFormat,
		AmountColumn:       m.AmountColumn,
		FlipSign:           m.FlipSign,
		DebitColumn:        m.DebitColumn,
		CreditColumn:       m.CreditColumn,
		DescriptionColumns: m.DescriptionColumns,
		HasHeader:          m.HasHeader,
		SkipRows:           m.SkipRows,
		AmountPolicy:       string(m.AmountPolicy()),
	}
}

// respondValidationErrors reports every configuration problem at once
// so the UI can flag fields together.
func (s *Server) respondValidationErrors(w http.ResponseWriter, errs []mapping.ValidationError) {
	details := make([]map[string]string, 0, len(errs))
	for _, e := range errs {
		details = append(details, map[string]string{
			"field":  e.Field,
			"detail": e.Description,
		})
	}
	s.respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":   "invalid mapping",
		"details": details,
	})
}

func (s *Server) handleCreateMapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	m := req.toMapping(userID(r))
	if errs := m.Validate(); len(errs) > 0 {
		s.respondValidationErrors(w, errs)
		return
	}

	if err := s.mappings.CreateMapping(r.Context(), &m); err != nil {
		s.logger.Error("creating mapping", "err", err)
		s.respondError(w, http.StatusInternalServerError, "creating mapping failed")
		return
	}
	s.respondJSON(w, http.StatusCreated, toMappingResponse(m))
}

func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	m, err := s.mappings.GetMapping(r.Context(), userID(r), chi.URLParam(r, "mappingID"))
	if errors.Is(err, postgres.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "mapping not found")
		return
	}
	if err != nil {
		s.logger.Error("getting mapping", "err", err)
		s.respondError(w, http.StatusInternalServerError, "getting mapping failed")
		return
	}
	s.respondJSON(w, http.StatusOK, toMappingResponse(m))
}

func (s *Server) handleListMappings(w http.ResponseWriter, r *http.Request) {
	list, err := s.mappings.ListMappings(r.Context(), userID(r))
	if err != nil {
		s.logger.Error("listing mappings", "err", err)
		s.respondError(w, http.StatusInternalServerError, "listing mappings failed")
		return
	}

	out := make([]mappingResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMappingResponse(m))
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateMapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	m := req.toMapping(userID(r))
	m.ID = chi.URLParam(r, "mappingID")
	if errs := m.Validate(); len(errs) > 0 {
		s.respondValidationErrors(w, errs)
		return
	}

	err := s.mappings.UpdateMapping(r.Context(), &m)
	if errors.Is(err, postgres.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "mapping not found")
		return
	}
	if err != nil {
		s.logger.Error("updating mapping", "err", err)
		s.respondError(w, http.StatusInternalServerError, "updating mapping failed")
		return
	}
	s.respondJSON(w, http.StatusOK, toMappingResponse(m))
}

func (s *Server) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	err := s.mappings.DeleteMapping(r.Context(), userID(r), chi.URLParam(r, "mappingID"))
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "mapping not found")
		return
	case errors.Is(err, postgres.ErrMappingInUse):
		s.respondError(w, http.StatusConflict, "mapping is referenced by import batches")
		return
	case err != nil:
		s.logger.Error("deleting mapping", "err", err)
		s.respondError(w, http.StatusInternalServerError, "deleting mapping failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	out := make([]mappingResponse, 0)
	for _, name := range mapping.PresetNames() {
		if m, ok := mapping.Preset(name); ok {
			out = append(out, toMappingResponse(m))
		}
	}
	s.respondJSON(w, http.StatusOK, out)
}
