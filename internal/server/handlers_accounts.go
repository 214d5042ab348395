package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MacroMan5/budgetmanager/internal/accounts"
	"github.com/MacroMan5/budgetmanager/internal/model"
	"github.com/MacroMan5/budgetmanager/internal/storage/postgres"
)

type accountRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	Description   string `json:"description"`
}

type accountResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	BankName     string `json:"bank_name,omitempty"`
	MaskedNumber string `json:"masked_number,omitempty"`
	DisplayName  string `json:"display_name"`
	Description  string `json:"description,omitempty"`
	Active       bool   `json:"active"`
}

func toAccountResponse(a model.Account) accountResponse {
	return accountResponse{
		ID:           a.ID,
		Name:         a.Name,
		Type:         string(a.Type),
		BankName:     a.BankName,
		MaskedNumber: a.MaskedNumber(),
		DisplayName:  a.DisplayName(),
		Description:  a.Description,
		Active:       a.Active,
	}
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	a, err := s.accounts.Create(r.Context(), userID(r), accounts.CreateParams{
		Name:          req.Name,
		Type:          model.AccountType(req.Type),
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		Description:   req.Description,
	})
	switch {
	case errors.Is(err, postgres.ErrDuplicateName):
		s.respondError(w, http.StatusConflict, "account name already in use")
		return
	case err != nil:
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, toAccountResponse(a))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.accounts.Get(r.Context(), userID(r), chi.URLParam(r, "accountID"))
	if errors.Is(err, postgres.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		s.logger.Error("getting account", "err", err)
		s.respondError(w, http.StatusInternalServerError, "getting account failed")
		return
	}
	s.respondJSON(w, http.StatusOK, toAccountResponse(a))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accountType := model.AccountType(r.URL.Query().Get("type"))
	activeOnly := r.URL.Query().Get("active") == "true"

	list, err := s.accounts.List(r.Context(), userID(r), accountType, activeOnly)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	out := make([]accountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAccountResponse(a))
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeactivateAccount(w http.ResponseWriter, r *http.Request) {
	err := s.accounts.Deactivate(r.Context(), userID(r), chi.URLParam(r, "accountID"))
	if errors.Is(err, postgres.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		s.logger.Error("deactivating account", "err", err)
		s.respondError(w, http.StatusInternalServerError, "deactivating account failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
