package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/MacroMan5/budgetmanager/internal/model"
)

// Repo is the storage surface the service needs.
type Repo interface {
	CreateAccount(ctx context.Context, a *model.Account) error
	GetAccount(ctx context.Context, userID, id string) (model.Account, error)
	ListAccounts(ctx context.Context, userID string, accountType model.AccountType, activeOnly bool) ([]model.Account, error)
	DeactivateAccount(ctx context.Context, userID, id string) error
}

// Service provides account business logic on top of storage.
type Service struct {
	repo Repo
}

// NewService creates an account Service.
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

var validTypes = map[model.AccountType]bool{
	model.AccountTypeChecking:     true,
	model.AccountTypeSavings:      true,
	model.AccountTypeCreditCard:   true,
	model.AccountTypeMortgage:     true,
	model.AccountTypeLineOfCredit: true,
}

// CreateParams holds the user-supplied fields for a new account.
type CreateParams struct {
	Name          string
	Type          model.AccountType
	BankName      string
	AccountNumber string
	Description   string
}

// Create validates params and stores a new account for the user.
func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (model.Account, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return model.Account{}, fmt.Errorf("account name is required")
	}
	if !validTypes[params.Type] {
		return model.Account{}, fmt.Errorf("unknown account type %q", params.Type)
	}

	a := model.Account{
		UserID:        userID,
		Name:          name,
		Type:          params.Type,
		BankName:      strings.TrimSpace(params.BankName),
		AccountNumber: strings.TrimSpace(params.AccountNumber),
		Description:   params.Description,
	}
	if err := s.repo.CreateAccount(ctx, &a); err != nil {
		return model.Account{}, err
	}
	return a, nil
}

// Get returns one of the user's accounts.
func (s *Service) Get(ctx context.Context, userID, id string) (model.Account, error) {
	return s.repo.GetAccount(ctx, userID, id)
}

// List returns the user's accounts, optionally filtered by type.
func (s *Service) List(ctx context.Context, userID string, accountType model.AccountType, activeOnly bool) ([]model.Account, error) {
	if accountType != "" && !validTypes[accountType] {
		return nil, fmt.Errorf("unknown account type %q", accountType)
	}
	return s.repo.ListAccounts(ctx, userID, accountType, activeOnly)
}

// Deactivate soft-deletes an account, keeping its transaction history.
func (s *Service) Deactivate(ctx context.Context, userID, id string) error {
	return s.repo.DeactivateAccount(ctx, userID, id)
}
