package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"

	"github.com/openmeet/eventhub/internal/domain"
	"github.com/openmeet/eventhub/internal/repository"
	"github.com/openmeet/eventhub/pkg/auth"
	"github.com/openmeet/eventhub/pkg/config"
	"github.com/openmeet/eventhub/pkg/events"
	"github.com/openmeet/eventhub/pkg/logger"
)

type AccountService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.SessionResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.SessionResponse, error)
	GetAccountByID(ctx context.Context, id int64) (*domain.Profile, error)
	UpdateRole(ctx context.Context, id int64, role string) error
}

type accountService struct {
	accountRepo repository.AccountRepository
	eventBus    events.Publisher
	config      *config.Config
}

func NewAccountService(
	accountRepo repository.AccountRepository,
	eventBus events.Publisher,
	config *config.Config,
) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *accountService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.SessionResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// The payload never decides the role. Accounts start as members; roles
	// change only through the admin operation.
	req.Role = domain.RoleMember

	existing, err := s.accountRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, storeErr("check existing account", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("account with this email already exists")
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, storeErr("hash password", err)
	}

	account, err := s.accountRepo.Create(ctx, req, passwordHash)
	if err != nil {
		return nil, storeErr("create account", err)
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, storeErr("issue token", err)
	}

	if err := s.eventBus.Publish(ctx, events.AccountRegistered, events.AccountRegisteredEvent{
		AccountID: account.ID,
		Email:     account.Email,
		Name:      account.Name,
		Role:      account.Role,
		CreatedAt: account.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish account registered event", "error", err, "account_id", account.ID)
	}

	return &domain.SessionResponse{Token: token, Account: account.ToProfile()}, nil
}

func (s *accountService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.SessionResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, storeErr("find account", err)
	}
	if account == nil {
		// Same answer for unknown email and wrong password; no account
		// enumeration.
		return nil, domain.NewAuthenticationError("invalid credentials")
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, account.PasswordHash)
	if err != nil {
		return nil, storeErr("verify password", err)
	}
	if !valid {
		return nil, domain.NewAuthenticationError("invalid credentials")
	}

	token, err := s.issueToken(account)
	if err != nil {
		return nil, storeErr("issue token", err)
	}

	return &domain.SessionResponse{Token: token, Account: account.ToProfile()}, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, id int64) (*domain.Profile, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find account", err)
	}
	if account == nil {
		return nil, domain.NewNotFoundError("account not found")
	}
	return account.ToProfile(), nil
}

func (s *accountService) UpdateRole(ctx context.Context, id int64, role string) error {
	if !domain.IsValidRole(role) {
		return domain.NewValidationError("invalid role: %s", role)
	}
	if err := s.accountRepo.UpdateRole(ctx, id, role); err != nil {
		return storeErr("update role", err)
	}
	return nil
}

// issueToken always stamps the stored role, never anything from a request
// payload. The role in a live token is a snapshot until re-issue.
func (s *accountService) issueToken(account *domain.Account) (string, error) {
	return auth.NewSessionToken(account.ID, account.Role, s.config.Auth.JWTSecret, s.config.Auth.SessionTokenTTL)
}

// storeErr keeps typed domain errors intact and classifies anything else as
// a transient backing-store failure.
func storeErr(op string, err error) error {
	if domain.KindOf(err) != 0 {
		return err
	}
	return domain.NewTransientError("service temporarily unavailable", fmt.Errorf("%s: %w", op, err))
}
