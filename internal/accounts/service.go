package accounts

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/taskledger/taskledger/internal/shared"
)

// Service wraps account business rules: registration, login, logout.
type Service struct {
	repo     Repository
	hasher   *Hasher
	tokens   *TokenService
	cache    LivenessCache
	validate *validator.Validate
}

// NewService constructs a new Service. cache may be nil when no liveness
// cache is deployed.
func NewService(repo Repository, hasher *Hasher, tokens *TokenService, cache LivenessCache) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		cache:    cache,
		validate: validator.New(),
	}
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Register creates an account for the given credentials and logs it in,
// returning the sanitized projection and the issued bearer token. Hashing is
// an explicit ordered step here, never a persistence-layer side effect.
func (s *Service) Register(ctx context.Context, email, password string) (Projection, string, error) {
	if err := s.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return Projection{}, "", fmt.Errorf("accounts: register: %w", shared.ErrValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Projection{}, "", err
	}

	acc, err := s.repo.Insert(ctx, email, hash)
	if err != nil {
		return Projection{}, "", err
	}

	token, err := s.issueAndAppend(ctx, acc.ID)
	if err != nil {
		return Projection{}, "", err
	}
	return acc.Project(), token, nil
}

// Login authenticates the credentials and issues a fresh token. Unknown
// email and wrong password are deliberately indistinguishable. Each login
// appends a new token, so several devices can hold live sessions at once.
func (s *Service) Login(ctx context.Context, email, password string) (Projection, string, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return Projection{}, "", shared.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, acc.PasswordHash)
	if err != nil {
		return Projection{}, "", err
	}
	if !ok {
		return Projection{}, "", shared.ErrInvalidCredentials
	}

	token, err := s.issueAndAppend(ctx, acc.ID)
	if err != nil {
		return Projection{}, "", err
	}
	return acc.Project(), token, nil
}

// Logout removes the token from the account's session list. Removing a
// token that is already gone succeeds silently.
func (s *Service) Logout(ctx context.Context, accountID int64, token string) error {
	if err := s.repo.RemoveToken(ctx, accountID, token); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, token); err != nil {
			return fmt.Errorf("accounts: invalidate liveness cache: %w", err)
		}
	}
	return nil
}

func (s *Service) issueAndAppend(ctx context.Context, accountID int64) (string, error) {
	token, expires, err := s.tokens.Issue(accountID, ScopeAuth)
	if err != nil {
		return "", err
	}
	tok := AuthToken{Scope: ScopeAuth, Token: token, IssuedAt: expires.Add(-s.tokens.ttl), ExpiresAt: expires}
	if err := s.repo.AppendToken(ctx, accountID, tok); err != nil {
		return "", err
	}
	return token, nil
}
