package accounts_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskledger/taskledger/internal/accounts"
	"github.com/taskledger/taskledger/internal/shared"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*accounts.Account
	tokens map[int64][]accounts.AuthToken
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		byID:   make(map[int64]*accounts.Account),
		tokens: make(map[int64][]accounts.AuthToken),
	}
}

func (r *memoryRepo) FindByEmail(ctx context.Context, email string) (*accounts.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.byID {
		if acc.Email == email {
			copied := *acc
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) FindByID(ctx context.Context, id int64) (*accounts.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *acc
	return &copied, nil
}

func (r *memoryRepo) FindByIDAndActiveToken(ctx context.Context, id int64, token, scope string) (*accounts.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	for _, tok := range r.tokens[id] {
		if tok.Token == token && tok.Scope == scope && tok.ExpiresAt.After(time.Now()) {
			copied := *acc
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) Insert(ctx context.Context, email, passwordHash string) (*accounts.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, acc := range r.byID {
		if acc.Email == email {
			return nil, shared.ErrDuplicateEmail
		}
	}
	r.nextID++
	now := time.Now().UTC()
	acc := &accounts.Account{ID: r.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	r.byID[acc.ID] = acc
	copied := *acc
	return &copied, nil
}

func (r *memoryRepo) AppendToken(ctx context.Context, accountID int64, tok accounts.AuthToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[accountID] = append(r.tokens[accountID], tok)
	return nil
}

func (r *memoryRepo) RemoveToken(ctx context.Context, accountID int64, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.tokens[accountID][:0]
	for _, tok := range r.tokens[accountID] {
		if tok.Token != token {
			kept = append(kept, tok)
		}
	}
	r.tokens[accountID] = kept
	return nil
}

func (r *memoryRepo) ListTokens(ctx context.Context, accountID int64) ([]accounts.AuthToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]accounts.AuthToken, len(r.tokens[accountID]))
	copy(out, r.tokens[accountID])
	return out, nil
}

func (r *memoryRepo) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, toks := range r.tokens {
		kept := toks[:0]
		for _, tok := range toks {
			if tok.ExpiresAt.After(now) {
				kept = append(kept, tok)
			} else {
				removed++
			}
		}
		r.tokens[id] = kept
	}
	return removed, nil
}

var _ accounts.Repository = (*memoryRepo)(nil)

func newService(repo accounts.Repository) *accounts.Service {
	hasher := accounts.NewHasher(bcrypt.MinCost)
	tokens := accounts.NewTokenService("service-test-secret", time.Hour)
	return accounts.NewService(repo, hasher, tokens, nil)
}

func TestRegister(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	acc, token, err := svc.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", acc.Email)
	require.NotZero(t, acc.ID)
	require.NotEmpty(t, token)

	// The projection never leaks the hash, and the stored hash is not the
	// plaintext.
	stored, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))

	toks, err := repo.ListTokens(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, token, toks[0].Token)
	require.Equal(t, accounts.ScopeAuth, toks[0].Scope)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService(newMemoryRepo())
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "a@x.com", "other-password")
	require.ErrorIs(t, err, shared.ErrDuplicateEmail)
}

func TestRegisterValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"bad email", "not-an-email", "secret1"},
		{"empty email", "", "secret1"},
		{"short password", "a@x.com", "12345"},
		{"empty password", "a@x.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tc.email, tc.password)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}

	// Validation failures never touch storage.
	_, err := repo.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLoginIssuesFreshToken(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	acc, registerToken, err := svc.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	loginAcc, loginToken, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, acc, loginAcc)
	require.NotEqual(t, registerToken, loginToken)

	// Both sessions stay live: multi-device.
	toks, err := repo.ListTokens(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	require.Equal(t, registerToken, toks[0].Token)
	require.Equal(t, loginToken, toks[1].Token)
}

func TestLoginFailureIsUniform(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	acc, _, err := svc.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	_, _, wrongPass := svc.Login(ctx, "a@x.com", "wrongpass")
	require.ErrorIs(t, wrongPass, shared.ErrInvalidCredentials)

	_, _, unknown := svc.Login(ctx, "nobody@x.com", "secret1")
	require.ErrorIs(t, unknown, shared.ErrInvalidCredentials)

	// Same error text either way, so callers cannot enumerate accounts.
	require.Equal(t, wrongPass.Error(), unknown.Error())

	// A failed login appends nothing.
	toks, err := repo.ListTokens(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, toks, 1)
}

func TestLogoutIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	acc, token, err := svc.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, acc.ID, token))
	toks, err := repo.ListTokens(ctx, acc.ID)
	require.NoError(t, err)
	require.Empty(t, toks)

	// Second removal of the same token is a silent success.
	require.NoError(t, svc.Logout(ctx, acc.ID, token))
}

func TestLogoutLeavesOtherSessionsLive(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	acc, first, err := svc.Register(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	_, second, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, acc.ID, first))

	_, err = repo.FindByIDAndActiveToken(ctx, acc.ID, first, accounts.ScopeAuth)
	require.ErrorIs(t, err, shared.ErrNotFound)
	live, err := repo.FindByIDAndActiveToken(ctx, acc.ID, second, accounts.ScopeAuth)
	require.NoError(t, err)
	require.Equal(t, acc.ID, live.ID)
}

func TestLoginRejectsCorruptStoredHash(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	ctx := context.Background()

	_, err := repo.Insert(ctx, "a@x.com", strings.Repeat("x", 10))
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@x.com", "secret1")
	require.ErrorIs(t, err, shared.ErrIntegrity)
}
