package accounts

import (
	"log/slog"
	"net/http"

	"github.com/taskledger/taskledger/internal/shared"
)

// AuthHeader carries the bearer token on requests and the freshly issued
// token on register/login responses.
const AuthHeader = "X-Auth-Token"

// Authenticator resolves the request token to an account before protected
// handlers run.
//
// Two checks in order: TokenService.Verify proves the token is authentic and
// unexpired, then the credential store proves it is still live (not logged
// out). A forged token fails the first, a revoked one the second. Every
// failure path produces the same bare 401 with an empty body; which step
// rejected is internal only.
type Authenticator struct {
	logger *slog.Logger
	tokens *TokenService
	repo   Repository
	cache  LivenessCache
}

// NewAuthenticator constructs the middleware. cache may be nil.
func NewAuthenticator(logger *slog.Logger, tokens *TokenService, repo Repository, cache LivenessCache) *Authenticator {
	return &Authenticator{logger: logger, tokens: tokens, repo: repo, cache: cache}
}

// Middleware wraps next, rejecting requests without a live session.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(AuthHeader)
		if token == "" {
			a.reject(w)
			return
		}

		claims, err := a.tokens.Verify(token)
		if err != nil || claims.Scope != ScopeAuth {
			a.reject(w)
			return
		}

		ctx := r.Context()

		if a.cache != nil {
			acc, hit, err := a.cache.Get(ctx, token)
			if err != nil {
				a.logger.Warn("liveness cache read", slog.Any("error", err))
			} else if hit && acc.ID == claims.AccountID {
				next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(ctx, &shared.Identity{
					AccountID: acc.ID,
					Email:     acc.Email,
					Token:     token,
				})))
				return
			}
		}

		acc, err := a.repo.FindByIDAndActiveToken(ctx, claims.AccountID, token, ScopeAuth)
		if err != nil {
			a.reject(w)
			return
		}

		if a.cache != nil {
			if err := a.cache.Set(ctx, token, acc.Project()); err != nil {
				a.logger.Warn("liveness cache write", slog.Any("error", err))
			}
		}

		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(ctx, &shared.Identity{
			AccountID: acc.ID,
			Email:     acc.Email,
			Token:     token,
		})))
	})
}

func (a *Authenticator) reject(w http.ResponseWriter) {
	w.WriteHeader(http.StatusUnauthorized)
}
