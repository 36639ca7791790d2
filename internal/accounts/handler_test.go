package accounts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/taskledger/taskledger/internal/accounts"
	_ "github.com/taskledger/taskledger/testing"
)

func newAccountsRouter(t *testing.T) (*authFixture, http.Handler) {
	t.Helper()
	fix := newAuthFixture(t, nil)
	handler := accounts.NewHandler(discardLogger(), fix.svc, fix.auth)
	r := chi.NewRouter()
	r.Route("/accounts", handler.MountRoutes)
	return fix, r
}

func doJSON(t *testing.T, router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(accounts.AuthHeader, token)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestRegisterEndpoint(t *testing.T) {
	_, router := newAccountsRouter(t)

	res := doJSON(t, router, http.MethodPost, "/accounts", `{"email":"a@x.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, res.Code)

	token := res.Header().Get(accounts.AuthHeader)
	require.NotEmpty(t, token)

	var acc accounts.Projection
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &acc))
	require.Equal(t, "a@x.com", acc.Email)
	require.NotZero(t, acc.ID)
	// Only id and email cross the boundary.
	require.NotContains(t, res.Body.String(), "password")
	require.NotContains(t, res.Body.String(), "token")
}

func TestRegisterEndpointFailures(t *testing.T) {
	_, router := newAccountsRouter(t)

	res := doJSON(t, router, http.MethodPost, "/accounts", `{"email":"a@x.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, res.Code)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"duplicate email", `{"email":"a@x.com","password":"another1"}`, http.StatusConflict},
		{"short password", `{"email":"b@x.com","password":"12345"}`, http.StatusBadRequest},
		{"bad email", `{"email":"nope","password":"secret1"}`, http.StatusBadRequest},
		{"malformed body", `{"email":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := doJSON(t, router, http.MethodPost, "/accounts", tc.body, "")
			require.Equal(t, tc.status, res.Code)
			require.Empty(t, res.Header().Get(accounts.AuthHeader))
		})
	}
}

func TestLoginEndpointFailureHasNoDetail(t *testing.T) {
	_, router := newAccountsRouter(t)

	res := doJSON(t, router, http.MethodPost, "/accounts", `{"email":"a@x.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, res.Code)

	res = doJSON(t, router, http.MethodPost, "/accounts/login", `{"email":"a@x.com","password":"wrongpass"}`, "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, res.Body.String())
	require.Empty(t, res.Header().Get(accounts.AuthHeader))

	unknown := doJSON(t, router, http.MethodPost, "/accounts/login", `{"email":"nobody@x.com","password":"secret1"}`, "")
	require.Equal(t, res.Code, unknown.Code)
	require.Equal(t, res.Body.String(), unknown.Body.String())
}

// The full session lifecycle: register, second login, selective logout.
func TestSessionLifecycle(t *testing.T) {
	fix, router := newAccountsRouter(t)

	res := doJSON(t, router, http.MethodPost, "/accounts", `{"email":"a@x.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, res.Code)
	first := res.Header().Get(accounts.AuthHeader)
	require.NotEmpty(t, first)

	var acc accounts.Projection
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &acc))

	res = doJSON(t, router, http.MethodPost, "/accounts/login", `{"email":"a@x.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, res.Code)
	second := res.Header().Get(accounts.AuthHeader)
	require.NotEmpty(t, second)
	require.NotEqual(t, first, second)

	// Both tokens answer the identity check.
	for _, token := range []string{first, second} {
		res = doJSON(t, router, http.MethodGet, "/accounts/me", "", token)
		require.Equal(t, http.StatusOK, res.Code)
		var me accounts.Projection
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &me))
		require.Equal(t, acc, me)
	}

	// Logging out the first session leaves the second live.
	res = doJSON(t, router, http.MethodPost, "/accounts/logout", "", first)
	require.Equal(t, http.StatusOK, res.Code)
	require.Empty(t, res.Body.String())

	res = doJSON(t, router, http.MethodGet, "/accounts/me", "", first)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	res = doJSON(t, router, http.MethodGet, "/accounts/me", "", second)
	require.Equal(t, http.StatusOK, res.Code)

	// The already-removed token stays removed; a second logout at the
	// service level still succeeds silently.
	require.NoError(t, fix.svc.Logout(context.Background(), acc.ID, first))
}

func TestIdentityCheckRejectsGarbageLikeMissingHeader(t *testing.T) {
	_, router := newAccountsRouter(t)

	missing := doJSON(t, router, http.MethodGet, "/accounts/me", "", "")
	garbage := doJSON(t, router, http.MethodGet, "/accounts/me", "", "xx")

	require.Equal(t, http.StatusUnauthorized, missing.Code)
	require.Equal(t, missing.Code, garbage.Code)
	require.Equal(t, missing.Body.String(), garbage.Body.String())
	require.Empty(t, garbage.Body.String())
}
