package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskledger/taskledger/internal/platform/httpx"
	"github.com/taskledger/taskledger/internal/shared"
)

// Handler wires HTTP endpoints for account flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
	auth    *Authenticator
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, auth *Authenticator) *Handler {
	return &Handler{logger: logger, service: service, auth: auth}
}

// MountRoutes registers account routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Middleware)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	acc, token, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("register rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set(AuthHeader, token)
	httpx.JSON(w, http.StatusCreated, acc)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	acc, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("login rejected", slog.String("email", req.Email))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set(AuthHeader, token)
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	if id == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	if err := h.service.Logout(r.Context(), id.AccountID, id.Token); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	if id == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	httpx.JSON(w, http.StatusOK, Projection{ID: id.AccountID, Email: id.Email})
}
