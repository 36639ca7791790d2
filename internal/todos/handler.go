package todos

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taskledger/taskledger/internal/platform/httpx"
	"github.com/taskledger/taskledger/internal/shared"
)

// Handler wires HTTP endpoints for to-do items. Every route requires an
// authenticated identity in the request context, so the router mounts this
// behind the accounts middleware.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers to-do routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

type createRequest struct {
	Text string `json:"text"`
}

type patchRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

type todoResponse struct {
	Todo *Todo `json:"todo"`
}

type listResponse struct {
	Todos []Todo `json:"todos"`
}

func owner(r *http.Request, w http.ResponseWriter) (int64, bool) {
	id := shared.IdentityFromContext(r.Context())
	if id == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return 0, false
	}
	return id.AccountID, true
}

func itemID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r, w)
	if !ok {
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	todo, err := h.service.Create(r.Context(), ownerID, req.Text)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, todoResponse{Todo: todo})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r, w)
	if !ok {
		return
	}
	items, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("list todos", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Todo{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Todos: items})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r, w)
	if !ok {
		return
	}
	id, err := itemID(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	todo, err := h.service.Get(r.Context(), ownerID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, todoResponse{Todo: todo})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r, w)
	if !ok {
		return
	}
	id, err := itemID(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	var req patchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	todo, err := h.service.Update(r.Context(), ownerID, id, Patch{Text: req.Text, Completed: req.Completed})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, todoResponse{Todo: todo})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(r, w)
	if !ok {
		return
	}
	id, err := itemID(r)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	todo, err := h.service.Delete(r.Context(), ownerID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, todoResponse{Todo: todo})
}
