package blocks

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/terrace-erp/terrace/internal/platform/httpx"
	"github.com/terrace-erp/terrace/internal/shared"
)

// Handler manages block endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers block routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListBlocksRequest{
		Status: BlockStatus(q.Get("status")),
		Type:   BlockType(q.Get("type")),
	}
	req.ProjectID, _ = strconv.ParseInt(q.Get("projectId"), 10, 64)

	blocks, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list blocks", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "list blocks failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"blocks": blocks})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateBlockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	actor := shared.ActorFromContext(r.Context())
	block, err := h.service.Create(r.Context(), req, actor.ID)
	if err != nil {
		h.logger.Error("create block", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "create block failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, block)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	block, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get block", err)
		return
	}
	httpx.JSON(w, http.StatusOK, block)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateBlockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	actor := shared.ActorFromContext(r.Context())
	block, err := h.service.Update(r.Context(), id, req, actor.ID)
	if err != nil {
		h.respondError(w, "update block", err)
		return
	}
	httpx.JSON(w, http.StatusOK, block)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	actor := shared.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), id, actor.ID); err != nil {
		if errors.Is(err, shared.ErrInvalidStatus) {
			httpx.Problem(w, http.StatusConflict, "cannot delete", err.Error())
			return
		}
		h.respondError(w, "delete block", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "invalid id", "path parameter id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "not found", shared.UserSafeMessage(err))
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, op+" failed", shared.UserSafeMessage(err))
}
