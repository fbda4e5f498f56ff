package customers

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

// Handler manages customer endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListCustomersRequest{Search: q.Get("search"), Limit: 50}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		req.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset >= 0 {
		req.Offset = offset
	}

	customers, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "list customers failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"customers": customers,
		"total":     total,
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	actor := shared.ActorFromContext(r.Context())
	customer, err := h.service.Create(r.Context(), req, actor.ID)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			httpx.Problem(w, http.StatusConflict, "duplicate customer", "a customer with this national id already exists")
			return
		}
		h.logger.Error("create customer", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "create customer failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	actor := shared.ActorFromContext(r.Context())
	customer, err := h.service.Update(r.Context(), id, req, actor.ID)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			httpx.Problem(w, http.StatusConflict, "duplicate customer", "a customer with this national id already exists")
			return
		}
		h.respondError(w, "update customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
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
		h.respondError(w, "delete customer", err)
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
