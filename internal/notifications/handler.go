package notifications

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/terrace-erp/terrace/internal/platform/httpx"
	"github.com/terrace-erp/terrace/internal/shared"
)

// Handler manages notification feed endpoints. The feed is always scoped to
// the acting staff member.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/unread-count", h.unreadCount)
	r.Post("/{id}/read", h.markRead)
	r.Post("/read-all", h.markAllRead)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	q := r.URL.Query()
	unreadOnly := q.Get("unread") == "true"
	limit, _ := strconv.Atoi(q.Get("limit"))

	feed, err := h.service.List(r.Context(), actor.ID, unreadOnly, limit)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "list notifications failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": feed})
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	count, err := h.service.UnreadCount(r.Context(), actor.ID)
	if err != nil {
		h.logger.Error("unread count", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "unread count failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"count": count})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "invalid id", "path parameter id must be a positive integer")
		return
	}
	actor := shared.ActorFromContext(r.Context())
	if err := h.service.MarkRead(r.Context(), actor.ID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "not found", shared.UserSafeMessage(err))
			return
		}
		h.logger.Error("mark read", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "mark read failed", shared.UserSafeMessage(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if err := h.service.MarkAllRead(r.Context(), actor.ID); err != nil {
		h.logger.Error("mark all read", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "mark all read failed", shared.UserSafeMessage(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
