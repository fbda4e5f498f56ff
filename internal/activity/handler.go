package activity

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terrace-erp/terrace/internal/platform/httpx"
	"github.com/terrace-erp/terrace/internal/shared"
)

// Handler manages activity log endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers activity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/export.csv", h.exportCSV)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := parseListRequest(r)
	entries, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list activity", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "list activity failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
	})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	req := parseListRequest(r)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="activity.csv"`)
	if err := h.service.ExportCSV(r.Context(), req, w); err != nil {
		h.logger.Error("export activity", slog.Any("error", err))
	}
}

func parseListRequest(r *http.Request) ListRequest {
	q := r.URL.Query()
	req := ListRequest{
		Entity:   q.Get("entity"),
		EntityID: q.Get("entityId"),
	}
	req.ActorID, _ = strconv.ParseInt(q.Get("actorId"), 10, 64)
	if from, err := time.Parse("2006-01-02", q.Get("from")); err == nil {
		req.From = from
	}
	if to, err := time.Parse("2006-01-02", q.Get("to")); err == nil {
		// Inclusive end of day.
		req.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		req.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset >= 0 {
		req.Offset = offset
	}
	return req
}
