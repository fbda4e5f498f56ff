package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terrace-erp/terrace/internal/platform/httpx"
	"github.com/terrace-erp/terrace/internal/shared"
)

// Handler manages reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/projects", h.projects)
	r.Get("/projects.csv", h.projectsCSV)
	r.Get("/collections", h.collections)
	r.Get("/collections.csv", h.collectionsCSV)
	r.Get("/overdue", h.overdue)
	r.Get("/overdue.csv", h.overdueCSV)
	r.Get("/dashboard.xlsx", h.dashboardXLSX)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.fail(w, "dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) projects(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ProjectSummaries(r.Context())
	if err != nil {
		h.fail(w, "project summaries", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"projects": summaries})
}

func (h *Handler) projectsCSV(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ProjectSummaries(r.Context())
	if err != nil {
		h.fail(w, "project summaries", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ReportFileName("projects", time.Now(), "csv")+`"`)
	if err := WriteProjectSummaryCSV(w, summaries); err != nil {
		h.logger.Error("write projects csv", slog.Any("error", err))
	}
}

func (h *Handler) collections(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	report, err := h.service.Collections(r.Context(), from, to)
	if err != nil {
		h.fail(w, "collections", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) collectionsCSV(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	report, err := h.service.Collections(r.Context(), from, to)
	if err != nil {
		h.fail(w, "collections", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ReportFileName("collections", to, "csv")+`"`)
	if err := WriteCollectionCSV(w, report); err != nil {
		h.logger.Error("write collections csv", slog.Any("error", err))
	}
}

func (h *Handler) overdue(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Overdue(r.Context())
	if err != nil {
		h.fail(w, "overdue", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) overdueCSV(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Overdue(r.Context())
	if err != nil {
		h.fail(w, "overdue", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ReportFileName("overdue", report.AsOf, "csv")+`"`)
	if err := WriteOverdueCSV(w, report); err != nil {
		h.logger.Error("write overdue csv", slog.Any("error", err))
	}
}

func (h *Handler) dashboardXLSX(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.fail(w, "dashboard", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ReportFileName("dashboard", time.Now(), "xlsx")+`"`)
	if err := WriteDashboardXLSX(w, dashboard); err != nil {
		h.logger.Error("write dashboard xlsx", slog.Any("error", err))
	}
}

// parseRange reads from/to query params, defaulting to the trailing 30 days.
func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if v := q.Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "invalid range", "from must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if v := q.Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "invalid range", "to must be YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	if to.Before(from) {
		httpx.Problem(w, http.StatusBadRequest, "invalid range", "to must not precede from")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, op+" failed", shared.UserSafeMessage(err))
}
