package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terrace-erp/terrace/internal/activity"
	"github.com/terrace-erp/terrace/internal/blocks"
	"github.com/terrace-erp/terrace/internal/customers"
	"github.com/terrace-erp/terrace/internal/notifications"
	"github.com/terrace-erp/terrace/internal/projects"
	"github.com/terrace-erp/terrace/internal/reports"
	"github.com/terrace-erp/terrace/internal/sales"
	"github.com/terrace-erp/terrace/internal/tasks"
	"github.com/terrace-erp/terrace/internal/users"
	"github.com/terrace-erp/terrace/jobs"
)

// RouterDeps aggregates the handlers mounted on the API router.
type RouterDeps struct {
	Logger        *slog.Logger
	Config        *Config
	Sales         *sales.Handler
	Projects      *projects.Handler
	Blocks        *blocks.Handler
	Customers     *customers.Handler
	Tasks         *tasks.Handler
	Notifications *notifications.Handler
	Activity      *activity.Handler
	Users         *users.Handler
	Reports       *reports.Handler
	Jobs          *jobs.Handler
}

// NewRouter builds the chi router with the full middleware stack and every
// API surface mounted under /api/v1.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: deps.Logger, Config: deps.Config}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/sales", deps.Sales.MountRoutes)
		api.Route("/projects", deps.Projects.MountRoutes)
		api.Route("/blocks", deps.Blocks.MountRoutes)
		api.Route("/customers", deps.Customers.MountRoutes)
		api.Route("/tasks", deps.Tasks.MountRoutes)
		api.Route("/notifications", deps.Notifications.MountRoutes)
		api.Route("/activity", deps.Activity.MountRoutes)
		api.Route("/users", deps.Users.MountRoutes)
		api.Route("/reports", deps.Reports.MountRoutes)
		if deps.Jobs != nil {
			api.Route("/jobs", deps.Jobs.MountRoutes)
		}
	})

	return r
}
