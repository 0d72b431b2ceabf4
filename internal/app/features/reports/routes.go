// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /projects/{projectID}/report.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/status-count", h.ServeStatusCount)
	r.Get("/overdue-tasks", h.ServeOverdue)
	return r
}
