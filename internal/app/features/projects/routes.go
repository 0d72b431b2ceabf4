// internal/app/features/projects/routes.go
package projects

import (
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /projects. Nested resources (members, tasks,
// reports) are mounted by their own features.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{projectID}", h.ServeView)
	r.Delete("/{projectID}", h.HandleDelete)
	return r
}
