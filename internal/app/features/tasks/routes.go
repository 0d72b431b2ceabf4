// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// ProjectRoutes is mounted at /projects/{projectID}/tasks.
func ProjectRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	return r
}

// Routes is mounted at /tasks.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/{taskID}", h.ServeView)
	r.Patch("/{taskID}", h.HandleUpdate)
	return r
}
