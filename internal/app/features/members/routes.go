// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /projects/{projectID}/members.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleAdd)
	r.Delete("/{userID}", h.HandleRemove)
	return r
}
