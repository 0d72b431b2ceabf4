// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the Organization routes under /organizations.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/current", h.ServeCurrent)

	// Admin only; enforced by the accounts service.
	r.Delete("/{orgID}", h.HandleDelete)
	return r
}
