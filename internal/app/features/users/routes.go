// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /users. Who may create users is decided by the
// accounts service, not here.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/me", h.ServeMe)
	r.Patch("/me/password", h.HandleChangePassword)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{userID}", h.ServeView)
	return r
}
