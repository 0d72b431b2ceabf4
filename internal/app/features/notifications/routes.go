// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/unread", h.ServeUnread)
	r.Patch("/read-all", h.HandleMarkAllRead)
	r.Patch("/{notificationID}/read", h.HandleMarkRead)
	return r
}
