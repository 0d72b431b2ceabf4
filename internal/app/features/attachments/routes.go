// internal/app/features/attachments/routes.go
package attachments

import (
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// TaskRoutes is mounted at /tasks/{taskID}/attachments.
func TaskRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleUpload)
	return r
}

// Routes is mounted at /attachments.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/{attachmentID}/download", h.ServeDownload)
	return r
}
