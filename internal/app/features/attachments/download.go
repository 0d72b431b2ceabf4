// internal/app/features/attachments/download.go
package attachments

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strconv"

	attachmentsvc "github.com/dalemusser/taskhub/internal/app/services/attachments"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeDownload streams the stored file.
//
// Route: GET /attachments/{attachmentID}/download
func (h *Handler) ServeDownload(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	id, err := respond.ObjectIDParam(r, "attachmentID")
	if err != nil {
		respond.Error(w, r, h.Log, attachmentsvc.ErrNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	a, rc, err := h.Attachments.Open(ctx, actor, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.FileName}))
	w.Header().Set("Content-Length", strconv.FormatInt(a.Size, 10))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are out; all that is left is to log.
		h.Log.Warn("attachment download interrupted",
			zap.String("attachment_id", a.ID.Hex()),
			zap.Error(err))
	}
}
