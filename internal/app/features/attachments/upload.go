// internal/app/features/attachments/upload.go
package attachments

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	attachmentsvc "github.com/dalemusser/taskhub/internal/app/services/attachments"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/limits"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
)

// fileField is the multipart field carrying the upload.
const fileField = "file"

var errNoFile = apperr.Validation(`multipart field "file" is required`)

// ServeList handles GET /tasks/{taskID}/attachments.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	tid, err := respond.ObjectIDParam(r, "taskID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrTaskNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Attachments.List(ctx, actor, tid)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleUpload handles POST /tasks/{taskID}/attachments as
// multipart/form-data. The file part is streamed to storage without being
// buffered; the size limit is enforced while writing. The whole body is
// capped at MaxFileSize plus limits.MaxMultipartOverhead.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	tid, err := respond.ObjectIDParam(r, "taskID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrTaskNotFound)
		return
	}

	if h.MaxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxFileSize+limits.MaxMultipartOverhead)
	}
	mr, err := r.MultipartReader()
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Wrap(apperr.KindValidation, "expected a multipart/form-data body", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			respond.Error(w, r, h.Log, errNoFile)
			return
		}
		if err != nil {
			respond.Error(w, r, h.Log, apperr.Wrap(apperr.KindValidation, "malformed multipart body", err))
			return
		}
		if part.FormName() != fileField {
			_ = part.Close()
			continue
		}

		a, err := h.Attachments.Upload(ctx, actor, tid, attachmentsvc.UploadInput{
			FileName:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Body:        part,
		})
		_ = part.Close()
		if err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		respond.JSON(w, http.StatusCreated, a)
		return
	}
}
