// internal/app/features/reports/reports.go
package reports

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
)

// ServeStatusCount returns task counts keyed by status. Statuses with no
// tasks are reported as 0.
func (h *Handler) ServeStatusCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	pid, err := respond.ObjectIDParam(r, "projectID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrProjectNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	counts, err := h.Reports.StatusCount(ctx, actor, pid)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, counts)
}

// ServeOverdue lists tasks past their due date that are not done.
func (h *Handler) ServeOverdue(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	pid, err := respond.ObjectIDParam(r, "projectID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrProjectNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Reports.Overdue(ctx, actor, pid)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}
