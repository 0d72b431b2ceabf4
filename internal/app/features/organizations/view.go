// internal/app/features/organizations/view.go
package organizations

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
)

// ServeCurrent returns the caller's organization.
//
// Route: GET /organizations/current
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Accounts.Organization(ctx, actor)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, org)
}
