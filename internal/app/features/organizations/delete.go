// internal/app/features/organizations/delete.go
package organizations

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/services/accounts"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete deletes the caller's organization with everything in it.
// The caller's own account goes with it, so the session cookie is cleared.
//
// Route: DELETE /organizations/{orgID}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	oid, err := respond.ObjectIDParam(r, "orgID")
	if err != nil {
		respond.Error(w, r, h.Log, accounts.ErrOrgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Accounts.DeleteOrganization(ctx, actor, oid); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if h.SessionMgr != nil {
		if err := h.SessionMgr.Clear(w, r); err != nil {
			h.Log.Warn("clear session after organization delete", zap.Error(err))
		}
	}
	respond.NoContent(w)
}
