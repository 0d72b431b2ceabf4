// internal/app/features/members/members.go
package members

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type addRequest struct {
	UserIDs []string `json:"user_ids"`
}

type addResponse struct {
	Added []models.User `json:"added"`
}

// ServeList handles GET /projects/{projectID}/members.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
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

	out, err := h.Members.ListMembers(ctx, actor, pid)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleAdd handles POST /projects/{projectID}/members. Ids that are
// malformed, unknown, in another organization or already members are
// skipped; if nothing is left the request fails with 400.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	pid, err := respond.ObjectIDParam(r, "projectID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrProjectNotFound)
		return
	}
	var in addRequest
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ids := make([]primitive.ObjectID, 0, len(in.UserIDs))
	for _, s := range in.UserIDs {
		if id, err := primitive.ObjectIDFromHex(s); err == nil {
			ids = append(ids, id)
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	added, err := h.Members.AddMembers(ctx, actor, pid, ids)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, addResponse{Added: added})
}

// HandleRemove handles DELETE /projects/{projectID}/members/{userID}.
// Removing someone who is not a member succeeds.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	pid, err := respond.ObjectIDParam(r, "projectID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrProjectNotFound)
		return
	}
	uid, err := respond.ObjectIDParam(r, "userID")
	if err != nil {
		respond.NoContent(w)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Members.RemoveMember(ctx, actor, pid, uid); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.NoContent(w)
}
