// internal/app/features/projects/projects.go
package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	projectsvc "github.com/dalemusser/taskhub/internal/app/services/projects"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
)

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /projects                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Projects.List(ctx, actor)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /projects                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	var in createRequest
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.Create(ctx, actor, projectsvc.CreateInput{Name: in.Name, Description: in.Description})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, p)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /projects/{projectID}                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	id, err := respond.ObjectIDParam(r, "projectID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrProjectNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.Get(ctx, actor, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /projects/{projectID}                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	id, err := respond.ObjectIDParam(r, "projectID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrProjectNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Projects.Delete(ctx, actor, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.NoContent(w)
}
