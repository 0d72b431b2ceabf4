// internal/app/features/tasks/tasks.go
package tasks

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /projects/{projectID}/tasks?status=&priority=&assignee_id=               |
*─────────────────────────────────────────────────────────────────────────────*/

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

	var f taskstore.Filter
	if v := query.Get(r, "status"); v != "" {
		st := models.TaskStatus(v)
		f.Status = &st
	}
	if v := query.Get(r, "priority"); v != "" {
		pr := models.TaskPriority(v)
		f.Priority = &pr
	}
	if v := query.Get(r, "assignee_id"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			respond.Error(w, r, h.Log, apperr.Validation("assignee_id is not a valid id"))
			return
		}
		f.AssigneeID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Tasks.List(ctx, actor, pid, f)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /projects/{projectID}/tasks                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	pid, err := respond.ObjectIDParam(r, "projectID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrProjectNotFound)
		return
	}
	var body createRequest
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in, err := body.toInput()
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, err := h.Tasks.Create(ctx, actor, pid, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, t)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /tasks/{taskID}                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	id, err := respond.ObjectIDParam(r, "taskID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrTaskNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tasks.Get(ctx, actor, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, t)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /tasks/{taskID}                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	id, err := respond.ObjectIDParam(r, "taskID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrTaskNotFound)
		return
	}
	var body updateRequest
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in, err := body.toInput()
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, err := h.Tasks.Update(ctx, actor, id, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, t)
}
