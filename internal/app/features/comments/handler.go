// internal/app/features/comments/handler.go
package comments

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service interface {
	Add(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID, content string) (models.Comment, error)
	List(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID) ([]models.Comment, error)
}

type Handler struct {
	Comments Service
	Log      *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{Comments: svc, Log: logger}
}

// Routes is mounted at /tasks/{taskID}/comments.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleAdd)
	return r
}

type addRequest struct {
	Content string `json:"content"`
}

// ServeList returns the task's comments, oldest first.
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

	out, err := h.Comments.List(ctx, actor, tid)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

// HandleAdd posts a comment. The task's assignee is notified unless they
// wrote it.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.Require(w, r)
	if !ok {
		return
	}
	tid, err := respond.ObjectIDParam(r, "taskID")
	if err != nil {
		respond.Error(w, r, h.Log, projectpolicy.ErrTaskNotFound)
		return
	}
	var in addRequest
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Comments.Add(ctx, actor, tid, in.Content)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, c)
}
