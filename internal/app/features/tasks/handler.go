// internal/app/features/tasks/handler.go
package tasks

import (
	"context"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	tasksvc "github.com/dalemusser/taskhub/internal/app/services/tasks"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID, in tasksvc.CreateInput) (models.Task, error)
	Update(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID, in tasksvc.UpdateInput) (models.Task, error)
	Get(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID) (models.Task, error)
	List(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID, f taskstore.Filter) ([]models.Task, error)
}

type Handler struct {
	Tasks Service
	Log   *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{Tasks: svc, Log: logger}
}
