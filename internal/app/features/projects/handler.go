// internal/app/features/projects/handler.go
package projects

import (
	"context"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	projectsvc "github.com/dalemusser/taskhub/internal/app/services/projects"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, actor accesspolicy.Actor, in projectsvc.CreateInput) (models.Project, error)
	Get(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID) (models.Project, error)
	List(ctx context.Context, actor accesspolicy.Actor) ([]models.Project, error)
	Delete(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID) error
}

type Handler struct {
	Projects Service
	Log      *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{Projects: svc, Log: logger}
}
