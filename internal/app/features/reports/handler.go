// internal/app/features/reports/handler.go
package reports

import (
	"context"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service interface {
	StatusCount(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID) (map[models.TaskStatus]int64, error)
	Overdue(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID) ([]models.Task, error)
}

type Handler struct {
	Reports Service
	Log     *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{Reports: svc, Log: logger}
}
