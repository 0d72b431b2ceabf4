// internal/app/features/notifications/handler.go
package notifications

import (
	"context"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service interface {
	ListUnread(ctx context.Context, actor accesspolicy.Actor) ([]models.Notification, error)
	MarkRead(ctx context.Context, actor accesspolicy.Actor, id primitive.ObjectID) (models.Notification, error)
	MarkAllRead(ctx context.Context, actor accesspolicy.Actor) (int64, error)
}

type Handler struct {
	Notifications Service
	Log           *zap.Logger
}

func NewHandler(svc Service, logger *zap.Logger) *Handler {
	return &Handler{Notifications: svc, Log: logger}
}
