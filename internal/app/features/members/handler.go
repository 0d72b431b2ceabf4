// internal/app/features/members/handler.go
package members

import (
	"context"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Membership is implemented by membership.Service.
type Membership interface {
	AddMembers(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID, userIDs []primitive.ObjectID) ([]models.User, error)
	RemoveMember(ctx context.Context, actor accesspolicy.Actor, projectID, userID primitive.ObjectID) error
	ListMembers(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID) ([]models.User, error)
}

type Handler struct {
	Members Membership
	Log     *zap.Logger
}

func NewHandler(m Membership, logger *zap.Logger) *Handler {
	return &Handler{Members: m, Log: logger}
}
