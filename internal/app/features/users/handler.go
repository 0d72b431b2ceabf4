// internal/app/features/users/handler.go
package users

import (
	"context"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/services/accounts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Accounts is the user-administration part of accounts.Service.
type Accounts interface {
	Me(ctx context.Context, actor accesspolicy.Actor) (models.User, error)
	ChangePassword(ctx context.Context, actor accesspolicy.Actor, current, next string) error
	ListUsers(ctx context.Context, actor accesspolicy.Actor) ([]models.User, error)
	GetUser(ctx context.Context, actor accesspolicy.Actor, id primitive.ObjectID) (models.User, error)
	CreateUser(ctx context.Context, actor accesspolicy.Actor, in accounts.CreateUserInput) (models.User, error)
}

type Handler struct {
	Accounts Accounts
	Log      *zap.Logger
}

func NewHandler(acc Accounts, logger *zap.Logger) *Handler {
	return &Handler{Accounts: acc, Log: logger}
}
