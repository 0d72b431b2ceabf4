// internal/app/features/organizations/handler.go
package organizations

import (
	"context"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Accounts is the tenancy part of accounts.Service.
type Accounts interface {
	Organization(ctx context.Context, actor accesspolicy.Actor) (models.Organization, error)
	DeleteOrganization(ctx context.Context, actor accesspolicy.Actor, orgID primitive.ObjectID) error
}

// Handler is the feature-level entry point for Organizations.
type Handler struct {
	Accounts   Accounts
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

// NewHandler constructs a new Organizations handler. sessionMgr may be nil.
func NewHandler(acc Accounts, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:   acc,
		SessionMgr: sessionMgr,
		Log:        logger,
	}
}
