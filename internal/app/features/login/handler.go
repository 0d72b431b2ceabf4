// internal/app/features/login/handler.go
package login

import (
	"context"
	"time"

	"github.com/dalemusser/taskhub/internal/app/services/accounts"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.uber.org/zap"
)

// Accounts is the part of accounts.Service sign-in needs.
type Accounts interface {
	Register(ctx context.Context, in accounts.RegisterInput) (models.User, models.Organization, error)
	Authenticate(ctx context.Context, email, password string) (string, time.Time, models.User, error)
}

// Guard throttles sign-in attempts. *ratelimit.LoginLimiter satisfies it.
type Guard interface {
	Allow(ip, email string) bool
	Succeeded(email string)
}

type Handler struct {
	Accounts   Accounts
	SessionMgr *auth.SessionManager
	Guard      Guard // nil disables throttling
	Log        *zap.Logger
}

func NewHandler(acc Accounts, sessionMgr *auth.SessionManager, guard Guard, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:   acc,
		SessionMgr: sessionMgr,
		Guard:      guard,
		Log:        logger,
	}
}
