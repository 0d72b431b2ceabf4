// internal/app/features/login/login.go
package login

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/taskhub/internal/app/services/accounts"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type registerRequest struct {
	OrganizationName string `json:"organization_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	FullName         string `json:"full_name"`
}

type registerResponse struct {
	User         models.User         `json:"user"`
	Organization models.Organization `json:"organization"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/register                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleRegister creates an organization together with its first admin.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, org, err := h.Accounts.Register(ctx, accounts.RegisterInput{
		OrganizationName: in.OrganizationName,
		Email:            in.Email,
		Password:         in.Password,
		FullName:         in.FullName,
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, registerResponse{User: u, Organization: org})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLogin returns a bearer token and also stores it in the session
// cookie, so browsers and API clients can both use the result.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	if h.Guard != nil && !h.Guard.Allow(ratelimit.ClientIP(r), in.Email) {
		h.Log.Warn("login throttled",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
		w.Header().Set("Retry-After", "60")
		respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{
			Error: "too many sign-in attempts, try again later",
			Kind:  "rate_limited",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tok, exp, u, err := h.Accounts.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if h.Guard != nil {
		h.Guard.Succeeded(in.Email)
	}
	if h.SessionMgr != nil {
		if err := h.SessionMgr.SaveToken(w, r, tok); err != nil {
			// The bearer token in the body still works.
			h.Log.Warn("save session cookie failed",
				zap.String("user_id", u.ID.Hex()),
				zap.Error(err))
		}
	}
	respond.JSON(w, http.StatusOK, loginResponse{
		Token:     tok,
		TokenType: "Bearer",
		ExpiresAt: exp,
		User:      u,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/logout                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLogout expires the session cookie. Bearer tokens stay valid until
// they expire.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if h.SessionMgr != nil {
		if err := h.SessionMgr.Clear(w, r); err != nil {
			h.Log.Error("logout: save session", zap.Error(err))
		}
	}
	respond.NoContent(w)
}
