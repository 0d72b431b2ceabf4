package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const tokenKey = "access_token"

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the caller resolved for a request. IDs are hex strings.
type SessionUser struct {
	ID             string
	OrganizationID string
	Role           string
	Email          string
	Name           string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects u into r's context. Handler tests use it to skip the
// token round trip.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// UserFetcher loads the current state of a user.
type UserFetcher interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// SessionManager resolves callers from a bearer token or from the token
// saved in the session cookie at login.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	tokens  *TokenIssuer
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds the cookie store. In production (secure=true)
// cookies are Secure + SameSite=None; in local dev over http, Lax.
func NewSessionManager(sessionKey, name, domain string, secure bool, tokens *TokenIssuer, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide at least 32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if tokens == nil {
		return nil, errors.New("session manager needs a token issuer")
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(tokens.TTL().Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, tokens: tokens, log: logger}, nil
}

// SetUserFetcher makes LoadSessionUser re-read the user on every request so
// role changes and deletions take effect immediately.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// Tokens returns the issuer used to sign session tokens.
func (sm *SessionManager) Tokens() *TokenIssuer { return sm.tokens }

// SaveToken stores token in the session cookie.
func (sm *SessionManager) SaveToken(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// Clear expires the session cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context when the request carries a
// valid token. Requests without one continue anonymously.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := sm.tokenFrom(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := sm.tokens.Verify(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		u := &SessionUser{
			ID:             id.UserID.Hex(),
			OrganizationID: id.OrgID.Hex(),
			Role:           string(id.Role),
		}

		if sm.fetcher != nil {
			fresh, err := sm.fetcher.GetByID(r.Context(), id.UserID)
			switch {
			case errors.Is(err, apperr.ErrNotFound):
				next.ServeHTTP(w, r)
				return
			case err != nil:
				sm.log.Error("load session user failed",
					zap.String("user_id", id.UserID.Hex()),
					zap.Error(err))
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			// The token's organization must still be the user's.
			if fresh.OrganizationID != id.OrgID {
				next.ServeHTTP(w, r)
				return
			}
			u.Role = string(fresh.Role)
			u.Email = fresh.Email
			u.Name = fresh.FullName
		}

		next.ServeHTTP(w, withUser(r, u))
	})
}

func (sm *SessionManager) tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		const prefix = "bearer "
		if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
			return strings.TrimSpace(h[len(prefix):])
		}
		return ""
	}
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return ""
	}
	s, _ := sess.Values[tokenKey].(string)
	return s
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return RequireSignedIn(next)
}

// RequireSignedIn responds 401 when no user is in context.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeJSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
