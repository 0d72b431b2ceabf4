package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "test-jwt-secret-must-be-32-chars-long!"

type fakeFetcher struct {
	users map[primitive.ObjectID]models.User
	err   error
}

func (f fakeFetcher) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user not found")
	}
	return u, nil
}

func newUser(role models.Role) models.User {
	return models.User{
		ID:             primitive.NewObjectID(),
		OrganizationID: primitive.NewObjectID(),
		Email:          "u@example.com",
		Role:           role,
	}
}

func newTestSessionManager(t *testing.T, users ...models.User) (*auth.SessionManager, *auth.TokenIssuer) {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", false, issuer, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	byID := map[primitive.ObjectID]models.User{}
	for _, u := range users {
		byID[u.ID] = u
	}
	sm.SetUserFetcher(fakeFetcher{users: byID})
	return sm, issuer
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := auth.NewTokenIssuer(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	u := newUser(models.RoleManager)

	tok, exp, err := issuer.Issue(u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry %v is not in the future", exp)
	}

	id, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != u.ID || id.OrgID != u.OrganizationID || id.Role != models.RoleManager {
		t.Errorf("identity mismatch: %+v", id)
	}
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer, _ := auth.NewTokenIssuer(testSecret, time.Hour)
	other, _ := auth.NewTokenIssuer("another-secret-that-is-32-chars-long!!", time.Hour)
	short, _ := auth.NewTokenIssuer(testSecret, time.Nanosecond)

	u := newUser(models.RoleAdmin)
	foreign, _, _ := other.Issue(u)
	expired, _, _ := short.Issue(u)
	time.Sleep(1100 * time.Millisecond)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"expired", expired},
		{"alg none", "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ4In0."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Verify(tt.token)
			if !errors.Is(err, apperr.ErrUnauthorized) {
				t.Errorf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestNewTokenIssuer_ShortSecret(t *testing.T) {
	if _, err := auth.NewTokenIssuer("short", time.Hour); err == nil {
		t.Error("expected error for short secret")
	}
}

func TestPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !auth.CheckPassword(hash, "correct horse") {
		t.Error("expected password to match")
	}
	if auth.CheckPassword(hash, "wrong horse") {
		t.Error("expected wrong password to fail")
	}
	if auth.CheckPassword("not-a-hash", "correct horse") {
		t.Error("expected malformed hash to fail")
	}
}

func TestLoadSessionUser_Bearer(t *testing.T) {
	u := newUser(models.RoleMember)
	sm, issuer := newTestSessionManager(t, u)
	tok, _, _ := issuer.Issue(u)

	var got *auth.SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.ID != u.ID.Hex() || got.OrganizationID != u.OrganizationID.Hex() {
		t.Errorf("unexpected session user: %+v", got)
	}
}

func TestLoadSessionUser_UsesFreshRole(t *testing.T) {
	u := newUser(models.RoleAdmin)
	sm, issuer := newTestSessionManager(t, func() models.User { d := u; d.Role = models.RoleMember; return d }())
	tok, _, _ := issuer.Issue(u)

	var got *auth.SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Role != string(models.RoleMember) {
		t.Errorf("expected demoted role from store, got %+v", got)
	}
}

func TestLoadSessionUser_OrgMismatchIsAnonymous(t *testing.T) {
	u := newUser(models.RoleAdmin)
	moved := u
	moved.OrganizationID = primitive.NewObjectID()
	sm, issuer := newTestSessionManager(t, moved)
	tok, _, _ := issuer.Issue(u)

	called := false
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("expected no user for org mismatch")
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("expected next handler to run")
	}
}

func TestLoadSessionUser_CookieSession(t *testing.T) {
	u := newUser(models.RoleManager)
	sm, issuer := newTestSessionManager(t, u)
	tok, _, _ := issuer.Issue(u)

	// Login response sets the cookie.
	loginRec := httptest.NewRecorder()
	if err := sm.SaveToken(loginRec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil), tok); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	cookies := loginRec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected session cookie")
	}

	var got *auth.SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != u.ID.Hex() {
		t.Errorf("expected user from cookie session, got %+v", got)
	}
}

func TestLoadSessionUser_FetchErrorIs500(t *testing.T) {
	issuer, _ := auth.NewTokenIssuer(testSecret, time.Hour)
	sm, _ := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "s", "", false, issuer, zap.NewNop())
	sm.SetUserFetcher(fakeFetcher{err: errors.New("db down")})

	u := newUser(models.RoleAdmin)
	tok, _, _ := issuer.Issue(u)

	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	h := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("protected handler should not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireSignedIn_WithUser(t *testing.T) {
	h := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil), &auth.SessionUser{ID: primitive.NewObjectID().Hex()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
