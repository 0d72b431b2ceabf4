package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// WithUser puts u into the request context the way LoadSessionUser would,
// bypassing token verification.
func WithUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:             u.ID.Hex(),
		Name:           u.FullName,
		Email:          u.Email,
		Role:           string(u.Role),
		OrganizationID: u.OrganizationID.Hex(),
	})
}

// JSONRequest builds a request whose body is v encoded as JSON. A string v
// is sent as-is, so tests can post malformed bodies.
func JSONRequest(t testing.TB, method, target string, v any) *http.Request {
	t.Helper()
	var body io.Reader
	switch x := v.(type) {
	case nil:
	case string:
		body = strings.NewReader(x)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// Serve runs req through router mounted at prefix, as a signed-in user when
// u is non-nil.
func Serve(router http.Handler, prefix string, req *http.Request, u *models.User) *httptest.ResponseRecorder {
	if u != nil {
		req = WithUser(req, *u)
	}
	root := chi.NewRouter()
	root.Mount(prefix, router)
	rec := httptest.NewRecorder()
	root.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON decodes the recorded body into v.
func DecodeJSON(t testing.TB, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// AssertStatus fails the test when the response status differs.
func AssertStatus(t testing.TB, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}
