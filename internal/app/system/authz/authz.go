// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/respond"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor returns the authenticated caller as an accesspolicy.Actor.
// Malformed ids or an unknown role fail closed (ok=false), so callers can
// trust that ok=true means a usable identity.
func Actor(r *http.Request) (accesspolicy.Actor, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return accesspolicy.Actor{}, false
	}
	uid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return accesspolicy.Actor{}, false
	}
	oid, err := primitive.ObjectIDFromHex(u.OrganizationID)
	if err != nil {
		return accesspolicy.Actor{}, false
	}
	role := models.Role(strings.ToLower(u.Role))
	if !role.Valid() {
		return accesspolicy.Actor{}, false
	}
	return accesspolicy.Actor{UserID: uid, OrgID: oid, Role: role}, true
}

// Require is Actor for handlers: when no usable identity is present it
// writes a 401 and returns ok=false.
func Require(w http.ResponseWriter, r *http.Request) (accesspolicy.Actor, bool) {
	a, ok := Actor(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		respond.JSON(w, http.StatusUnauthorized, respond.ErrorBody{
			Error: "not authenticated",
			Kind:  apperr.KindUnauthorized.String(),
		})
	}
	return a, ok
}
