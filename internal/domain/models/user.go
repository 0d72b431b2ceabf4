// internal/domain/models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the organization-wide role of a user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// ParseRole normalizes s and returns the matching Role.
// An empty string yields RoleMember.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleMember, true
	}
	r := Role(s)
	return r, r.Valid()
}

// User belongs to exactly one organization for its whole life.
type User struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"org_id"`
	Email          string             `bson:"email" json:"email"` // stored lower-case
	PasswordHash   string             `bson:"password_hash" json:"-"`
	Role           Role               `bson:"role" json:"role"`
	FullName       string             `bson:"full_name,omitempty" json:"full_name,omitempty"`
	FullNameCI     string             `bson:"full_name_ci,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
