package auth

import (
	"fmt"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinSecretLength is the shortest signing secret accepted.
const MinSecretLength = 32

// Identity is what a verified token asserts about its bearer.
type Identity struct {
	UserID    primitive.ObjectID
	OrgID     primitive.ObjectID
	Role      models.Role
	ExpiresAt time.Time
}

type claims struct {
	OrgID string `json:"org_id"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens carrying
// (user id, org id, role).
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer. The secret must be at least
// MinSecretLength bytes and ttl positive.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (ti *TokenIssuer) TTL() time.Duration { return ti.ttl }

// Issue signs a token for u.
func (ti *TokenIssuer) Issue(u models.User) (string, time.Time, error) {
	now := ti.now().UTC()
	exp := now.Add(ti.ttl)
	c := claims{
		OrgID: u.OrganizationID.Hex(),
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

var errBadToken = apperr.Unauthorized("could not validate credentials")

// Verify parses and validates raw. Any failure is reported as Unauthorized.
func (ti *TokenIssuer) Verify(raw string) (Identity, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Identity{}, errBadToken
	}

	uid, err := primitive.ObjectIDFromHex(c.Subject)
	if err != nil {
		return Identity{}, errBadToken
	}
	oid, err := primitive.ObjectIDFromHex(c.OrgID)
	if err != nil {
		return Identity{}, errBadToken
	}
	role := models.Role(c.Role)
	if !role.Valid() {
		return Identity{}, errBadToken
	}

	id := Identity{UserID: uid, OrgID: oid, Role: role}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}
