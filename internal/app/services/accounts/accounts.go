// Package accounts covers identity and tenancy: registration of an
// organization with its first admin, sign-in, user administration inside an
// organization, and organization deletion.
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/normalize"
	"github.com/dalemusser/taskhub/internal/app/system/txn"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxPasswordLen = 72 // bcrypt ignores bytes past 72

var (
	ErrBadCredentials  = apperr.Unauthorized("incorrect email or password")
	ErrUserNotFound    = apperr.NotFound("user not found")
	ErrOrgNotFound     = apperr.NotFound("organization not found")
	ErrWrongPassword   = apperr.Validation("current password is incorrect")
	ErrInvalidEmail    = apperr.Validation("a valid email address is required")
	ErrOrgNameRequired = apperr.Validation("organization name is required")
	ErrInvalidRole     = apperr.Validation(`role must be "admin"|"manager"|"member"`)
	ErrPasswordTooLong = apperr.Validationf("password must be at most %d bytes", maxPasswordLen)
)

// Config holds account policy settings.
type Config struct {
	MinPasswordLength int
	BcryptCost        int // 0 uses bcrypt's default
}

type OrgStore interface {
	Create(ctx context.Context, org models.Organization) (models.Organization, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.User, error)
	IDsByOrg(ctx context.Context, orgID primitive.ObjectID) ([]primitive.ObjectID, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error)
}

type NotificationDeleter interface {
	DeleteByUsers(ctx context.Context, userIDs []primitive.ObjectID) (int64, error)
}

// ProjectPurger removes an organization's projects. PurgeOrganization runs
// inside the caller's transaction; RemoveBlobs runs after commit.
type ProjectPurger interface {
	PurgeOrganization(ctx context.Context, orgID primitive.ObjectID) ([]string, error)
	RemoveBlobs(paths []string)
}

type TokenIssuer interface {
	Issue(u models.User) (string, time.Time, error)
}

type Gate interface {
	Org(actor accesspolicy.Actor, action accesspolicy.Action, orgID primitive.ObjectID) error
}

type Deps struct {
	Config        Config
	Orgs          OrgStore
	Users         UserStore
	Notifications NotificationDeleter
	Projects      ProjectPurger
	Tokens        TokenIssuer
	Gate          Gate
	Txn           txn.Runner
	Log           *zap.Logger
}

type Service struct {
	Deps
}

func New(d Deps) *Service {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Service{Deps: d}
}

// RegisterInput is the payload of Register.
type RegisterInput struct {
	OrganizationName string
	Email            string
	Password         string
	FullName         string
}

// Register creates an organization and its first admin together.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, models.Organization, error) {
	orgName := normalize.Name(in.OrganizationName)
	if orgName == "" {
		return models.User{}, models.Organization{}, ErrOrgNameRequired
	}
	email, err := checkEmail(in.Email)
	if err != nil {
		return models.User{}, models.Organization{}, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, models.Organization{}, err
	}

	var (
		org  models.Organization
		user models.User
	)
	err = s.Txn.Run(ctx, func(ctx context.Context) error {
		var err error
		org, err = s.Orgs.Create(ctx, models.Organization{Name: orgName})
		if err != nil {
			return err
		}
		user, err = s.Users.Create(ctx, models.User{
			OrganizationID: org.ID,
			Email:          email,
			PasswordHash:   hash,
			Role:           models.RoleAdmin,
			FullName:       in.FullName,
		})
		return err
	})
	if err != nil {
		return models.User{}, models.Organization{}, err
	}

	s.Log.Info("organization registered",
		zap.String("org_id", org.ID.Hex()),
		zap.String("user_id", user.ID.Hex()))
	return user, org, nil
}

// Authenticate checks email and password and returns a signed token. Unknown
// emails and wrong passwords fail identically.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, time.Time, models.User, error) {
	u, err := s.Users.GetByEmail(ctx, normalize.Email(email))
	if errors.Is(err, apperr.ErrNotFound) {
		return "", time.Time{}, models.User{}, ErrBadCredentials
	}
	if err != nil {
		return "", time.Time{}, models.User{}, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.Log.Info("login failed", zap.String("user_id", u.ID.Hex()))
		return "", time.Time{}, models.User{}, ErrBadCredentials
	}
	tok, exp, err := s.Tokens.Issue(u)
	if err != nil {
		return "", time.Time{}, models.User{}, err
	}
	s.Log.Info("login succeeded", zap.String("user_id", u.ID.Hex()))
	return tok, exp, u, nil
}

// CreateUserInput is the payload of CreateUser. An empty Role means member.
type CreateUserInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// CreateUser adds a user to the actor's organization. Admin only.
func (s *Service) CreateUser(ctx context.Context, actor accesspolicy.Actor, in CreateUserInput) (models.User, error) {
	if err := s.Gate.Org(actor, accesspolicy.UserCreate, actor.OrgID); err != nil {
		return models.User{}, err
	}
	role, ok := models.ParseRole(in.Role)
	if !ok {
		return models.User{}, ErrInvalidRole
	}
	email, err := checkEmail(in.Email)
	if err != nil {
		return models.User{}, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, err
	}

	u, err := s.Users.Create(ctx, models.User{
		OrganizationID: actor.OrgID,
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
		FullName:       in.FullName,
	})
	if err != nil {
		return models.User{}, err
	}
	s.Log.Info("user created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", string(u.Role)),
		zap.String("created_by", actor.UserID.Hex()))
	return u, nil
}

// ListUsers returns the users of the actor's organization.
func (s *Service) ListUsers(ctx context.Context, actor accesspolicy.Actor) ([]models.User, error) {
	if err := s.Gate.Org(actor, accesspolicy.UserView, actor.OrgID); err != nil {
		return nil, err
	}
	out, err := s.Users.ListByOrg(ctx, actor.OrgID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.User{}
	}
	return out, nil
}

// GetUser returns a user of the actor's organization. Users of other
// organizations are not found.
func (s *Service) GetUser(ctx context.Context, actor accesspolicy.Actor, id primitive.ObjectID) (models.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if err := s.Gate.Org(actor, accesspolicy.UserView, u.OrganizationID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// Me returns the actor's own user record.
func (s *Service) Me(ctx context.Context, actor accesspolicy.Actor) (models.User, error) {
	return s.GetUser(ctx, actor, actor.UserID)
}

// ChangePassword replaces the actor's password after checking the current
// one.
func (s *Service) ChangePassword(ctx context.Context, actor accesspolicy.Actor, current, next string) error {
	u, err := s.Me(ctx, actor)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	s.Log.Info("password changed", zap.String("user_id", u.ID.Hex()))
	return nil
}

// Organization returns the actor's organization.
func (s *Service) Organization(ctx context.Context, actor accesspolicy.Actor) (models.Organization, error) {
	if err := s.Gate.Org(actor, accesspolicy.OrgView, actor.OrgID); err != nil {
		return models.Organization{}, err
	}
	org, err := s.Orgs.GetByID(ctx, actor.OrgID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Organization{}, ErrOrgNotFound
	}
	return org, err
}

// DeleteOrganization removes orgID with its projects, users and their
// notifications. Admins may delete only their own organization; any other id
// is not found.
func (s *Service) DeleteOrganization(ctx context.Context, actor accesspolicy.Actor, orgID primitive.ObjectID) error {
	if err := s.Gate.Org(actor, accesspolicy.OrgDelete, orgID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return ErrOrgNotFound
		}
		return err
	}

	var blobs []string
	err := s.Txn.Run(ctx, func(ctx context.Context) error {
		var err error
		blobs, err = s.Projects.PurgeOrganization(ctx, orgID)
		if err != nil {
			return err
		}
		ids, err := s.Users.IDsByOrg(ctx, orgID)
		if err != nil {
			return err
		}
		if _, err := s.Notifications.DeleteByUsers(ctx, ids); err != nil {
			return err
		}
		if _, err := s.Users.DeleteByOrg(ctx, orgID); err != nil {
			return err
		}
		return s.Orgs.Delete(ctx, orgID)
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return ErrOrgNotFound
	}
	if err != nil {
		return err
	}
	s.Projects.RemoveBlobs(blobs)

	s.Log.Info("organization deleted",
		zap.String("org_id", orgID.Hex()),
		zap.String("user_id", actor.UserID.Hex()))
	return nil
}

func (s *Service) hash(password string) (string, error) {
	if utf8.RuneCountInString(password) < s.Config.MinPasswordLength {
		return "", apperr.Validationf("password must be at least %d characters", s.Config.MinPasswordLength)
	}
	if len(password) > maxPasswordLen {
		return "", ErrPasswordTooLong
	}
	return auth.HashPassword(password, s.Config.BcryptCost)
}

func checkEmail(s string) (string, error) {
	email := normalize.Email(s)
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n") {
		return "", ErrInvalidEmail
	}
	return email, nil
}
