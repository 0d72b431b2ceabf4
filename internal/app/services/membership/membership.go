// Package membership manages which users may access which projects.
package membership

import (
	"context"
	"errors"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	membershipstore "github.com/dalemusser/taskhub/internal/app/store/memberships"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrNoValidUsers is returned by AddMembers when nothing was added.
var ErrNoValidUsers = apperr.Validation("no valid users to add")

type Store interface {
	Add(ctx context.Context, projectID, userID, orgID primitive.ObjectID) (models.ProjectMembership, error)
	Remove(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error)
	Exists(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error)
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.ProjectMembership, error)
}

type UserLister interface {
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

type Gate interface {
	Project(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, projectID primitive.ObjectID) (models.Project, error)
}

type Service struct {
	members Store
	users   UserLister
	gate    Gate
	log     *zap.Logger
}

func New(members Store, users UserLister, gate Gate, logger *zap.Logger) *Service {
	return &Service{members: members, users: users, gate: gate, log: logger}
}

// AddMembers adds userIDs to projectID and returns the users that were
// added. Ids that do not name a user of the project's organization, repeat
// an earlier id, or are already members are skipped. When nothing is added
// the call fails with ErrNoValidUsers.
//
// Inserts are independent and idempotent, so no transaction is used: a
// unique-index violation from a concurrent add counts as already a member.
func (s *Service) AddMembers(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID, userIDs []primitive.ObjectID) ([]models.User, error) {
	p, err := s.gate.Project(ctx, actor, accesspolicy.MembersManage, projectID)
	if err != nil {
		return nil, err
	}

	ids := dedupe(userIDs)
	if len(ids) == 0 {
		return nil, ErrNoValidUsers
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	added := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.OrganizationID != p.OrganizationID {
			continue
		}
		_, err := s.members.Add(ctx, p.ID, u.ID, p.OrganizationID)
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			continue
		}
		if err != nil {
			return nil, err
		}
		added = append(added, u)
	}
	if len(added) == 0 {
		return nil, ErrNoValidUsers
	}

	s.log.Info("project members added",
		zap.String("project_id", p.ID.Hex()),
		zap.String("user_id", actor.UserID.Hex()),
		zap.Int("count", len(added)))
	return added, nil
}

// RemoveMember removes userID from projectID. Actors cannot remove
// themselves. Removing a user who is not a member succeeds without effect.
func (s *Service) RemoveMember(ctx context.Context, actor accesspolicy.Actor, projectID, userID primitive.ObjectID) error {
	p, err := s.gate.Project(ctx, actor, accesspolicy.MembersManage, projectID)
	if err != nil {
		return err
	}
	if err := accesspolicy.ForbidSelf(actor, userID); err != nil {
		return err
	}
	removed, err := s.members.Remove(ctx, p.ID, userID)
	if err != nil {
		return err
	}
	if removed {
		s.log.Info("project member removed",
			zap.String("project_id", p.ID.Hex()),
			zap.String("member_id", userID.Hex()),
			zap.String("user_id", actor.UserID.Hex()))
	}
	return nil
}

// ListMembers returns the users who are members of projectID.
func (s *Service) ListMembers(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID) ([]models.User, error) {
	p, err := s.gate.Project(ctx, actor, accesspolicy.MembersView, projectID)
	if err != nil {
		return nil, err
	}
	ms, err := s.members.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return []models.User{}, nil
	}
	ids := make([]primitive.ObjectID, len(ms))
	for i, m := range ms {
		ids[i] = m.UserID
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// IsMember reports whether userID is a member of projectID.
func (s *Service) IsMember(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	return s.members.Exists(ctx, projectID, userID)
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
