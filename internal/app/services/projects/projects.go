// Package projects creates, lists and deletes projects. Deletion cascades in
// a fixed order inside one transaction:
//
//	attachments, comments → tasks → notification backlinks → memberships → project
//
// Stored attachment bytes are removed only after the transaction commits.
package projects

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/taskhub/internal/app/system/normalize"
	"github.com/dalemusser/taskhub/internal/app/system/txn"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxNameLen = 255

var (
	ErrNameRequired = apperr.Validation("project name is required")
	ErrNameTooLong  = apperr.Validationf("project name must be at most %d characters", maxNameLen)
)

type ProjectStore interface {
	Create(ctx context.Context, p models.Project) (models.Project, error)
	ListByOrg(ctx context.Context, orgID primitive.ObjectID, ids []primitive.ObjectID) ([]models.Project, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MembershipStore interface {
	Add(ctx context.Context, projectID, userID, orgID primitive.ObjectID) (models.ProjectMembership, error)
	ProjectIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
	DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error)
}

type TaskDeleter interface {
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

type CommentDeleter interface {
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

type AttachmentStore interface {
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Attachment, error)
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

type NotificationUnlinker interface {
	UnlinkProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

type BlobDeleter interface {
	Delete(path string) error
}

type Gate interface {
	Project(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, projectID primitive.ObjectID) (models.Project, error)
	Org(actor accesspolicy.Actor, action accesspolicy.Action, orgID primitive.ObjectID) error
}

type Deps struct {
	Projects      ProjectStore
	Memberships   MembershipStore
	Tasks         TaskDeleter
	Comments      CommentDeleter
	Attachments   AttachmentStore
	Notifications NotificationUnlinker
	Blobs         BlobDeleter
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

// CreateInput is the payload of Create.
type CreateInput struct {
	Name        string
	Description string
}

// Create adds a project to the actor's organization and makes the actor its
// first member.
func (s *Service) Create(ctx context.Context, actor accesspolicy.Actor, in CreateInput) (models.Project, error) {
	if err := s.Gate.Org(actor, accesspolicy.ProjectCreate, actor.OrgID); err != nil {
		return models.Project{}, err
	}
	name := normalize.Name(htmlsanitize.StripTags(in.Name))
	if name == "" {
		return models.Project{}, ErrNameRequired
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return models.Project{}, ErrNameTooLong
	}

	var created models.Project
	err := s.Txn.Run(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.Projects.Create(ctx, models.Project{
			OrganizationID: actor.OrgID,
			Name:           name,
			Description:    htmlsanitize.Sanitize(strings.TrimSpace(in.Description)),
			CreatedBy:      actor.UserID,
		})
		if err != nil {
			return err
		}
		_, err = s.Memberships.Add(ctx, created.ID, actor.UserID, actor.OrgID)
		return err
	})
	if err != nil {
		return models.Project{}, err
	}

	s.Log.Info("project created",
		zap.String("project_id", created.ID.Hex()),
		zap.String("org_id", actor.OrgID.Hex()),
		zap.String("user_id", actor.UserID.Hex()))
	return created, nil
}

// Get returns projectID if the actor is a member.
func (s *Service) Get(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID) (models.Project, error) {
	return s.Gate.Project(ctx, actor, accesspolicy.ProjectView, projectID)
}

// List returns the projects visible to the actor: every project of the
// organization for admins and managers, the actor's own projects otherwise.
func (s *Service) List(ctx context.Context, actor accesspolicy.Actor) ([]models.Project, error) {
	if err := s.Gate.Org(actor, accesspolicy.ProjectList, actor.OrgID); err != nil {
		return nil, err
	}

	var ids []primitive.ObjectID
	if !actor.HasRole(models.RoleAdmin, models.RoleManager) {
		var err error
		ids, err = s.Memberships.ProjectIDsForUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []models.Project{}, nil
		}
	}

	out, err := s.Projects.ListByOrg(ctx, actor.OrgID, ids)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Project{}
	}
	return out, nil
}

// Delete removes projectID and everything that hangs off it.
func (s *Service) Delete(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID) error {
	p, err := s.Gate.Project(ctx, actor, accesspolicy.ProjectDelete, projectID)
	if err != nil {
		return err
	}

	var blobs []string
	err = s.Txn.Run(ctx, func(ctx context.Context) error {
		var err error
		blobs, err = s.cascade(ctx, p.ID)
		return err
	})
	if err != nil {
		return err
	}
	s.RemoveBlobs(blobs)

	s.Log.Info("project deleted",
		zap.String("project_id", p.ID.Hex()),
		zap.String("user_id", actor.UserID.Hex()),
		zap.Int("attachments", len(blobs)))
	return nil
}

// PurgeOrganization deletes every project of orgID with the same cascade as
// Delete. It must run inside the caller's transaction; the returned blob
// paths are handed to RemoveBlobs after commit.
func (s *Service) PurgeOrganization(ctx context.Context, orgID primitive.ObjectID) ([]string, error) {
	ps, err := s.Projects.ListByOrg(ctx, orgID, nil)
	if err != nil {
		return nil, err
	}
	var blobs []string
	for _, p := range ps {
		b, err := s.cascade(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, b...)
	}
	if _, err := s.Memberships.DeleteByOrg(ctx, orgID); err != nil {
		return nil, err
	}
	return blobs, nil
}

// RemoveBlobs deletes stored attachment bytes. Failures are logged and
// skipped; the rows that referenced them are already gone.
func (s *Service) RemoveBlobs(paths []string) {
	for _, p := range paths {
		if err := s.Blobs.Delete(p); err != nil {
			s.Log.Warn("failed to delete attachment blob",
				zap.String("path", p),
				zap.Error(err))
		}
	}
}

func (s *Service) cascade(ctx context.Context, projectID primitive.ObjectID) ([]string, error) {
	atts, err := s.Attachments.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	blobs := make([]string, 0, len(atts))
	for _, a := range atts {
		blobs = append(blobs, a.StoragePath)
	}

	if _, err := s.Attachments.DeleteByProject(ctx, projectID); err != nil {
		return nil, err
	}
	if _, err := s.Comments.DeleteByProject(ctx, projectID); err != nil {
		return nil, err
	}
	if _, err := s.Tasks.DeleteByProject(ctx, projectID); err != nil {
		return nil, err
	}
	if _, err := s.Notifications.UnlinkProject(ctx, projectID); err != nil {
		return nil, err
	}
	if _, err := s.Memberships.DeleteByProject(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.Projects.Delete(ctx, projectID); err != nil {
		return nil, err
	}
	return blobs, nil
}
