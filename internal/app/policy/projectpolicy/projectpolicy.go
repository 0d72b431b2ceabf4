// internal/app/policy/projectpolicy/projectpolicy.go
package projectpolicy

import (
	"context"
	"errors"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/metrics"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// A missing entity and an entity in another organization produce the same
// error value.
var (
	ErrProjectNotFound = apperr.NotFound("project not found")
	ErrTaskNotFound    = apperr.NotFound("task not found")
)

type ProjectGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error)
}

type TaskGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error)
}

type MembershipChecker interface {
	Exists(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error)
}

// Gate resolves the facts an authorization decision needs (the resource's
// organization and the actor's membership) and applies accesspolicy.
type Gate struct {
	projects ProjectGetter
	tasks    TaskGetter
	members  MembershipChecker
	metrics  *metrics.Metrics
}

func NewGate(projects ProjectGetter, tasks TaskGetter, members MembershipChecker, m *metrics.Metrics) *Gate {
	return &Gate{projects: projects, tasks: tasks, members: members, metrics: m}
}

// Project loads projectID and authorizes action on it.
func (g *Gate) Project(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, projectID primitive.ObjectID) (models.Project, error) {
	p, err := g.projects.GetByID(ctx, projectID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Project{}, ErrProjectNotFound
	}
	if err != nil {
		return models.Project{}, err
	}
	if err := g.authorize(ctx, actor, action, p, ErrProjectNotFound); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Task loads taskID and its project and authorizes action against the
// project.
func (g *Gate) Task(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, taskID primitive.ObjectID) (models.Task, models.Project, error) {
	t, err := g.tasks.GetByID(ctx, taskID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Task{}, models.Project{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, models.Project{}, err
	}
	p, err := g.projects.GetByID(ctx, t.ProjectID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Task{}, models.Project{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, models.Project{}, err
	}
	if err := g.authorize(ctx, actor, action, p, ErrTaskNotFound); err != nil {
		return models.Task{}, models.Project{}, err
	}
	return t, p, nil
}

// Org authorizes an action that is scoped to an organization rather than a
// project.
func (g *Gate) Org(actor accesspolicy.Actor, action accesspolicy.Action, orgID primitive.ObjectID) error {
	d := accesspolicy.Can(actor, action, orgID, false)
	if d.Allowed() {
		return nil
	}
	g.metrics.AccessDenied(string(action), d.Reason)
	return d.Err()
}

// Allows reports whether actor may perform action on p without counting
// a denial. Callers use it to branch, not to gate.
func (g *Gate) Allows(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, p models.Project) (bool, error) {
	member, err := g.membership(ctx, actor, action, p)
	if err != nil {
		return false, err
	}
	return accesspolicy.Can(actor, action, p.OrganizationID, member).Allowed(), nil
}

func (g *Gate) authorize(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, p models.Project, notFound error) error {
	member, err := g.membership(ctx, actor, action, p)
	if err != nil {
		return err
	}
	d := accesspolicy.Can(actor, action, p.OrganizationID, member)
	if d.Allowed() {
		return nil
	}
	g.metrics.AccessDenied(string(action), d.Reason)
	if d.Outcome == accesspolicy.DenyOrg {
		return notFound
	}
	return d.Err()
}

// membership looks up the membership fact only when the decision depends
// on it.
func (g *Gate) membership(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, p models.Project) (bool, error) {
	rule, ok := accesspolicy.RuleFor(action)
	if !ok || !rule.RequireMembership || actor.OrgID != p.OrganizationID {
		return false, nil
	}
	return g.members.Exists(ctx, p.ID, actor.UserID)
}
