// Package accesspolicy decides whether an actor may perform an action on a
// resource. It is pure: callers resolve the resource's organization and the
// membership fact, then ask for a Decision.
//
// Rules, evaluated in order:
//   - Org match: the actor's organization must equal the resource's. A
//     mismatch is reported as not found so foreign resources are invisible.
//   - Role gate: when the action lists roles, the actor's role must be one.
//   - Membership gate: when the action requires it, the actor must be a
//     member of the project.
package accesspolicy

import (
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID primitive.ObjectID
	OrgID  primitive.ObjectID
	Role   models.Role
}

// HasRole reports whether the actor holds any of roles.
func (a Actor) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Action names an operation subject to authorization.
type Action string

const (
	ProjectCreate    Action = "project.create"
	ProjectList      Action = "project.list"
	ProjectView      Action = "project.view"
	ProjectDelete    Action = "project.delete"
	MembersView      Action = "members.view"
	MembersManage    Action = "members.manage"
	TaskCreate       Action = "task.create"
	TaskView         Action = "task.view"
	TaskUpdate       Action = "task.update"
	TaskAssign       Action = "task.assign"
	CommentAdd       Action = "comment.add"
	CommentView      Action = "comment.view"
	AttachmentUpload Action = "attachment.upload"
	AttachmentView   Action = "attachment.view"
	ReportView       Action = "report.view"
	UserCreate       Action = "user.create"
	UserView         Action = "user.view"
	OrgView          Action = "org.view"
	OrgDelete        Action = "org.delete"
)

// Rule is the role and membership requirement of one action.
type Rule struct {
	Roles             []models.Role // empty means any role
	RequireMembership bool
}

var (
	anyRole     []models.Role
	staffRoles  = []models.Role{models.RoleAdmin, models.RoleManager}
	adminOnly   = []models.Role{models.RoleAdmin}
	permissions = map[Action]Rule{
		ProjectCreate:    {Roles: staffRoles},
		ProjectList:      {Roles: anyRole},
		ProjectView:      {Roles: anyRole, RequireMembership: true},
		ProjectDelete:    {Roles: staffRoles, RequireMembership: true},
		MembersView:      {Roles: anyRole, RequireMembership: true},
		MembersManage:    {Roles: staffRoles, RequireMembership: true},
		TaskCreate:       {Roles: staffRoles, RequireMembership: true},
		TaskView:         {Roles: anyRole, RequireMembership: true},
		TaskUpdate:       {Roles: anyRole, RequireMembership: true},
		TaskAssign:       {Roles: staffRoles, RequireMembership: true},
		CommentAdd:       {Roles: anyRole, RequireMembership: true},
		CommentView:      {Roles: anyRole, RequireMembership: true},
		AttachmentUpload: {Roles: anyRole, RequireMembership: true},
		AttachmentView:   {Roles: anyRole, RequireMembership: true},
		ReportView:       {Roles: staffRoles},
		UserCreate:       {Roles: adminOnly},
		UserView:         {Roles: anyRole},
		OrgView:          {Roles: anyRole},
		OrgDelete:        {Roles: adminOnly},
	}
)

// RuleFor returns the rule for action and whether the action is known.
func RuleFor(action Action) (Rule, bool) {
	r, ok := permissions[action]
	return r, ok
}

// Outcome is the result class of a decision.
type Outcome int

const (
	Allow Outcome = iota
	DenyOrg
	DenyRole
	DenyMembership
	DenyUnknown
)

// Decision is the result of Authorize.
type Decision struct {
	Outcome Outcome
	Reason  string
}

// Allowed reports whether the decision permits the action.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Err converts a denial into the error surfaced to callers: org mismatches
// become NotFound, every other denial Forbidden. It returns nil on Allow.
func (d Decision) Err() error {
	switch d.Outcome {
	case Allow:
		return nil
	case DenyOrg:
		return apperr.NotFound(d.Reason)
	default:
		return apperr.Forbidden(d.Reason)
	}
}

// Check describes one authorization question.
type Check struct {
	ResourceOrgID     primitive.ObjectID
	Roles             []models.Role
	RequireMembership bool
	IsMember          bool
	Unknown           bool // the action has no rule
}

// Authorize evaluates c for actor.
func Authorize(actor Actor, c Check) Decision {
	if actor.OrgID.IsZero() || actor.OrgID != c.ResourceOrgID {
		return Decision{Outcome: DenyOrg, Reason: "not found"}
	}
	if c.Unknown {
		return Decision{Outcome: DenyUnknown, Reason: "action not permitted"}
	}
	if len(c.Roles) > 0 && !actor.HasRole(c.Roles...) {
		return Decision{Outcome: DenyRole, Reason: "insufficient role"}
	}
	if c.RequireMembership && !c.IsMember {
		return Decision{Outcome: DenyMembership, Reason: "not a member of this project"}
	}
	return Decision{Outcome: Allow}
}

// Can evaluates action against a resource in resourceOrgID using the
// permission table.
func Can(actor Actor, action Action, resourceOrgID primitive.ObjectID, isMember bool) Decision {
	rule, known := permissions[action]
	return Authorize(actor, Check{
		ResourceOrgID:     resourceOrgID,
		Roles:             rule.Roles,
		RequireMembership: rule.RequireMembership,
		IsMember:          isMember,
		Unknown:           !known,
	})
}

// ForbidSelf rejects operations where the actor targets themselves.
func ForbidSelf(actor Actor, userID primitive.ObjectID) error {
	if actor.UserID == userID {
		return apperr.Validation("cannot remove yourself from the project")
	}
	return nil
}
