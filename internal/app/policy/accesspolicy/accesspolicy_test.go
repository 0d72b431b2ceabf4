package accesspolicy_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCan(t *testing.T) {
	org := primitive.NewObjectID()
	otherOrg := primitive.NewObjectID()

	admin := accesspolicy.Actor{UserID: primitive.NewObjectID(), OrgID: org, Role: models.RoleAdmin}
	manager := accesspolicy.Actor{UserID: primitive.NewObjectID(), OrgID: org, Role: models.RoleManager}
	member := accesspolicy.Actor{UserID: primitive.NewObjectID(), OrgID: org, Role: models.RoleMember}

	tests := []struct {
		name     string
		actor    accesspolicy.Actor
		action   accesspolicy.Action
		resOrg   primitive.ObjectID
		isMember bool
		want     accesspolicy.Outcome
	}{
		{"member views task in own project", member, accesspolicy.TaskView, org, true, accesspolicy.Allow},
		{"member updates task in own project", member, accesspolicy.TaskUpdate, org, true, accesspolicy.Allow},
		{"member cannot create task", member, accesspolicy.TaskCreate, org, true, accesspolicy.DenyRole},
		{"member cannot assign", member, accesspolicy.TaskAssign, org, true, accesspolicy.DenyRole},
		{"non-member admin cannot view task", admin, accesspolicy.TaskView, org, false, accesspolicy.DenyMembership},
		{"manager creates task as member", manager, accesspolicy.TaskCreate, org, true, accesspolicy.Allow},
		{"cross-org admin is org denied", admin, accesspolicy.ProjectView, otherOrg, true, accesspolicy.DenyOrg},
		{"reports bypass membership for manager", manager, accesspolicy.ReportView, org, false, accesspolicy.Allow},
		{"member cannot view reports", member, accesspolicy.ReportView, org, true, accesspolicy.DenyRole},
		{"reports still require org match", admin, accesspolicy.ReportView, otherOrg, false, accesspolicy.DenyOrg},
		{"manager cannot create users", manager, accesspolicy.UserCreate, org, false, accesspolicy.DenyRole},
		{"unknown action denied", admin, accesspolicy.Action("project.rename"), org, true, accesspolicy.DenyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accesspolicy.Can(tt.actor, tt.action, tt.resOrg, tt.isMember)
			if got.Outcome != tt.want {
				t.Errorf("Can(%s) outcome = %v, want %v", tt.action, got.Outcome, tt.want)
			}
		})
	}
}

func TestDecision_Err(t *testing.T) {
	tests := []struct {
		outcome accesspolicy.Outcome
		want    error
	}{
		{accesspolicy.DenyOrg, apperr.ErrNotFound},
		{accesspolicy.DenyRole, apperr.ErrForbidden},
		{accesspolicy.DenyMembership, apperr.ErrForbidden},
		{accesspolicy.DenyUnknown, apperr.ErrForbidden},
	}

	for _, tt := range tests {
		err := accesspolicy.Decision{Outcome: tt.outcome, Reason: "x"}.Err()
		if !errors.Is(err, tt.want) {
			t.Errorf("outcome %v: got %v, want %v", tt.outcome, err, tt.want)
		}
	}

	if err := (accesspolicy.Decision{Outcome: accesspolicy.Allow}).Err(); err != nil {
		t.Errorf("Allow.Err() = %v, want nil", err)
	}
}

func TestAuthorize_ZeroActorOrgDenied(t *testing.T) {
	d := accesspolicy.Authorize(accesspolicy.Actor{Role: models.RoleAdmin}, accesspolicy.Check{})
	if d.Outcome != accesspolicy.DenyOrg {
		t.Errorf("outcome = %v, want DenyOrg", d.Outcome)
	}
}

func TestForbidSelf(t *testing.T) {
	actor := accesspolicy.Actor{UserID: primitive.NewObjectID(), OrgID: primitive.NewObjectID(), Role: models.RoleAdmin}

	if err := accesspolicy.ForbidSelf(actor, actor.UserID); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("ForbidSelf(self) = %v, want validation error", err)
	}
	if err := accesspolicy.ForbidSelf(actor, primitive.NewObjectID()); err != nil {
		t.Errorf("ForbidSelf(other) = %v, want nil", err)
	}
}

func TestRuleFor(t *testing.T) {
	rule, ok := accesspolicy.RuleFor(accesspolicy.ReportView)
	if !ok {
		t.Fatal("expected report.view to be known")
	}
	if rule.RequireMembership {
		t.Error("report.view must not require membership")
	}
	if _, ok := accesspolicy.RuleFor("nope"); ok {
		t.Error("expected unknown action")
	}
}
