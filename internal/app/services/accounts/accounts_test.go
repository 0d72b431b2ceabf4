package accounts_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/services/accounts"
	"github.com/dalemusser/taskhub/internal/app/services/attachments"
	"github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/blob"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
)

const password = "correct horse"

func register(t *testing.T, env *memstore.Env, org, email string) models.User {
	t.Helper()
	u, _, err := env.Accounts.Register(context.Background(), accounts.RegisterInput{
		OrganizationName: org,
		Email:            email,
		Password:         password,
		FullName:         "Ada Admin",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return u
}

func TestRegister(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	u, org, err := env.Accounts.Register(context.Background(), accounts.RegisterInput{
		OrganizationName: "  Acme  ",
		Email:            "Ada@Example.com",
		Password:         password,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if org.Name != "Acme" || u.OrganizationID != org.ID {
		t.Errorf("unexpected org %+v for user %+v", org, u)
	}
	if u.Role != models.RoleAdmin || u.Email != "ada@example.com" {
		t.Errorf("unexpected user %+v", u)
	}
	if u.PasswordHash == "" || u.PasswordHash == password {
		t.Errorf("password not hashed")
	}
}

func TestRegister_Rejects(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	register(t, env, "Acme", "taken@example.com")

	tests := []struct {
		name     string
		in       accounts.RegisterInput
		wantKind error
	}{
		{"duplicate email", accounts.RegisterInput{OrganizationName: "Other", Email: "TAKEN@example.com", Password: password}, apperr.ErrConflict},
		{"duplicate org name", accounts.RegisterInput{OrganizationName: "ACME", Email: "new@example.com", Password: password}, apperr.ErrConflict},
		{"missing org name", accounts.RegisterInput{Email: "a@example.com", Password: password}, apperr.ErrValidation},
		{"bad email", accounts.RegisterInput{OrganizationName: "X", Email: "nope", Password: password}, apperr.ErrValidation},
		{"short password", accounts.RegisterInput{OrganizationName: "X", Email: "b@example.com", Password: "short"}, apperr.ErrValidation},
		{"long password", accounts.RegisterInput{OrganizationName: "X", Email: "c@example.com", Password: strings.Repeat("p", 73)}, apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.Accounts.Register(context.Background(), tt.in)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("expected %v, got %v", tt.wantKind, err)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	u := register(t, env, "Acme", "ada@example.com")

	tok, exp, got, err := env.Accounts.Authenticate(ctx, " ADA@example.com", password)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID || !exp.After(env.Now.Add(-1)) {
		t.Errorf("unexpected user %+v exp %v", got, exp)
	}
	id, err := env.Tokens.Verify(tok)
	if err != nil || id.UserID != u.ID {
		t.Fatalf("token does not verify: %+v %v", id, err)
	}

	_, _, _, wrongPw := env.Accounts.Authenticate(ctx, "ada@example.com", "wrong password")
	_, _, _, unknown := env.Accounts.Authenticate(ctx, "nobody@example.com", password)
	for _, err := range []error{wrongPw, unknown} {
		if !errors.Is(err, accounts.ErrBadCredentials) || !errors.Is(err, apperr.ErrUnauthorized) {
			t.Errorf("expected bad credentials, got %v", err)
		}
	}
	if wrongPw.Error() != unknown.Error() {
		t.Errorf("wrong password and unknown email must look the same")
	}
}

func TestCreateUser(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	org := env.Org("Acme")
	_, admin := env.User(org, models.RoleAdmin)
	_, manager := env.User(org, models.RoleManager)

	tests := []struct {
		name     string
		actor    func() error
		wantKind error
	}{
		{"admin creates member by default", func() error {
			u, err := env.Accounts.CreateUser(ctx, admin, accounts.CreateUserInput{Email: "m@example.com", Password: password})
			if err == nil && (u.Role != models.RoleMember || u.OrganizationID != org.ID) {
				t.Errorf("unexpected user %+v", u)
			}
			return err
		}, nil},
		{"admin creates manager", func() error {
			_, err := env.Accounts.CreateUser(ctx, admin, accounts.CreateUserInput{Email: "g@example.com", Password: password, Role: "Manager"})
			return err
		}, nil},
		{"manager cannot", func() error {
			_, err := env.Accounts.CreateUser(ctx, manager, accounts.CreateUserInput{Email: "x@example.com", Password: password})
			return err
		}, apperr.ErrForbidden},
		{"unknown role", func() error {
			_, err := env.Accounts.CreateUser(ctx, admin, accounts.CreateUserInput{Email: "y@example.com", Password: password, Role: "owner"})
			return err
		}, apperr.ErrValidation},
		{"duplicate email", func() error {
			_, err := env.Accounts.CreateUser(ctx, admin, accounts.CreateUserInput{Email: "M@example.com", Password: password})
			return err
		}, apperr.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.actor()
			if tt.wantKind == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("expected %v, got %v", tt.wantKind, err)
			}
		})
	}
}

func TestUsers_OrgScoped(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	org := env.Org("Acme")
	_, member := env.User(org, models.RoleMember)
	peer, _ := env.User(org, models.RoleManager)
	foreign, _ := env.User(env.Org("Globex"), models.RoleMember)

	list, err := env.Accounts.ListUsers(ctx, member)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListUsers = %d, %v", len(list), err)
	}
	if _, err := env.Accounts.GetUser(ctx, member, peer.ID); err != nil {
		t.Errorf("GetUser peer: %v", err)
	}
	if _, err := env.Accounts.GetUser(ctx, member, foreign.ID); !errors.Is(err, accounts.ErrUserNotFound) {
		t.Errorf("cross-org GetUser: expected not found, got %v", err)
	}
	me, err := env.Accounts.Me(ctx, member)
	if err != nil || me.ID != member.UserID {
		t.Errorf("Me = %+v, %v", me, err)
	}
	got, err := env.Accounts.Organization(ctx, member)
	if err != nil || got.ID != org.ID {
		t.Errorf("Organization = %+v, %v", got, err)
	}
}

func TestChangePassword(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	u := register(t, env, "Acme", "ada@example.com")
	actor := memstore.Actor(u)

	if err := env.Accounts.ChangePassword(ctx, actor, "not it", "new password"); !errors.Is(err, accounts.ErrWrongPassword) {
		t.Fatalf("expected wrong password, got %v", err)
	}
	if err := env.Accounts.ChangePassword(ctx, actor, password, "tiny"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation for short password, got %v", err)
	}
	if err := env.Accounts.ChangePassword(ctx, actor, password, "new password"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, _, err := env.Accounts.Authenticate(ctx, "ada@example.com", password); !errors.Is(err, accounts.ErrBadCredentials) {
		t.Errorf("old password still works")
	}
	if _, _, _, err := env.Accounts.Authenticate(ctx, "ada@example.com", "new password"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestDeleteOrganization(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	org := env.Org("Acme")
	a, admin := env.User(org, models.RoleAdmin)
	m, member := env.User(org, models.RoleMember)
	_, manager := env.User(org, models.RoleManager)
	survivorOrg := env.Org("Globex")
	s, survivor := env.User(survivorOrg, models.RoleAdmin)
	kept := env.Project(survivor, "Kept")

	p := env.Project(admin, "Launch")
	env.Join(p, m)
	task := env.Task(admin, p, tasks.CreateInput{AssigneeID: &m.ID})
	att, err := env.Attachments.Upload(ctx, member, task.ID, attachments.UploadInput{
		FileName: "a.txt",
		Body:     bytes.NewReader([]byte("data")),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := env.Accounts.DeleteOrganization(ctx, manager, org.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("manager: expected forbidden, got %v", err)
	}
	if err := env.Accounts.DeleteOrganization(ctx, admin, survivorOrg.ID); !errors.Is(err, accounts.ErrOrgNotFound) {
		t.Fatalf("other org: expected not found, got %v", err)
	}
	if err := env.Accounts.DeleteOrganization(ctx, admin, org.ID); err != nil {
		t.Fatalf("DeleteOrganization: %v", err)
	}

	if _, err := env.DB.Orgs().GetByID(ctx, org.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("org still present")
	}
	for _, u := range []models.User{a, m} {
		if _, err := env.DB.Users().GetByID(ctx, u.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("user %s still present", u.Email)
		}
		if ns := env.DB.Notifications().All(u.ID); len(ns) != 0 {
			t.Errorf("notifications for %s still present", u.Email)
		}
	}
	if _, err := env.DB.Projects().GetByID(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("project still present")
	}
	if _, err := env.Blobs.Open(att.StoragePath); !errors.Is(err, blob.ErrNotFound) {
		t.Errorf("blob still present")
	}

	if _, err := env.DB.Users().GetByID(ctx, s.ID); err != nil {
		t.Errorf("other org's user removed: %v", err)
	}
	if _, err := env.DB.Projects().GetByID(ctx, kept.ID); err != nil {
		t.Errorf("other org's project removed: %v", err)
	}
}
