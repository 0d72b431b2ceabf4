package comments_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/services/comments"
	"github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
)

func TestAdd_NotificationRules(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	org := env.Org("Acme")
	a, admin := env.User(org, models.RoleAdmin)
	m, member := env.User(org, models.RoleMember)
	p := env.Project(admin, "Launch")
	env.Join(p, m)

	assigned := env.Task(admin, p, tasks.CreateInput{AssigneeID: &m.ID})
	unassigned := env.Task(admin, p, tasks.CreateInput{})

	// By the assignee on their own task: nobody is notified.
	if _, err := env.Comments.Add(ctx, member, assigned.ID, "on it"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n := memstore.CountType(env.Unread(m.ID), models.NotifyCommentAdded); n != 0 {
		t.Errorf("assignee notified about own comment")
	}
	if n := len(env.Unread(a.ID)); n != 0 {
		t.Errorf("admin got %d notifications", n)
	}

	// By someone else: the assignee is notified once.
	if _, err := env.Comments.Add(ctx, admin, assigned.ID, "thanks"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n := memstore.CountType(env.Unread(m.ID), models.NotifyCommentAdded); n != 1 {
		t.Errorf("comment_added notifications = %d, want 1", n)
	}

	// Unassigned task: nobody.
	if _, err := env.Comments.Add(ctx, member, unassigned.ID, "hello"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if n := len(env.Unread(a.ID)); n != 0 {
		t.Errorf("admin got %d notifications", n)
	}
}

func TestAdd_Content(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	_, admin := env.User(env.Org("Acme"), models.RoleAdmin)
	p := env.Project(admin, "Launch")
	task := env.Task(admin, p, tasks.CreateInput{})

	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{"plain", "  looks good  ", "looks good", nil},
		{"formatting kept", "<strong>done</strong>", "<strong>done</strong>", nil},
		{"script removed", "ok<script>alert(1)</script>", "ok", nil},
		{"empty", "   ", "", comments.ErrContentRequired},
		{"only markup", "<script>alert(1)</script>", "", comments.ErrContentRequired},
		{"too long", strings.Repeat("x", 10001), "", comments.ErrContentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := env.Comments.Add(ctx, admin, task.ID, tt.content)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Add: %v", err)
			}
			if c.Content != tt.want {
				t.Errorf("content = %q, want %q", c.Content, tt.want)
			}
		})
	}
}

func TestList_OldestFirstAndGated(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	org := env.Org("Acme")
	_, admin := env.User(org, models.RoleAdmin)
	_, outsider := env.User(org, models.RoleMember)
	p := env.Project(admin, "Launch")
	task := env.Task(admin, p, tasks.CreateInput{})

	for _, body := range []string{"one", "two", "three"} {
		if _, err := env.Comments.Add(ctx, admin, task.ID, body); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	got, err := env.Comments.List(ctx, admin, task.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 || got[0].Content != "one" || got[2].Content != "three" {
		t.Errorf("unexpected order: %+v", got)
	}

	if _, err := env.Comments.List(ctx, outsider, task.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-member: expected forbidden, got %v", err)
	}
	if _, err := env.Comments.Add(ctx, outsider, task.ID, "hi"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-member add: expected forbidden, got %v", err)
	}
}
