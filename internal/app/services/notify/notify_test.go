package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/services/notify"
	"github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/metrics"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestEvents(t *testing.T) {
	assignee := primitive.NewObjectID()
	commenter := primitive.NewObjectID()
	assigned := models.Task{ID: primitive.NewObjectID(), ProjectID: primitive.NewObjectID(), Title: "Ship", Status: models.StatusDone, AssigneeID: &assignee}
	unassigned := assigned
	unassigned.AssigneeID = nil

	tests := []struct {
		name     string
		fire     func(s *notify.Service) error
		wantType models.NotificationType
		wantMsg  string
	}{
		{"assigned", func(s *notify.Service) error { return s.OnAssigned(context.Background(), assigned, assignee) },
			models.NotifyAssignment, "You have been assigned to task 'Ship'"},
		{"status changed", func(s *notify.Service) error { return s.OnStatusChanged(context.Background(), assigned) },
			models.NotifyStatusChange, "Task 'Ship' status changed to done"},
		{"status changed unassigned", func(s *notify.Service) error { return s.OnStatusChanged(context.Background(), unassigned) },
			"", ""},
		{"comment by other", func(s *notify.Service) error { return s.OnCommentAdded(context.Background(), assigned, commenter) },
			models.NotifyCommentAdded, "New comment on task 'Ship'"},
		{"comment by assignee", func(s *notify.Service) error { return s.OnCommentAdded(context.Background(), assigned, assignee) },
			"", ""},
		{"comment unassigned", func(s *notify.Service) error { return s.OnCommentAdded(context.Background(), unassigned, commenter) },
			"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := memstore.New()
			s := notify.New(db.Notifications(), zap.NewNop(), metrics.New())
			if err := tt.fire(s); err != nil {
				t.Fatalf("event: %v", err)
			}

			all := db.Notifications().All(assignee)
			all = append(all, db.Notifications().All(commenter)...)
			if tt.wantType == "" {
				if len(all) != 0 {
					t.Fatalf("expected no notifications, got %+v", all)
				}
				return
			}
			if len(all) != 1 {
				t.Fatalf("expected one notification, got %d", len(all))
			}
			n := all[0]
			if n.UserID != assignee || n.Type != tt.wantType || n.Message != tt.wantMsg || n.IsRead {
				t.Errorf("unexpected notification %+v", n)
			}
			if n.ProjectID == nil || *n.ProjectID != assigned.ProjectID || n.TaskID == nil || *n.TaskID != assigned.ID {
				t.Errorf("backlinks not set: %+v", n)
			}
		})
	}
}

func TestEvents_StoreFailurePropagates(t *testing.T) {
	db := memstore.New()
	s := notify.New(db.Notifications(), zap.NewNop(), nil)
	boom := errors.New("write failed")
	db.FailNext("notifications.Create", boom)

	err := s.OnAssigned(context.Background(), models.Task{Title: "x"}, primitive.NewObjectID())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestReadState(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	org := env.Org("Acme")
	_, admin := env.User(org, models.RoleAdmin)
	m, member := env.User(org, models.RoleMember)
	other, otherActor := env.User(org, models.RoleMember)
	p := env.Project(admin, "Launch")
	env.Join(p, m, other)

	first := env.Task(admin, p, tasks.CreateInput{Title: "first", AssigneeID: &m.ID})
	env.Task(admin, p, tasks.CreateInput{Title: "second", AssigneeID: &m.ID})
	if _, err := env.Tasks.Update(ctx, admin, first.ID, tasks.UpdateInput{Status: ptr(models.StatusInProgress)}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	unread, err := env.Notify.ListUnread(ctx, member)
	if err != nil {
		t.Fatalf("ListUnread: %v", err)
	}
	if len(unread) != 3 {
		t.Fatalf("unread = %d, want 3", len(unread))
	}
	for i := 1; i < len(unread); i++ {
		if unread[i].CreatedAt.After(unread[i-1].CreatedAt) {
			t.Fatalf("unread not newest first")
		}
	}
	if unread[0].Type != models.NotifyStatusChange {
		t.Errorf("newest = %s, want status_change", unread[0].Type)
	}

	// Someone else's notification is not found and stays unread.
	if _, err := env.Notify.MarkRead(ctx, otherActor, unread[0].ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found marking another user's notification, got %v", err)
	}

	read, err := env.Notify.MarkRead(ctx, member, unread[0].ID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !read.IsRead {
		t.Errorf("notification not marked read")
	}

	before, _ := env.Notify.ListUnread(ctx, member)
	n, err := env.Notify.MarkAllRead(ctx, member)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if n != int64(len(before)) {
		t.Errorf("MarkAllRead = %d, want %d", n, len(before))
	}
	after, _ := env.Notify.ListUnread(ctx, member)
	if len(after) != 0 {
		t.Errorf("unread after MarkAllRead = %d", len(after))
	}

	// Nothing left: count is zero and the list is empty, not nil.
	n, _ = env.Notify.MarkAllRead(ctx, member)
	if n != 0 {
		t.Errorf("second MarkAllRead = %d, want 0", n)
	}
	if after == nil {
		t.Errorf("ListUnread returned nil, want empty slice")
	}
}

func ptr[T any](v T) *T { return &v }
