package reports_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
)

func TestStatusCount(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	org := env.Org("Acme")
	_, admin := env.User(org, models.RoleAdmin)
	_, manager := env.User(org, models.RoleManager)
	p := env.Project(admin, "Launch")

	env.Task(admin, p, tasks.CreateInput{})
	env.Task(admin, p, tasks.CreateInput{})
	env.Task(admin, p, tasks.CreateInput{Status: models.StatusDone})

	// Reports need an org match, not membership.
	got, err := env.Reports.StatusCount(ctx, manager, p.ID)
	if err != nil {
		t.Fatalf("StatusCount: %v", err)
	}
	want := map[models.TaskStatus]int64{
		models.StatusTodo:       2,
		models.StatusInProgress: 0,
		models.StatusDone:       1,
	}
	for st, n := range want {
		if got[st] != n {
			t.Errorf("%s = %d, want %d", st, got[st], n)
		}
	}
}

func TestOverdue(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	_, admin := env.User(env.Org("Acme"), models.RoleAdmin)
	p := env.Project(admin, "Launch")

	day := func(offset int) *time.Time {
		y, m, d := env.Now.Date()
		at := time.Date(y, m, d+offset, 0, 0, 0, 0, time.UTC)
		return &at
	}
	stage := func(title string, due *time.Time, st models.TaskStatus) models.Task {
		task := env.Task(admin, p, tasks.CreateInput{Title: title})
		task.DueDate, task.Status = due, st
		env.DB.Tasks().SetTask(task)
		return task
	}

	late := stage("late", day(-1), models.StatusInProgress)
	stage("late but done", day(-3), models.StatusDone)
	stage("due today", day(0), models.StatusTodo)
	stage("future", day(2), models.StatusTodo)
	stage("no due date", nil, models.StatusTodo)

	got, err := env.Reports.Overdue(ctx, admin, p.ID)
	if err != nil {
		t.Fatalf("Overdue: %v", err)
	}
	if len(got) != 1 || got[0].ID != late.ID {
		t.Errorf("overdue = %+v, want only %q", got, late.Title)
	}
}

func TestReports_Access(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	ctx := context.Background()
	org := env.Org("Acme")
	_, admin := env.User(org, models.RoleAdmin)
	m, member := env.User(org, models.RoleMember)
	_, foreign := env.User(env.Org("Globex"), models.RoleAdmin)
	p := env.Project(admin, "Launch")
	env.Join(p, m)

	if _, err := env.Reports.StatusCount(ctx, member, p.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member: expected forbidden, got %v", err)
	}
	if _, err := env.Reports.Overdue(ctx, foreign, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("cross-org: expected not found, got %v", err)
	}
	got, err := env.Reports.Overdue(ctx, admin, p.ID)
	if err != nil || got == nil {
		t.Errorf("empty overdue should be an empty slice: %v %v", got, err)
	}
}
