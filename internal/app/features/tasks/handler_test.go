package tasks_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/features/tasks"
	tasksvc "github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
	"go.uber.org/zap"
)

const projectPrefix = "/projects/{projectID}/tasks"

type fixture struct {
	env            *memstore.Env
	project        models.Project
	admin, member  models.User
	projectRoutes  http.Handler
	taskRoutes     http.Handler
	projectTaskURL string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	h := tasks.NewHandler(env.Tasks, zap.NewNop())
	org := env.Org("Acme")
	admin, adminActor := env.User(org, models.RoleAdmin)
	member, _ := env.User(org, models.RoleMember)
	p := env.Project(adminActor, "Launch")
	env.Join(p, member)
	return fixture{
		env:            env,
		project:        p,
		admin:          admin,
		member:         member,
		projectRoutes:  tasks.ProjectRoutes(h),
		taskRoutes:     tasks.Routes(h),
		projectTaskURL: "/projects/" + p.ID.Hex() + "/tasks",
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name       string
		user       models.User
		body       any
		wantStatus int
	}{
		{"admin with date", f.admin, map[string]any{"title": "Ship", "due_date": "2026-03-20", "assignee_id": f.member.ID.Hex()}, http.StatusCreated},
		{"admin with timestamp", f.admin, map[string]any{"title": "Ship", "due_date": "2026-03-20T10:00:00Z"}, http.StatusCreated},
		{"member forbidden", f.member, map[string]any{"title": "Mine"}, http.StatusForbidden},
		{"blank due date", f.admin, map[string]any{"title": "Ship", "due_date": ""}, http.StatusBadRequest},
		{"bad due date", f.admin, map[string]any{"title": "Ship", "due_date": "next week"}, http.StatusBadRequest},
		{"past due date", f.admin, map[string]any{"title": "Ship", "due_date": "2026-03-01"}, http.StatusBadRequest},
		{"bad status", f.admin, map[string]any{"title": "Ship", "status": "blocked"}, http.StatusBadRequest},
		{"missing title", f.admin, map[string]any{"priority": "high"}, http.StatusBadRequest},
		{"unknown assignee", f.admin, map[string]any{"title": "Ship", "assignee_id": "nope"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			rec := testutil.Serve(f.projectRoutes, projectPrefix, testutil.JSONRequest(t, "POST", f.projectTaskURL, tt.body), &u)
			testutil.AssertStatus(t, rec, tt.wantStatus)
		})
	}
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	adminActor := memstore.Actor(f.admin)
	f.env.Task(adminActor, f.project, tasksvc.CreateInput{Priority: models.PriorityHigh, AssigneeID: &f.member.ID})
	f.env.Task(adminActor, f.project, tasksvc.CreateInput{Priority: models.PriorityLow})
	f.env.Task(adminActor, f.project, tasksvc.CreateInput{Status: models.StatusDone})

	tests := []struct {
		query      string
		wantStatus int
		wantLen    int
	}{
		{"", http.StatusOK, 3},
		{"?priority=high", http.StatusOK, 1},
		{"?status=done", http.StatusOK, 1},
		{"?assignee_id=" + f.member.ID.Hex(), http.StatusOK, 1},
		{"?status=todo&priority=low", http.StatusOK, 1},
		{"?status=blocked", http.StatusBadRequest, 0},
		{"?assignee_id=zzz", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("query %q", tt.query), func(t *testing.T) {
			rec := testutil.Serve(f.projectRoutes, projectPrefix, testutil.JSONRequest(t, "GET", f.projectTaskURL+tt.query, nil), &f.member)
			testutil.AssertStatus(t, rec, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got []models.Task
			testutil.DecodeJSON(t, rec, &got)
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	task := f.env.Task(memstore.Actor(f.admin), f.project, tasksvc.CreateInput{AssigneeID: &f.member.ID})
	url := "/tasks/" + task.ID.Hex()

	tests := []struct {
		name       string
		user       models.User
		body       any
		wantStatus int
	}{
		{"member moves status", f.member, map[string]string{"status": "in-progress"}, http.StatusOK},
		{"member edits title", f.member, map[string]string{"title": "Renamed"}, http.StatusForbidden},
		{"member blank due date", f.member, map[string]string{"status": "in-progress", "due_date": ""}, http.StatusForbidden},
		{"member blank assignee", f.member, map[string]string{"status": "done", "assignee_id": " "}, http.StatusForbidden},
		{"admin blank due date", f.admin, map[string]string{"due_date": ""}, http.StatusBadRequest},
		{"admin blank assignee", f.admin, map[string]string{"assignee_id": ""}, http.StatusNotFound},
		{"backward", f.admin, map[string]string{"status": "todo"}, http.StatusBadRequest},
		{"admin edits title", f.admin, map[string]string{"title": "Renamed"}, http.StatusOK},
		{"unknown field", f.admin, map[string]string{"colour": "red"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			rec := testutil.Serve(f.taskRoutes, "/tasks", testutil.JSONRequest(t, "PATCH", url, tt.body), &u)
			testutil.AssertStatus(t, rec, tt.wantStatus)
		})
	}

	rec := testutil.Serve(f.taskRoutes, "/tasks", testutil.JSONRequest(t, "GET", url, nil), &f.member)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var got models.Task
	testutil.DecodeJSON(t, rec, &got)
	if got.Title != "Renamed" || got.Status != models.StatusInProgress {
		t.Errorf("unexpected task %+v", got)
	}
}

func TestView_CrossOrgAndMissing(t *testing.T) {
	f := newFixture(t)
	task := f.env.Task(memstore.Actor(f.admin), f.project, tasksvc.CreateInput{})
	foreign, _ := f.env.User(f.env.Org("Globex"), models.RoleAdmin)

	for _, url := range []string{"/tasks/" + task.ID.Hex(), "/tasks/not-an-id"} {
		rec := testutil.Serve(f.taskRoutes, "/tasks", testutil.JSONRequest(t, "GET", url, nil), &foreign)
		testutil.AssertStatus(t, rec, http.StatusNotFound)
	}
}
