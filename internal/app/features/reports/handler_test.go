package reports_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/features/reports"
	"github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
	"go.uber.org/zap"
)

const prefix = "/projects/{projectID}/report"

func TestStatusCount(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	router := reports.Routes(reports.NewHandler(env.Reports, zap.NewNop()))
	org := env.Org("Acme")
	manager, _ := env.User(org, models.RoleManager)
	member, _ := env.User(org, models.RoleMember)
	_, adminActor := env.User(org, models.RoleAdmin)
	p := env.Project(adminActor, "Launch")
	env.Join(p, member)
	env.Task(adminActor, p, tasks.CreateInput{})
	env.Task(adminActor, p, tasks.CreateInput{Status: models.StatusDone})

	url := "/projects/" + p.ID.Hex() + "/report/status-count"
	rec := testutil.Serve(router, prefix, testutil.JSONRequest(t, "GET", url, nil), &manager)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var counts map[string]int64
	testutil.DecodeJSON(t, rec, &counts)
	want := map[string]int64{"todo": 1, "in-progress": 0, "done": 1}
	if len(counts) != len(want) {
		t.Fatalf("counts = %v, want %v", counts, want)
	}
	for k, n := range want {
		if got, ok := counts[k]; !ok || got != n {
			t.Errorf("%s = %d (present %v), want %d", k, got, ok, n)
		}
	}

	rec = testutil.Serve(router, prefix, testutil.JSONRequest(t, "GET", url, nil), &member)
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	rec = testutil.Serve(router, prefix, testutil.JSONRequest(t, "GET", "/projects/nope/report/status-count", nil), &manager)
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestOverdue_EmptyIsArray(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	router := reports.Routes(reports.NewHandler(env.Reports, zap.NewNop()))
	admin, adminActor := env.User(env.Org("Acme"), models.RoleAdmin)
	p := env.Project(adminActor, "Launch")

	rec := testutil.Serve(router, prefix, testutil.JSONRequest(t, "GET", "/projects/"+p.ID.Hex()+"/report/overdue-tasks", nil), &admin)
	testutil.AssertStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "[]\n" {
		t.Errorf("body = %q, want empty array", rec.Body.String())
	}
}
