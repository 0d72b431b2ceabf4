package comments_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/features/comments"
	"github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
	"go.uber.org/zap"
)

const prefix = "/tasks/{taskID}/comments"

func TestAddAndList(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{})
	router := comments.Routes(comments.NewHandler(env.Comments, zap.NewNop()))
	org := env.Org("Acme")
	admin, adminActor := env.User(org, models.RoleAdmin)
	member, _ := env.User(org, models.RoleMember)
	outsider, _ := env.User(org, models.RoleMember)
	p := env.Project(adminActor, "Launch")
	env.Join(p, member)
	task := env.Task(adminActor, p, tasks.CreateInput{AssigneeID: &member.ID})
	url := "/tasks/" + task.ID.Hex() + "/comments"

	rec := testutil.Serve(router, prefix, testutil.JSONRequest(t, "POST", url, map[string]string{
		"content": `<em>ready</em><img src=x onerror="alert(1)">`,
	}), &admin)
	testutil.AssertStatus(t, rec, http.StatusCreated)
	var c models.Comment
	testutil.DecodeJSON(t, rec, &c)
	if c.Content != "<em>ready</em>" && c.Content != `<em>ready</em><img src="x">` {
		t.Errorf("content not sanitized: %q", c.Content)
	}
	if n := memstore.CountType(env.Unread(member.ID), models.NotifyCommentAdded); n != 1 {
		t.Errorf("assignee comment notifications = %d, want 1", n)
	}

	rec = testutil.Serve(router, prefix, testutil.JSONRequest(t, "POST", url, map[string]string{"content": "  "}), &member)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	rec = testutil.Serve(router, prefix, testutil.JSONRequest(t, "GET", url, nil), &member)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var list []models.Comment
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("comments = %d, want 1", len(list))
	}

	rec = testutil.Serve(router, prefix, testutil.JSONRequest(t, "GET", url, nil), &outsider)
	testutil.AssertStatus(t, rec, http.StatusForbidden)
}
