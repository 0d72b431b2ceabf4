package attachments_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/features/attachments"
	"github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
	"go.uber.org/zap"
)

func multipartRequest(t *testing.T, url, field, name, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("note", "ignored")
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write([]byte(body))
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest("POST", url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAndDownload(t *testing.T) {
	env := memstore.NewEnv(t, memstore.EnvConfig{MaxFileSize: 16})
	h := attachments.NewHandler(env.Attachments, 16, zap.NewNop())
	taskRoutes, routes := attachments.TaskRoutes(h), attachments.Routes(h)

	org := env.Org("Acme")
	_, adminActor := env.User(org, models.RoleAdmin)
	member, _ := env.User(org, models.RoleMember)
	outsider, _ := env.User(org, models.RoleMember)
	p := env.Project(adminActor, "Launch")
	env.Join(p, member)
	task := env.Task(adminActor, p, tasks.CreateInput{})
	url := "/tasks/" + task.ID.Hex() + "/attachments"
	const prefix = "/tasks/{taskID}/attachments"

	rec := testutil.Serve(taskRoutes, prefix, multipartRequest(t, url, "file", "report final.txt", "hello world"), &member)
	testutil.AssertStatus(t, rec, http.StatusCreated)
	var a models.Attachment
	testutil.DecodeJSON(t, rec, &a)
	if a.FileName != "report final.txt" || a.Size != 11 {
		t.Fatalf("unexpected attachment %+v", a)
	}
	if strings.Contains(rec.Body.String(), "storage_path") {
		t.Errorf("storage path leaked: %s", rec.Body.String())
	}

	rec = testutil.Serve(taskRoutes, prefix, multipartRequest(t, url, "file", "big.txt", strings.Repeat("x", 17)), &member)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	rec = testutil.Serve(taskRoutes, prefix, multipartRequest(t, url, "upload", "a.txt", "x"), &member)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	rec = testutil.Serve(taskRoutes, prefix, testutil.JSONRequest(t, "POST", url, map[string]string{"file": "x"}), &member)
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	rec = testutil.Serve(taskRoutes, prefix, testutil.JSONRequest(t, "GET", url, nil), &member)
	testutil.AssertStatus(t, rec, http.StatusOK)
	var list []models.Attachment
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("attachments = %d, want 1", len(list))
	}

	dl := "/attachments/" + a.ID.Hex() + "/download"
	rec = testutil.Serve(routes, "/attachments", testutil.JSONRequest(t, "GET", dl, nil), &member)
	testutil.AssertStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "hello world" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, "report final.txt") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rec = testutil.Serve(routes, "/attachments", testutil.JSONRequest(t, "GET", dl, nil), &outsider)
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	rec = testutil.Serve(routes, "/attachments", testutil.JSONRequest(t, "GET", "/attachments/bogus/download", nil), &member)
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}
