package memstore_test

import (
	"context"
	"errors"
	"testing"

	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil/memstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTasks_Update_IfStatus(t *testing.T) {
	ctx := context.Background()
	tasks := memstore.New().Tasks()
	projectID := primitive.NewObjectID()

	task, err := tasks.Create(ctx, models.Task{ProjectID: projectID, Title: "write docs", Status: models.StatusTodo})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	todo, inProgress, done := models.StatusTodo, models.StatusInProgress, models.StatusDone

	if _, err := tasks.Update(ctx, task.ID, taskstore.Changes{Status: &inProgress, IfStatus: &todo}); err != nil {
		t.Fatalf("conditional update: %v", err)
	}

	tests := []struct {
		name   string
		id     primitive.ObjectID
		delete bool
		want   error
	}{
		{"status moved on", task.ID, false, taskstore.ErrStatusChanged},
		{"unknown task", primitive.NewObjectID(), false, taskstore.ErrNotFound},
		{"task deleted", task.ID, true, taskstore.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.delete {
				if _, err := tasks.DeleteByProject(ctx, projectID); err != nil {
					t.Fatalf("DeleteByProject: %v", err)
				}
			}
			_, err := tasks.Update(ctx, tt.id, taskstore.Changes{Status: &done, IfStatus: &todo})
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
