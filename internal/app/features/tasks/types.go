// internal/app/features/tasks/types.go
package tasks

import (
	"strings"
	"time"

	tasksvc "github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errBadDueDate = apperr.Validation("due_date must be YYYY-MM-DD or RFC 3339")

// createRequest is the body of POST /projects/{projectID}/tasks.
type createRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	AssigneeID  *string `json:"assignee_id"`
}

// updateRequest is the body of PATCH /tasks/{taskID}. Absent fields are
// left unchanged.
type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"due_date"`
	AssigneeID  *string `json:"assignee_id"`
}

func (in createRequest) toInput() (tasksvc.CreateInput, error) {
	out := tasksvc.CreateInput{
		Title:       in.Title,
		Description: in.Description,
		Status:      models.TaskStatus(strings.TrimSpace(in.Status)),
		Priority:    models.TaskPriority(strings.TrimSpace(in.Priority)),
	}
	var err error
	if out.DueDate, err = parseDue(in.DueDate); err != nil {
		return out, err
	}
	if out.AssigneeID, err = parseAssignee(in.AssigneeID); err != nil {
		return out, err
	}
	return out, nil
}

func (in updateRequest) toInput() (tasksvc.UpdateInput, error) {
	out := tasksvc.UpdateInput{
		Title:       in.Title,
		Description: in.Description,
	}
	if in.Status != nil {
		st := models.TaskStatus(strings.TrimSpace(*in.Status))
		out.Status = &st
	}
	if in.Priority != nil {
		pr := models.TaskPriority(strings.TrimSpace(*in.Priority))
		out.Priority = &pr
	}
	var err error
	if out.DueDate, err = parseDue(in.DueDate); err != nil {
		return out, err
	}
	if out.AssigneeID, err = parseAssignee(in.AssigneeID); err != nil {
		return out, err
	}
	return out, nil
}

// parseDue accepts a calendar date or a full RFC 3339 timestamp. A blank
// string is still a value: it comes back as the zero time so the service
// rejects it rather than treating the field as absent.
func parseDue(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return &time.Time{}, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, errBadDueDate
}

// parseAssignee maps a blank id to the nil ObjectID, which no user has.
func parseAssignee(s *string) (*primitive.ObjectID, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		id := primitive.NilObjectID
		return &id, nil
	}
	id, err := primitive.ObjectIDFromHex(v)
	if err != nil {
		return nil, tasksvc.ErrAssigneeNotFound
	}
	return &id, nil
}
