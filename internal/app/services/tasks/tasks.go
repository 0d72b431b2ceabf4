// Package tasks implements the task lifecycle: creation, field updates,
// assignment and the forward-only status machine todo → in-progress → done.
//
// Assignment and status changes fan out through Notifier inside the same
// transaction as the write.
package tasks

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/taskhub/internal/app/system/metrics"
	"github.com/dalemusser/taskhub/internal/app/system/txn"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxTitleLen = 255

var (
	ErrAssigneeNotFound  = apperr.NotFound("assignee not found")
	ErrMembersStatusOnly = apperr.Forbidden("members can only update status")
	ErrStatusBackward    = apperr.Validation("status cannot move backward")
	ErrDueDateInPast     = apperr.Validation("due date cannot be in the past")
	ErrDueDateBlank      = apperr.Validation("due_date must not be blank")
	ErrTitleRequired     = apperr.Validation("title is required")
	ErrTitleTooLong      = apperr.Validationf("title must be at most %d characters", maxTitleLen)
	ErrInvalidStatus     = apperr.Validation(`status must be "todo"|"in-progress"|"done"`)
	ErrInvalidPriority   = apperr.Validation(`priority must be "low"|"medium"|"high"`)
)

type Store interface {
	Create(ctx context.Context, t models.Task) (models.Task, error)
	Update(ctx context.Context, id primitive.ObjectID, ch taskstore.Changes) (models.Task, error)
	List(ctx context.Context, projectID primitive.ObjectID, f taskstore.Filter) ([]models.Task, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// Notifier receives lifecycle events.
type Notifier interface {
	OnAssigned(ctx context.Context, t models.Task, assignee primitive.ObjectID) error
	OnStatusChanged(ctx context.Context, t models.Task) error
}

type Gate interface {
	Project(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, projectID primitive.ObjectID) (models.Project, error)
	Task(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, taskID primitive.ObjectID) (models.Task, models.Project, error)
	Allows(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, p models.Project) (bool, error)
}

var _ Gate = (*projectpolicy.Gate)(nil)

type Deps struct {
	Tasks    Store
	Users    UserGetter
	Notifier Notifier
	Gate     Gate
	Txn      txn.Runner
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time // defaults to time.Now
}

type Service struct {
	Deps
}

func New(d Deps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Service{Deps: d}
}

// CreateInput is the payload of Create. Empty Status and Priority default
// to todo and medium.
type CreateInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssigneeID  *primitive.ObjectID
}

// UpdateInput is the payload of Update. Nil fields are not changed. A zero
// DueDate or AssigneeID is a blank value sent by the caller: it counts as
// present and is rejected.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *time.Time
	AssigneeID  *primitive.ObjectID
}

// onlyStatus reports whether in touches nothing but the status.
func (in UpdateInput) onlyStatus() bool {
	return in.Title == nil && in.Description == nil && in.Priority == nil &&
		in.DueDate == nil && in.AssigneeID == nil
}

// Create adds a task to projectID. Members may not create tasks.
func (s *Service) Create(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID, in CreateInput) (models.Task, error) {
	p, err := s.Gate.Project(ctx, actor, accesspolicy.TaskCreate, projectID)
	if err != nil {
		return models.Task{}, err
	}

	title, err := cleanTitle(in.Title)
	if err != nil {
		return models.Task{}, err
	}
	t := models.Task{
		ProjectID:      p.ID,
		OrganizationID: p.OrganizationID,
		Title:          title,
		Description:    htmlsanitize.Sanitize(in.Description),
		Status:         in.Status,
		Priority:       in.Priority,
		CreatedBy:      actor.UserID,
	}
	if t.Status == "" {
		t.Status = models.StatusTodo
	}
	if !t.Status.Valid() {
		return models.Task{}, ErrInvalidStatus
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if !t.Priority.Valid() {
		return models.Task{}, ErrInvalidPriority
	}
	if in.DueDate != nil {
		due, err := s.checkDue(*in.DueDate)
		if err != nil {
			return models.Task{}, err
		}
		t.DueDate = &due
	}
	if in.AssigneeID != nil {
		if err := s.checkAssignee(ctx, actor, p, *in.AssigneeID); err != nil {
			return models.Task{}, err
		}
		id := *in.AssigneeID
		t.AssigneeID = &id
	}

	var created models.Task
	err = s.Txn.Run(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.Tasks.Create(ctx, t)
		if err != nil {
			return err
		}
		if created.AssigneeID != nil {
			return s.Notifier.OnAssigned(ctx, created, *created.AssigneeID)
		}
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}

	s.Log.Info("task created",
		zap.String("task_id", created.ID.Hex()),
		zap.String("project_id", p.ID.Hex()),
		zap.String("user_id", actor.UserID.Hex()))
	return created, nil
}

// Update applies in to taskID.
//
// Members may only change the status. A status may move forward or stay; a
// lower rank is rejected. Reassigning to the current assignee changes
// nothing and notifies nobody. Every successful update refreshes updated_at.
func (s *Service) Update(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID, in UpdateInput) (models.Task, error) {
	cur, p, err := s.Gate.Task(ctx, actor, accesspolicy.TaskUpdate, taskID)
	if err != nil {
		return models.Task{}, err
	}
	if actor.Role == models.RoleMember && !in.onlyStatus() {
		s.Metrics.AccessDenied(string(accesspolicy.TaskUpdate), ErrMembersStatusOnly.Msg)
		return models.Task{}, ErrMembersStatusOnly
	}

	var ch taskstore.Changes
	if in.Title != nil {
		title, err := cleanTitle(*in.Title)
		if err != nil {
			return models.Task{}, err
		}
		ch.Title = &title
	}
	if in.Description != nil {
		d := htmlsanitize.Sanitize(*in.Description)
		ch.Description = &d
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return models.Task{}, ErrInvalidPriority
		}
		ch.Priority = in.Priority
	}
	if in.DueDate != nil {
		due, err := s.checkDue(*in.DueDate)
		if err != nil {
			return models.Task{}, err
		}
		ch.DueDate = &due
	}

	reassigned := false
	if in.AssigneeID != nil {
		if err := s.checkAssignee(ctx, actor, p, *in.AssigneeID); err != nil {
			return models.Task{}, err
		}
		if !cur.AssignedTo(*in.AssigneeID) {
			ch.AssigneeID = in.AssigneeID
			reassigned = true
		}
	}

	statusChanged := false
	if in.Status != nil {
		next := *in.Status
		if !next.Valid() {
			return models.Task{}, ErrInvalidStatus
		}
		if next.Rank() < cur.Status.Rank() {
			return models.Task{}, ErrStatusBackward
		}
		if next != cur.Status {
			ch.Status = &next
			prev := cur.Status
			ch.IfStatus = &prev
			statusChanged = true
		}
	}

	var updated models.Task
	err = s.Txn.Run(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.Tasks.Update(ctx, cur.ID, ch)
		if err != nil {
			return err
		}
		if reassigned {
			if err := s.Notifier.OnAssigned(ctx, updated, *updated.AssigneeID); err != nil {
				return err
			}
		}
		if statusChanged {
			return s.Notifier.OnStatusChanged(ctx, updated)
		}
		return nil
	})
	if errors.Is(err, taskstore.ErrNotFound) {
		return models.Task{}, projectpolicy.ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, err
	}

	if statusChanged {
		s.Metrics.StatusTransition(cur.Status, updated.Status)
	}
	s.Log.Info("task updated",
		zap.String("task_id", updated.ID.Hex()),
		zap.String("user_id", actor.UserID.Hex()),
		zap.Bool("status_changed", statusChanged),
		zap.Bool("reassigned", reassigned))
	return updated, nil
}

// Get returns taskID.
func (s *Service) Get(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID) (models.Task, error) {
	t, _, err := s.Gate.Task(ctx, actor, accesspolicy.TaskView, taskID)
	return t, err
}

// List returns the project's tasks matching f, oldest first.
func (s *Service) List(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID, f taskstore.Filter) ([]models.Task, error) {
	if _, err := s.Gate.Project(ctx, actor, accesspolicy.TaskView, projectID); err != nil {
		return nil, err
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if f.Priority != nil && !f.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	out, err := s.Tasks.List(ctx, projectID, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Task{}
	}
	return out, nil
}

// checkAssignee verifies actor may assign and that assignee is a user of the
// project's organization.
func (s *Service) checkAssignee(ctx context.Context, actor accesspolicy.Actor, p models.Project, assignee primitive.ObjectID) error {
	ok, err := s.Gate.Allows(ctx, actor, accesspolicy.TaskAssign, p)
	if err != nil {
		return err
	}
	if !ok {
		s.Metrics.AccessDenied(string(accesspolicy.TaskAssign), "insufficient role")
		return apperr.Forbidden("insufficient role to assign tasks")
	}
	if assignee.IsZero() {
		return ErrAssigneeNotFound
	}
	u, err := s.Users.GetByID(ctx, assignee)
	if errors.Is(err, apperr.ErrNotFound) {
		return ErrAssigneeNotFound
	}
	if err != nil {
		return err
	}
	if u.OrganizationID != p.OrganizationID {
		return ErrAssigneeNotFound
	}
	return nil
}

// checkDue truncates due to its UTC day and rejects days before today.
func (s *Service) checkDue(due time.Time) (time.Time, error) {
	if due.IsZero() {
		return time.Time{}, ErrDueDateBlank
	}
	day := StartOfDay(due)
	if day.Before(StartOfDay(s.Now())) {
		return time.Time{}, ErrDueDateInPast
	}
	return day, nil
}

// StartOfDay returns midnight UTC of t's UTC date.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cleanTitle(s string) (string, error) {
	s = strings.TrimSpace(htmlsanitize.StripTags(s))
	if s == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(s) > maxTitleLen {
		return "", ErrTitleTooLong
	}
	return s, nil
}
