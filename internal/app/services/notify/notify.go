// Package notify derives notification records from task and comment events
// and exposes each user's inbox. Event methods are called synchronously by
// the mutating service, inside its transaction, once per event.
package notify

import (
	"context"
	"fmt"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/system/metrics"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Store interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	ListUnread(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) (models.Notification, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type Service struct {
	store   Store
	log     *zap.Logger
	metrics *metrics.Metrics
}

func New(store Store, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, log: logger, metrics: m}
}

// OnAssigned tells assignee they were assigned to t.
func (s *Service) OnAssigned(ctx context.Context, t models.Task, assignee primitive.ObjectID) error {
	return s.emit(ctx, assignee, models.NotifyAssignment, t,
		fmt.Sprintf("You have been assigned to task '%s'", t.Title))
}

// OnStatusChanged tells t's assignee about its new status. Unassigned tasks
// notify nobody.
func (s *Service) OnStatusChanged(ctx context.Context, t models.Task) error {
	if t.AssigneeID == nil {
		return nil
	}
	return s.emit(ctx, *t.AssigneeID, models.NotifyStatusChange, t,
		fmt.Sprintf("Task '%s' status changed to %s", t.Title, t.Status))
}

// OnCommentAdded tells t's assignee about a new comment unless they wrote it.
func (s *Service) OnCommentAdded(ctx context.Context, t models.Task, commenter primitive.ObjectID) error {
	if t.AssigneeID == nil || *t.AssigneeID == commenter {
		return nil
	}
	return s.emit(ctx, *t.AssigneeID, models.NotifyCommentAdded, t,
		fmt.Sprintf("New comment on task '%s'", t.Title))
}

func (s *Service) emit(ctx context.Context, to primitive.ObjectID, typ models.NotificationType, t models.Task, msg string) error {
	projectID, taskID := t.ProjectID, t.ID
	n, err := s.store.Create(ctx, models.Notification{
		UserID:    to,
		Type:      typ,
		Message:   msg,
		ProjectID: &projectID,
		TaskID:    &taskID,
	})
	if err != nil {
		return fmt.Errorf("create %s notification: %w", typ, err)
	}
	s.metrics.NotificationCreated(typ)
	s.log.Debug("notification created",
		zap.String("notification_id", n.ID.Hex()),
		zap.String("type", string(typ)),
		zap.String("user_id", to.Hex()),
		zap.String("task_id", t.ID.Hex()))
	return nil
}

// ListUnread returns the actor's unread notifications, newest first.
func (s *Service) ListUnread(ctx context.Context, actor accesspolicy.Actor) ([]models.Notification, error) {
	out, err := s.store.ListUnread(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Notification{}
	}
	return out, nil
}

// MarkRead marks one of the actor's notifications read. Another user's
// notification is not found.
func (s *Service) MarkRead(ctx context.Context, actor accesspolicy.Actor, id primitive.ObjectID) (models.Notification, error) {
	return s.store.MarkRead(ctx, id, actor.UserID)
}

// MarkAllRead marks every unread notification of the actor read and returns
// how many changed.
func (s *Service) MarkAllRead(ctx context.Context, actor accesspolicy.Actor) (int64, error) {
	return s.store.MarkAllRead(ctx, actor.UserID)
}
