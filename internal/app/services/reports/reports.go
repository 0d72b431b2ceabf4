// internal/app/services/reports/reports.go
package reports

import (
	"context"
	"time"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskReader interface {
	CountByStatus(ctx context.Context, projectID primitive.ObjectID) (map[models.TaskStatus]int64, error)
	ListOverdue(ctx context.Context, projectID primitive.ObjectID, day time.Time) ([]models.Task, error)
}

type Gate interface {
	Project(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, projectID primitive.ObjectID) (models.Project, error)
}

// Service answers project reports for admins and managers. Reports need an
// org match but not project membership.
type Service struct {
	tasks TaskReader
	gate  Gate
	now   func() time.Time
}

// New builds a Service. A nil now uses time.Now.
func New(tasks TaskReader, gate Gate, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{tasks: tasks, gate: gate, now: now}
}

// StatusCount returns the number of tasks in each status.
func (s *Service) StatusCount(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID) (map[models.TaskStatus]int64, error) {
	p, err := s.gate.Project(ctx, actor, accesspolicy.ReportView, projectID)
	if err != nil {
		return nil, err
	}
	return s.tasks.CountByStatus(ctx, p.ID)
}

// Overdue returns tasks due before today (UTC) that are not done.
func (s *Service) Overdue(ctx context.Context, actor accesspolicy.Actor, projectID primitive.ObjectID) ([]models.Task, error) {
	p, err := s.gate.Project(ctx, actor, accesspolicy.ReportView, projectID)
	if err != nil {
		return nil, err
	}
	y, m, d := s.now().UTC().Date()
	out, err := s.tasks.ListOverdue(ctx, p.ID, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Task{}
	}
	return out, nil
}
