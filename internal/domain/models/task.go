// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStatus is a lifecycle state. States are totally ordered by Rank.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// Rank returns the position of s in the lifecycle, or 0 when s is unknown.
func (s TaskStatus) Rank() int {
	switch s {
	case StatusTodo:
		return 1
	case StatusInProgress:
		return 2
	case StatusDone:
		return 3
	}
	return 0
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool { return s.Rank() > 0 }

// AllStatuses lists statuses in lifecycle order.
func AllStatuses() []TaskStatus {
	return []TaskStatus{StatusTodo, StatusInProgress, StatusDone}
}

// TaskPriority is informational only.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work inside a project. OrganizationID is copied from the
// project when the task is created so org checks need no extra lookup.
type Task struct {
	ID             primitive.ObjectID  `bson:"_id" json:"id"`
	ProjectID      primitive.ObjectID  `bson:"project_id" json:"project_id"`
	OrganizationID primitive.ObjectID  `bson:"organization_id" json:"org_id"`
	Title          string              `bson:"title" json:"title"`
	Description    string              `bson:"description,omitempty" json:"description,omitempty"`
	Status         TaskStatus          `bson:"status" json:"status"`
	Priority       TaskPriority        `bson:"priority" json:"priority"`
	DueDate        *time.Time          `bson:"due_date,omitempty" json:"due_date,omitempty"`
	AssigneeID     *primitive.ObjectID `bson:"assignee_id,omitempty" json:"assignee_id,omitempty"`
	CreatedBy      primitive.ObjectID  `bson:"created_by" json:"created_by"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updated_at"`
}

// AssignedTo reports whether the task is currently assigned to userID.
func (t Task) AssignedTo(userID primitive.ObjectID) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
