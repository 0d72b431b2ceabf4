// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType identifies the event that produced a notification.
type NotificationType string

const (
	NotifyAssignment   NotificationType = "assignment"
	NotifyStatusChange NotificationType = "status_change"
	NotifyCommentAdded NotificationType = "comment_added"
)

// Notification is written only by fan-out and mutated only by read-state
// transitions. The project/task backlinks are cleared when the target is
// deleted; the notification itself survives.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Type      NotificationType    `bson:"type" json:"type"`
	Message   string              `bson:"message" json:"message"`
	ProjectID *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
	TaskID    *primitive.ObjectID `bson:"task_id,omitempty" json:"task_id,omitempty"`
	IsRead    bool                `bson:"is_read" json:"is_read"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
