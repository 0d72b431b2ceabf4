// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is immutable once written.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	TaskID    primitive.ObjectID `bson:"task_id" json:"task_id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Attachment records a file stored in blob storage for a task.
type Attachment struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	TaskID      primitive.ObjectID `bson:"task_id" json:"task_id"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	FileName    string             `bson:"file_name" json:"file_name"`
	StoragePath string             `bson:"storage_path" json:"-"`
	Size        int64              `bson:"size" json:"size"`
	ContentType string             `bson:"content_type,omitempty" json:"content_type,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
