// internal/app/store/tasks/taskstore.go
package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound = apperr.NotFound("task not found")
	// ErrStatusChanged is returned by Update when Changes.IfStatus no longer
	// matches the stored status.
	ErrStatusChanged = apperr.Conflict("task status was changed by another request")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

// Filter narrows List. Nil fields match everything; set fields combine with AND.
type Filter struct {
	Status     *models.TaskStatus
	AssigneeID *primitive.ObjectID
	Priority   *models.TaskPriority
}

// Changes lists the fields Update writes. Nil fields are left untouched.
type Changes struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *time.Time
	AssigneeID  *primitive.ObjectID

	// IfStatus makes the write conditional on the current stored status.
	IfStatus *models.TaskStatus
}

// Apply copies the set fields of c onto t.
func (c Changes) Apply(t *models.Task) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.DueDate != nil {
		d := *c.DueDate
		t.DueDate = &d
	}
	if c.AssigneeID != nil {
		id := *c.AssigneeID
		t.AssigneeID = &id
	}
}

func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Task, error) {
	var t models.Task
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// List returns the project's tasks matching f, oldest first.
func (s *Store) List(ctx context.Context, projectID primitive.ObjectID, f Filter) ([]models.Task, error) {
	filter := bson.M{"project_id": projectID}
	if f.Status != nil {
		filter["status"] = *f.Status
	}
	if f.AssigneeID != nil {
		filter["assignee_id"] = *f.AssigneeID
	}
	if f.Priority != nil {
		filter["priority"] = *f.Priority
	}
	return s.find(ctx, filter)
}

// ListOverdue returns tasks due strictly before day that are not done.
func (s *Store) ListOverdue(ctx context.Context, projectID primitive.ObjectID, day time.Time) ([]models.Task, error) {
	return s.find(ctx, bson.M{
		"project_id": projectID,
		"due_date":   bson.M{"$lt": day},
		"status":     bson.M{"$ne": models.StatusDone},
	})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Task
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes ch and refreshes updated_at, returning the task as stored
// after the write.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, ch Changes) (models.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if ch.Title != nil {
		set["title"] = *ch.Title
	}
	if ch.Description != nil {
		set["description"] = *ch.Description
	}
	if ch.Status != nil {
		set["status"] = *ch.Status
	}
	if ch.Priority != nil {
		set["priority"] = *ch.Priority
	}
	if ch.DueDate != nil {
		set["due_date"] = *ch.DueDate
	}
	if ch.AssigneeID != nil {
		set["assignee_id"] = *ch.AssigneeID
	}

	filter := bson.M{"_id": id}
	if ch.IfStatus != nil {
		filter["status"] = *ch.IfStatus
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Task
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if ch.IfStatus == nil {
			return models.Task{}, ErrNotFound
		}
		// No match under IfStatus: the task is either gone or has moved on.
		n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
		if cerr != nil {
			return models.Task{}, cerr
		}
		if n == 0 {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, ErrStatusChanged
	}
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// CountByStatus returns the number of tasks per status in a project. Every
// known status is present in the result.
func (s *Store) CountByStatus(ctx context.Context, projectID primitive.ObjectID) (map[models.TaskStatus]int64, error) {
	out := make(map[models.TaskStatus]int64, 3)
	for _, st := range models.AllStatuses() {
		out[st] = 0
	}

	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"project_id": projectID}},
		{"$group": bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			Status models.TaskStatus `bson:"_id"`
			N      int64             `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Status] = row.N
	}
	return out, cur.Err()
}

// DeleteByProject removes all tasks of a project.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
