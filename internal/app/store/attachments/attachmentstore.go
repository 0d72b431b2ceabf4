package attachmentstore

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

var ErrNotFound = apperr.NotFound("attachment not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("attachments")}
}

func (s *Store) Create(ctx context.Context, a models.Attachment) (models.Attachment, error) {
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Attachment{}, err
	}
	return a, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Attachment, error) {
	var a models.Attachment
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Attachment{}, ErrNotFound
	}
	if err != nil {
		return models.Attachment{}, err
	}
	return a, nil
}

// ListByTask returns a task's attachments, oldest first.
func (s *Store) ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Attachment, error) {
	return s.find(ctx, bson.M{"task_id": taskID})
}

// ListByProject returns every attachment of a project's tasks.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Attachment, error) {
	return s.find(ctx, bson.M{"project_id": projectID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Attachment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Attachment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CountByTask(ctx context.Context, taskID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"task_id": taskID})
}

// DeleteByProject removes the attachment rows of a project. Stored bytes
// are removed separately by the caller.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
