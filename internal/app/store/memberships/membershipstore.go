// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("project_memberships")}
}

// ErrDuplicateMembership is returned by Add when the pair already exists.
var ErrDuplicateMembership = apperr.Conflict("user is already a member of this project")

// Add links userID to projectID. The caller has already checked that both
// belong to orgID.
func (s *Store) Add(ctx context.Context, projectID, userID, orgID primitive.ObjectID) (models.ProjectMembership, error) {
	m := models.ProjectMembership{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		OrgID:     orgID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ProjectMembership{}, ErrDuplicateMembership
		}
		return models.ProjectMembership{}, err
	}
	return m, nil
}

// Remove deletes the membership for (projectID, userID). It reports whether a
// document was removed.
func (s *Store) Remove(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"project_id": projectID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// Exists checks if a membership exists for the given project and user.
func (s *Store) Exists(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"project_id": projectID, "user_id": userID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByProject returns a project's memberships in join order.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.ProjectMembership, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ProjectMembership
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProjectIDsForUser returns the ids of every project userID belongs to.
func (s *Store) ProjectIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "project_id", bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}

// DeleteByProject removes all memberships for a project.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByOrg removes all memberships for an organization.
func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"org_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
