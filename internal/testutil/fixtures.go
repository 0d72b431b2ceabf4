package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data directly in Mongo.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert %s fixture: %v", coll, err)
	}
}

// CreateOrganization creates a test organization with the given name.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()
	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "organizations", org)
	return org
}

// CreateUser creates a test user. The password hash is a placeholder; tests
// that log in create users through the accounts service instead.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string, role models.Role, orgID primitive.ObjectID) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Email:          email,
		PasswordHash:   "x",
		Role:           role,
		FullName:       fullName,
		FullNameCI:     text.Fold(fullName),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateProject creates a project in orgID owned by createdBy.
func (f *Fixtures) CreateProject(ctx context.Context, name string, orgID, createdBy primitive.ObjectID) models.Project {
	f.t.Helper()
	now := time.Now().UTC()
	p := models.Project{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Name:           name,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "projects", p)
	return p
}

// AddMember links userID to the project.
func (f *Fixtures) AddMember(ctx context.Context, p models.Project, userID primitive.ObjectID) models.ProjectMembership {
	f.t.Helper()
	m := models.ProjectMembership{
		ID:        primitive.NewObjectID(),
		ProjectID: p.ID,
		UserID:    userID,
		OrgID:     p.OrganizationID,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "project_memberships", m)
	return m
}

// CreateTask creates a todo task in p.
func (f *Fixtures) CreateTask(ctx context.Context, p models.Project, title string, assignee *primitive.ObjectID) models.Task {
	f.t.Helper()
	now := time.Now().UTC()
	t := models.Task{
		ID:             primitive.NewObjectID(),
		ProjectID:      p.ID,
		OrganizationID: p.OrganizationID,
		Title:          title,
		Status:         models.StatusTodo,
		Priority:       models.PriorityMedium,
		AssigneeID:     assignee,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.insert(ctx, "tasks", t)
	return t
}
