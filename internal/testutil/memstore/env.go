package memstore

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	"github.com/dalemusser/taskhub/internal/app/services/accounts"
	"github.com/dalemusser/taskhub/internal/app/services/attachments"
	"github.com/dalemusser/taskhub/internal/app/services/comments"
	"github.com/dalemusser/taskhub/internal/app/services/membership"
	"github.com/dalemusser/taskhub/internal/app/services/notify"
	"github.com/dalemusser/taskhub/internal/app/services/projects"
	"github.com/dalemusser/taskhub/internal/app/services/reports"
	"github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/blob"
	"github.com/dalemusser/taskhub/internal/app/system/metrics"
	"github.com/dalemusser/taskhub/internal/app/system/txn"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TestSecret signs tokens in tests.
const TestSecret = "memstore-test-secret-at-least-32-chars"

// Env wires every service over one in-memory DB.
type Env struct {
	t   testing.TB
	seq atomic.Int64

	DB      *DB
	Blobs   *blob.Store
	Metrics *metrics.Metrics
	Tokens  *auth.TokenIssuer
	Gate    *projectpolicy.Gate
	Now     time.Time

	Notify      *notify.Service
	Tasks       *tasks.Service
	Membership  *membership.Service
	Projects    *projects.Service
	Comments    *comments.Service
	Attachments *attachments.Service
	Reports     *reports.Service
	Accounts    *accounts.Service
}

// EnvConfig overrides limits. Zero values get small test defaults.
type EnvConfig struct {
	MaxFileSize     int64
	MaxFilesPerTask int
}

// NewEnv builds an Env whose clock is fixed at Env.Now.
func NewEnv(t testing.TB, cfg EnvConfig) *Env {
	t.Helper()
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = 1024
	}
	if cfg.MaxFilesPerTask == 0 {
		cfg.MaxFilesPerTask = 3
	}

	db := New()
	log := zap.NewNop()
	tokens, err := auth.NewTokenIssuer(TestSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	e := &Env{
		t:       t,
		DB:      db,
		Blobs:   blob.NewMemory(),
		Metrics: metrics.New(),
		Tokens:  tokens,
		Now:     time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return e.Now }
	runner := txn.Direct{}

	e.Gate = projectpolicy.NewGate(db.Projects(), db.Tasks(), db.Memberships(), e.Metrics)
	e.Notify = notify.New(db.Notifications(), log, e.Metrics)
	e.Tasks = tasks.New(tasks.Deps{
		Tasks:    db.Tasks(),
		Users:    db.Users(),
		Notifier: e.Notify,
		Gate:     e.Gate,
		Txn:      runner,
		Log:      log,
		Metrics:  e.Metrics,
		Now:      clock,
	})
	e.Membership = membership.New(db.Memberships(), db.Users(), e.Gate, log)
	e.Projects = projects.New(projects.Deps{
		Projects:      db.Projects(),
		Memberships:   db.Memberships(),
		Tasks:         db.Tasks(),
		Comments:      db.Comments(),
		Attachments:   db.Attachments(),
		Notifications: db.Notifications(),
		Blobs:         e.Blobs,
		Gate:          e.Gate,
		Txn:           runner,
		Log:           log,
	})
	e.Comments = comments.New(db.Comments(), e.Notify, e.Gate, runner, log)
	e.Attachments = attachments.New(attachments.Config{
		MaxFileSize:     cfg.MaxFileSize,
		MaxFilesPerTask: cfg.MaxFilesPerTask,
	}, db.Attachments(), e.Blobs, e.Gate, log)
	e.Reports = reports.New(db.Tasks(), e.Gate, clock)
	e.Accounts = accounts.New(accounts.Deps{
		Config:        accounts.Config{MinPasswordLength: 8, BcryptCost: 4},
		Orgs:          db.Orgs(),
		Users:         db.Users(),
		Notifications: db.Notifications(),
		Projects:      e.Projects,
		Tokens:        tokens,
		Gate:          e.Gate,
		Txn:           runner,
		Log:           log,
	})
	return e
}

// Org creates an organization with a unique name.
func (e *Env) Org(name string) models.Organization {
	e.t.Helper()
	org, err := e.DB.Orgs().Create(context.Background(), models.Organization{
		Name: fmt.Sprintf("%s %d", name, e.seq.Add(1)),
	})
	if err != nil {
		e.t.Fatalf("create org: %v", err)
	}
	return org
}

// User creates a user in org and returns it with its Actor.
func (e *Env) User(org models.Organization, role models.Role) (models.User, accesspolicy.Actor) {
	e.t.Helper()
	n := e.seq.Add(1)
	u, err := e.DB.Users().Create(context.Background(), models.User{
		OrganizationID: org.ID,
		Email:          fmt.Sprintf("user%d@example.test", n),
		Role:           role,
		FullName:       fmt.Sprintf("User %d", n),
	})
	if err != nil {
		e.t.Fatalf("create user: %v", err)
	}
	return u, Actor(u)
}

// Actor converts u into the caller identity the services take.
func Actor(u models.User) accesspolicy.Actor {
	return accesspolicy.Actor{UserID: u.ID, OrgID: u.OrganizationID, Role: u.Role}
}

// Project creates a project as actor, who becomes its first member.
func (e *Env) Project(actor accesspolicy.Actor, name string) models.Project {
	e.t.Helper()
	p, err := e.Projects.Create(context.Background(), actor, projects.CreateInput{Name: name})
	if err != nil {
		e.t.Fatalf("create project: %v", err)
	}
	return p
}

// Join adds users to p directly, bypassing authorization.
func (e *Env) Join(p models.Project, users ...models.User) {
	e.t.Helper()
	for _, u := range users {
		if _, err := e.DB.Memberships().Add(context.Background(), p.ID, u.ID, p.OrganizationID); err != nil {
			e.t.Fatalf("add member: %v", err)
		}
	}
}

// Task creates a task in p as actor.
func (e *Env) Task(actor accesspolicy.Actor, p models.Project, in tasks.CreateInput) models.Task {
	e.t.Helper()
	if in.Title == "" {
		in.Title = fmt.Sprintf("task %d", e.seq.Add(1))
	}
	t, err := e.Tasks.Create(context.Background(), actor, p.ID, in)
	if err != nil {
		e.t.Fatalf("create task: %v", err)
	}
	return t
}

// Unread returns userID's unread notifications.
func (e *Env) Unread(userID primitive.ObjectID) []models.Notification {
	e.t.Helper()
	out, err := e.DB.Notifications().ListUnread(context.Background(), userID)
	if err != nil {
		e.t.Fatalf("list unread: %v", err)
	}
	return out
}

// CountType counts notifications of typ in ns.
func CountType(ns []models.Notification, typ models.NotificationType) int {
	n := 0
	for _, x := range ns {
		if x.Type == typ {
			n++
		}
	}
	return n
}
