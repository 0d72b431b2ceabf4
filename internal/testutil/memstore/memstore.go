// Package memstore is an in-memory persistence layer with the same method
// sets, orderings, uniqueness rules and sentinel errors as the Mongo stores.
// Service tests use it with txn.Direct so they run without a database.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	attachmentstore "github.com/dalemusser/taskhub/internal/app/store/attachments"
	membershipstore "github.com/dalemusser/taskhub/internal/app/store/memberships"
	notificationstore "github.com/dalemusser/taskhub/internal/app/store/notifications"
	organizationstore "github.com/dalemusser/taskhub/internal/app/store/organizations"
	projectstore "github.com/dalemusser/taskhub/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/normalize"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errInvalidUser = apperr.Validation("user needs a known role and an organization")

// DB holds every collection.
type DB struct {
	mu sync.Mutex

	orgs          map[primitive.ObjectID]models.Organization
	users         map[primitive.ObjectID]models.User
	projects      map[primitive.ObjectID]models.Project
	memberships   map[primitive.ObjectID]models.ProjectMembership
	tasks         map[primitive.ObjectID]models.Task
	comments      map[primitive.ObjectID]models.Comment
	attachments   map[primitive.ObjectID]models.Attachment
	notifications map[primitive.ObjectID]models.Notification

	failures map[string]error
}

func New() *DB {
	return &DB{
		orgs:          map[primitive.ObjectID]models.Organization{},
		users:         map[primitive.ObjectID]models.User{},
		projects:      map[primitive.ObjectID]models.Project{},
		memberships:   map[primitive.ObjectID]models.ProjectMembership{},
		tasks:         map[primitive.ObjectID]models.Task{},
		comments:      map[primitive.ObjectID]models.Comment{},
		attachments:   map[primitive.ObjectID]models.Attachment{},
		notifications: map[primitive.ObjectID]models.Notification{},
		failures:      map[string]error{},
	}
}

// FailNext makes the next call of op (e.g. "attachments.Create") return err.
func (db *DB) FailNext(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures[op] = err
}

// fail must be called with db.mu held.
func (db *DB) fail(op string) error {
	err, ok := db.failures[op]
	if !ok {
		return nil
	}
	delete(db.failures, op)
	return err
}

func (db *DB) Orgs() *Orgs                   { return &Orgs{db} }
func (db *DB) Users() *Users                 { return &Users{db} }
func (db *DB) Projects() *Projects           { return &Projects{db} }
func (db *DB) Memberships() *Memberships     { return &Memberships{db} }
func (db *DB) Tasks() *Tasks                 { return &Tasks{db} }
func (db *DB) Comments() *Comments           { return &Comments{db} }
func (db *DB) Attachments() *Attachments     { return &Attachments{db} }
func (db *DB) Notifications() *Notifications { return &Notifications{db} }

func now() time.Time { return time.Now().UTC() }

// before orders by creation time, then id, like the Mongo sorts.
func before(at, bt time.Time, a, b primitive.ObjectID) bool {
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return bytes.Compare(a[:], b[:]) < 0
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

/*─────────────────────────────────────────────────────────────────────────────*
| Organizations                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

type Orgs struct{ db *DB }

func (s *Orgs) Create(_ context.Context, org models.Organization) (models.Organization, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("orgs.Create"); err != nil {
		return models.Organization{}, err
	}
	org.Name = normalize.Name(org.Name)
	org.NameCI = text.Fold(org.Name)
	for _, o := range s.db.orgs {
		if o.NameCI == org.NameCI {
			return models.Organization{}, organizationstore.ErrDuplicateOrganization
		}
	}
	org.ID = primitive.NewObjectID()
	org.CreatedAt, org.UpdatedAt = now(), now()
	s.db.orgs[org.ID] = org
	return org, nil
}

func (s *Orgs) GetByID(_ context.Context, id primitive.ObjectID) (models.Organization, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.orgs[id]
	if !ok {
		return models.Organization{}, organizationstore.ErrNotFound
	}
	return o, nil
}

func (s *Orgs) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.orgs[id]; !ok {
		return organizationstore.ErrNotFound
	}
	delete(s.db.orgs, id)
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Users                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type Users struct{ db *DB }

func (s *Users) Create(_ context.Context, u models.User) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("users.Create"); err != nil {
		return models.User{}, err
	}
	u.Email = normalize.Email(u.Email)
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	if u.Role == "" {
		u.Role = models.RoleMember
	}
	if !u.Role.Valid() || u.OrganizationID.IsZero() {
		return models.User{}, errInvalidUser
	}
	for _, x := range s.db.users {
		if x.Email == u.Email {
			return models.User{}, userstore.ErrDuplicateEmail
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt, u.UpdatedAt = now(), now()
	s.db.users[u.ID] = u
	return u, nil
}

func (s *Users) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("users.GetByID"); err != nil {
		return models.User{}, err
	}
	u, ok := s.db.users[id]
	if !ok {
		return models.User{}, userstore.ErrNotFound
	}
	return u, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = normalize.Email(email)
	for _, u := range s.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, userstore.ErrNotFound
}

func (s *Users) ListByOrg(_ context.Context, orgID primitive.ObjectID) ([]models.User, error) {
	return s.list(func(u models.User) bool { return u.OrganizationID == orgID }), nil
}

func (s *Users) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.list(func(u models.User) bool { return contains(ids, u.ID) }), nil
}

// list returns matching users ordered by name, then email.
func (s *Users) list(match func(models.User) bool) []models.User {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.User
	for _, u := range s.db.users {
		if match(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullNameCI != out[j].FullNameCI {
			return out[i].FullNameCI < out[j].FullNameCI
		}
		return out[i].Email < out[j].Email
	})
	return out
}

func (s *Users) IDsByOrg(ctx context.Context, orgID primitive.ObjectID) ([]primitive.ObjectID, error) {
	users, _ := s.ListByOrg(ctx, orgID)
	ids := make([]primitive.ObjectID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

func (s *Users) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return userstore.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = now()
	s.db.users[id] = u
	return nil
}

func (s *Users) DeleteByOrg(_ context.Context, orgID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, u := range s.db.users {
		if u.OrganizationID == orgID {
			delete(s.db.users, id)
			n++
		}
	}
	return n, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Projects                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type Projects struct{ db *DB }

func (s *Projects) Create(_ context.Context, p models.Project) (models.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("projects.Create"); err != nil {
		return models.Project{}, err
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now(), now()
	s.db.projects[p.ID] = p
	return p, nil
}

func (s *Projects) GetByID(_ context.Context, id primitive.ObjectID) (models.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[id]
	if !ok {
		return models.Project{}, projectstore.ErrNotFound
	}
	return p, nil
}

func (s *Projects) ListByOrg(_ context.Context, orgID primitive.ObjectID, ids []primitive.ObjectID) ([]models.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Project
	for _, p := range s.db.projects {
		if p.OrganizationID != orgID {
			continue
		}
		if ids != nil && !contains(ids, p.ID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Projects) Delete(_ context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.projects[id]; !ok {
		return projectstore.ErrNotFound
	}
	delete(s.db.projects, id)
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Memberships                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type Memberships struct{ db *DB }

func (s *Memberships) Add(_ context.Context, projectID, userID, orgID primitive.ObjectID) (models.ProjectMembership, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("memberships.Add"); err != nil {
		return models.ProjectMembership{}, err
	}
	for _, m := range s.db.memberships {
		if m.ProjectID == projectID && m.UserID == userID {
			return models.ProjectMembership{}, membershipstore.ErrDuplicateMembership
		}
	}
	m := models.ProjectMembership{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		OrgID:     orgID,
		CreatedAt: now(),
	}
	s.db.memberships[m.ID] = m
	return m, nil
}

func (s *Memberships) Remove(_ context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for id, m := range s.db.memberships {
		if m.ProjectID == projectID && m.UserID == userID {
			delete(s.db.memberships, id)
			return true, nil
		}
	}
	return false, nil
}

func (s *Memberships) Exists(_ context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, m := range s.db.memberships {
		if m.ProjectID == projectID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Memberships) ListByProject(_ context.Context, projectID primitive.ObjectID) ([]models.ProjectMembership, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.ProjectMembership
	for _, m := range s.db.memberships {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Memberships) ProjectIDsForUser(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []primitive.ObjectID
	for _, m := range s.db.memberships {
		if m.UserID == userID && !contains(out, m.ProjectID) {
			out = append(out, m.ProjectID)
		}
	}
	return out, nil
}

func (s *Memberships) DeleteByProject(_ context.Context, projectID primitive.ObjectID) (int64, error) {
	return s.deleteWhere(func(m models.ProjectMembership) bool { return m.ProjectID == projectID }), nil
}

func (s *Memberships) DeleteByOrg(_ context.Context, orgID primitive.ObjectID) (int64, error) {
	return s.deleteWhere(func(m models.ProjectMembership) bool { return m.OrgID == orgID }), nil
}

func (s *Memberships) deleteWhere(match func(models.ProjectMembership) bool) int64 {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, m := range s.db.memberships {
		if match(m) {
			delete(s.db.memberships, id)
			n++
		}
	}
	return n
}

/*─────────────────────────────────────────────────────────────────────────────*
| Tasks                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type Tasks struct{ db *DB }

func (s *Tasks) Create(_ context.Context, t models.Task) (models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("tasks.Create"); err != nil {
		return models.Task{}, err
	}
	t.ID = primitive.NewObjectID()
	t.CreatedAt, t.UpdatedAt = now(), now()
	s.db.tasks[t.ID] = t
	return t, nil
}

func (s *Tasks) GetByID(_ context.Context, id primitive.ObjectID) (models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tasks[id]
	if !ok {
		return models.Task{}, taskstore.ErrNotFound
	}
	return t, nil
}

func (s *Tasks) List(_ context.Context, projectID primitive.ObjectID, f taskstore.Filter) ([]models.Task, error) {
	return s.find(func(t models.Task) bool {
		if t.ProjectID != projectID {
			return false
		}
		if f.Status != nil && t.Status != *f.Status {
			return false
		}
		if f.AssigneeID != nil && !t.AssignedTo(*f.AssigneeID) {
			return false
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			return false
		}
		return true
	}), nil
}

func (s *Tasks) ListOverdue(_ context.Context, projectID primitive.ObjectID, day time.Time) ([]models.Task, error) {
	return s.find(func(t models.Task) bool {
		return t.ProjectID == projectID && t.DueDate != nil && t.DueDate.Before(day) && t.Status != models.StatusDone
	}), nil
}

func (s *Tasks) find(match func(models.Task) bool) []models.Task {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Task
	for _, t := range s.db.tasks {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (s *Tasks) Update(_ context.Context, id primitive.ObjectID, ch taskstore.Changes) (models.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("tasks.Update"); err != nil {
		return models.Task{}, err
	}
	t, ok := s.db.tasks[id]
	if !ok {
		return models.Task{}, taskstore.ErrNotFound
	}
	if ch.IfStatus != nil && t.Status != *ch.IfStatus {
		return models.Task{}, taskstore.ErrStatusChanged
	}
	ch.Apply(&t)
	t.UpdatedAt = now()
	s.db.tasks[id] = t
	return t, nil
}

// SetTask overwrites a stored task. Tests use it to stage states the
// services would refuse to produce, such as a due date in the past.
func (s *Tasks) SetTask(t models.Task) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.tasks[t.ID] = t
}

func (s *Tasks) CountByStatus(_ context.Context, projectID primitive.ObjectID) (map[models.TaskStatus]int64, error) {
	out := make(map[models.TaskStatus]int64, 3)
	for _, st := range models.AllStatuses() {
		out[st] = 0
	}
	for _, t := range s.find(func(t models.Task) bool { return t.ProjectID == projectID }) {
		out[t.Status]++
	}
	return out, nil
}

func (s *Tasks) DeleteByProject(_ context.Context, projectID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, t := range s.db.tasks {
		if t.ProjectID == projectID {
			delete(s.db.tasks, id)
			n++
		}
	}
	return n, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Comments                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type Comments struct{ db *DB }

func (s *Comments) Create(_ context.Context, c models.Comment) (models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("comments.Create"); err != nil {
		return models.Comment{}, err
	}
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now()
	s.db.comments[c.ID] = c
	return c, nil
}

func (s *Comments) ListByTask(_ context.Context, taskID primitive.ObjectID) ([]models.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Comment
	for _, c := range s.db.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Comments) DeleteByProject(_ context.Context, projectID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, c := range s.db.comments {
		if c.ProjectID == projectID {
			delete(s.db.comments, id)
			n++
		}
	}
	return n, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Attachments                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type Attachments struct{ db *DB }

func (s *Attachments) Create(_ context.Context, a models.Attachment) (models.Attachment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("attachments.Create"); err != nil {
		return models.Attachment{}, err
	}
	a.ID = primitive.NewObjectID()
	a.CreatedAt = now()
	s.db.attachments[a.ID] = a
	return a, nil
}

func (s *Attachments) GetByID(_ context.Context, id primitive.ObjectID) (models.Attachment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.attachments[id]
	if !ok {
		return models.Attachment{}, attachmentstore.ErrNotFound
	}
	return a, nil
}

func (s *Attachments) ListByTask(_ context.Context, taskID primitive.ObjectID) ([]models.Attachment, error) {
	return s.find(func(a models.Attachment) bool { return a.TaskID == taskID }), nil
}

func (s *Attachments) ListByProject(_ context.Context, projectID primitive.ObjectID) ([]models.Attachment, error) {
	return s.find(func(a models.Attachment) bool { return a.ProjectID == projectID }), nil
}

func (s *Attachments) find(match func(models.Attachment) bool) []models.Attachment {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Attachment
	for _, a := range s.db.attachments {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (s *Attachments) CountByTask(ctx context.Context, taskID primitive.ObjectID) (int64, error) {
	out, _ := s.ListByTask(ctx, taskID)
	return int64(len(out)), nil
}

func (s *Attachments) DeleteByProject(_ context.Context, projectID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, a := range s.db.attachments {
		if a.ProjectID == projectID {
			delete(s.db.attachments, id)
			n++
		}
	}
	return n, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Notifications                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

type Notifications struct{ db *DB }

func (s *Notifications) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.fail("notifications.Create"); err != nil {
		return models.Notification{}, err
	}
	n.ID = primitive.NewObjectID()
	n.IsRead = false
	n.CreatedAt = now()
	s.db.notifications[n.ID] = n
	return n, nil
}

func (s *Notifications) ListUnread(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Notification
	for _, n := range s.db.notifications {
		if n.UserID == userID && !n.IsRead {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[j].CreatedAt, out[i].CreatedAt, out[j].ID, out[i].ID)
	})
	return out, nil
}

func (s *Notifications) MarkRead(_ context.Context, id, userID primitive.ObjectID) (models.Notification, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n, ok := s.db.notifications[id]
	if !ok || n.UserID != userID {
		return models.Notification{}, notificationstore.ErrNotFound
	}
	n.IsRead = true
	s.db.notifications[id] = n
	return n, nil
}

func (s *Notifications) MarkAllRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var count int64
	for id, n := range s.db.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			s.db.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (s *Notifications) UnlinkProject(_ context.Context, projectID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var count int64
	for id, n := range s.db.notifications {
		if n.ProjectID != nil && *n.ProjectID == projectID {
			n.ProjectID, n.TaskID = nil, nil
			s.db.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (s *Notifications) DeleteByUsers(_ context.Context, userIDs []primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var count int64
	for id, n := range s.db.notifications {
		if contains(userIDs, n.UserID) {
			delete(s.db.notifications, id)
			count++
		}
	}
	return count, nil
}

// All returns every notification, read or not, for userID.
func (s *Notifications) All(userID primitive.ObjectID) []models.Notification {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []models.Notification
	for _, n := range s.db.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return before(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}
