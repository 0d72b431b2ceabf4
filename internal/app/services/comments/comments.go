// internal/app/services/comments/comments.go
package comments

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/taskhub/internal/app/system/txn"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxContentLen = 10000

var (
	ErrContentRequired = apperr.Validation("comment content is required")
	ErrContentTooLong  = apperr.Validationf("comment must be at most %d characters", maxContentLen)
)

type Store interface {
	Create(ctx context.Context, c models.Comment) (models.Comment, error)
	ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Comment, error)
}

// Notifier receives comment events.
type Notifier interface {
	OnCommentAdded(ctx context.Context, t models.Task, commenter primitive.ObjectID) error
}

type Gate interface {
	Task(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, taskID primitive.ObjectID) (models.Task, models.Project, error)
}

type Service struct {
	store    Store
	notifier Notifier
	gate     Gate
	txn      txn.Runner
	log      *zap.Logger
}

func New(store Store, notifier Notifier, gate Gate, runner txn.Runner, logger *zap.Logger) *Service {
	return &Service{store: store, notifier: notifier, gate: gate, txn: runner, log: logger}
}

// Add posts a comment on taskID. The task's assignee is notified unless
// they wrote the comment.
func (s *Service) Add(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID, content string) (models.Comment, error) {
	t, _, err := s.gate.Task(ctx, actor, accesspolicy.CommentAdd, taskID)
	if err != nil {
		return models.Comment{}, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, ErrContentRequired
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return models.Comment{}, ErrContentTooLong
	}
	content = htmlsanitize.Sanitize(content)
	if content == "" {
		return models.Comment{}, ErrContentRequired
	}

	var c models.Comment
	err = s.txn.Run(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.store.Create(ctx, models.Comment{
			TaskID:    t.ID,
			ProjectID: t.ProjectID,
			UserID:    actor.UserID,
			Content:   content,
		})
		if err != nil {
			return err
		}
		return s.notifier.OnCommentAdded(ctx, t, actor.UserID)
	})
	if err != nil {
		return models.Comment{}, err
	}

	s.log.Info("comment added",
		zap.String("comment_id", c.ID.Hex()),
		zap.String("task_id", t.ID.Hex()),
		zap.String("user_id", actor.UserID.Hex()))
	return c, nil
}

// List returns the task's comments, oldest first.
func (s *Service) List(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID) ([]models.Comment, error) {
	t, _, err := s.gate.Task(ctx, actor, accesspolicy.CommentView, taskID)
	if err != nil {
		return nil, err
	}
	out, err := s.store.ListByTask(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Comment{}
	}
	return out, nil
}
