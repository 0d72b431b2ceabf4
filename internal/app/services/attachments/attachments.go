// internal/app/services/attachments/attachments.go
package attachments

import (
	"context"
	"errors"
	"io"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/normalize"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrNotFound        = apperr.NotFound("attachment not found")
	ErrInvalidFileName = apperr.Validation("invalid file name")
	ErrTooManyFiles    = apperr.Validation("max attachments reached")
)

// Config holds the upload limits.
type Config struct {
	MaxFileSize     int64 // bytes
	MaxFilesPerTask int
}

type Store interface {
	Create(ctx context.Context, a models.Attachment) (models.Attachment, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Attachment, error)
	ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Attachment, error)
	CountByTask(ctx context.Context, taskID primitive.ObjectID) (int64, error)
}

// Blobs stores file bytes. Put enforces maxSize and reports the bytes kept.
type Blobs interface {
	Put(ctx context.Context, name string, r io.Reader, maxSize int64) (string, int64, error)
	Open(path string) (io.ReadCloser, error)
	Delete(path string) error
}

type Gate interface {
	Task(ctx context.Context, actor accesspolicy.Actor, action accesspolicy.Action, taskID primitive.ObjectID) (models.Task, models.Project, error)
}

type Service struct {
	cfg   Config
	store Store
	blobs Blobs
	gate  Gate
	log   *zap.Logger
}

func New(cfg Config, store Store, blobs Blobs, gate Gate, logger *zap.Logger) *Service {
	return &Service{cfg: cfg, store: store, blobs: blobs, gate: gate, log: logger}
}

// UploadInput describes one uploaded file.
type UploadInput struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// Upload stores in.Body and records it against taskID. When the record
// cannot be written the stored bytes are removed again.
func (s *Service) Upload(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID, in UploadInput) (models.Attachment, error) {
	t, _, err := s.gate.Task(ctx, actor, accesspolicy.AttachmentUpload, taskID)
	if err != nil {
		return models.Attachment{}, err
	}

	name := normalize.FileName(in.FileName)
	if name == "" {
		return models.Attachment{}, ErrInvalidFileName
	}
	n, err := s.store.CountByTask(ctx, t.ID)
	if err != nil {
		return models.Attachment{}, err
	}
	if s.cfg.MaxFilesPerTask > 0 && n >= int64(s.cfg.MaxFilesPerTask) {
		return models.Attachment{}, ErrTooManyFiles
	}

	path, size, err := s.blobs.Put(ctx, name, in.Body, s.cfg.MaxFileSize)
	if err != nil {
		return models.Attachment{}, err
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	a, err := s.store.Create(ctx, models.Attachment{
		TaskID:      t.ID,
		ProjectID:   t.ProjectID,
		UserID:      actor.UserID,
		FileName:    name,
		StoragePath: path,
		Size:        size,
		ContentType: contentType,
	})
	if err != nil {
		if derr := s.blobs.Delete(path); derr != nil {
			s.log.Warn("failed to remove orphaned attachment blob",
				zap.String("path", path),
				zap.Error(derr))
		}
		return models.Attachment{}, err
	}

	s.log.Info("attachment uploaded",
		zap.String("attachment_id", a.ID.Hex()),
		zap.String("task_id", t.ID.Hex()),
		zap.String("user_id", actor.UserID.Hex()),
		zap.Int64("size", size))
	return a, nil
}

// List returns the task's attachments.
func (s *Service) List(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID) ([]models.Attachment, error) {
	t, _, err := s.gate.Task(ctx, actor, accesspolicy.AttachmentView, taskID)
	if err != nil {
		return nil, err
	}
	out, err := s.store.ListByTask(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Attachment{}
	}
	return out, nil
}

// Open returns the attachment record and a reader for its bytes. The caller
// closes the reader.
func (s *Service) Open(ctx context.Context, actor accesspolicy.Actor, id primitive.ObjectID) (models.Attachment, io.ReadCloser, error) {
	a, err := s.store.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Attachment{}, nil, ErrNotFound
	}
	if err != nil {
		return models.Attachment{}, nil, err
	}
	if _, _, err := s.gate.Task(ctx, actor, accesspolicy.AttachmentView, a.TaskID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Attachment{}, nil, ErrNotFound
		}
		return models.Attachment{}, nil, err
	}
	rc, err := s.blobs.Open(a.StoragePath)
	if err != nil {
		return models.Attachment{}, nil, err
	}
	return a, rc, nil
}
