// internal/app/features/attachments/handler.go
package attachments

import (
	"context"
	"io"

	"github.com/dalemusser/taskhub/internal/app/policy/accesspolicy"
	attachmentsvc "github.com/dalemusser/taskhub/internal/app/services/attachments"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service interface {
	Upload(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID, in attachmentsvc.UploadInput) (models.Attachment, error)
	List(ctx context.Context, actor accesspolicy.Actor, taskID primitive.ObjectID) ([]models.Attachment, error)
	Open(ctx context.Context, actor accesspolicy.Actor, id primitive.ObjectID) (models.Attachment, io.ReadCloser, error)
}

type Handler struct {
	Attachments Service
	MaxFileSize int64 // caps the multipart body together with limits.MaxMultipartOverhead
	Log         *zap.Logger
}

func NewHandler(svc Service, maxFileSize int64, logger *zap.Logger) *Handler {
	return &Handler{Attachments: svc, MaxFileSize: maxFileSize, Log: logger}
}
