package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
)

// Repository defines persistence operations for payment requests and their
// attachments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.PaymentRequest) (*models.PaymentRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentRequest, error)
	List(ctx context.Context, opts listQuery) ([]models.PaymentRequest, error)
	Update(ctx context.Context, request *models.PaymentRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	// UpdateStatusIf moves the request from one status to another and
	// reports how many rows changed. Zero rows means the request was not
	// in the expected source state.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.PaymentRequestStatus, paidDate *time.Time, hqComments *string) (int64, error)
	CreateAttachment(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error)
	FindAttachmentByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	ListAttachments(ctx context.Context, requestID uuid.UUID) ([]models.Attachment, error)
	DeleteAttachment(ctx context.Context, id uuid.UUID) error
	SumAmountsByStatus(ctx context.Context) ([]StatusTotals, error)
}
