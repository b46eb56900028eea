package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payment request repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.PaymentRequest) (*models.PaymentRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentRequest, error) {
	var request models.PaymentRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) List(ctx context.Context, opts listQuery) ([]models.PaymentRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentRequest{})

	if opts.visibleToUserID != nil || opts.contractorID != nil {
		query = query.Joins("JOIN contracts ON contracts.id = payment_requests.contract_id")
	}
	if opts.visibleToUserID != nil {
		query = query.
			Joins("JOIN project_assignments ON project_assignments.project_id = contracts.project_id").
			Where("project_assignments.user_id = ?", *opts.visibleToUserID)
	}
	if opts.contractorID != nil {
		query = query.Where("contracts.contractor_id = ?", *opts.contractorID)
	}
	if opts.contractID != nil {
		query = query.Where("payment_requests.contract_id = ?", *opts.contractID)
	}
	if opts.status != "" {
		query = query.Where("payment_requests.status = ?", opts.status)
	}
	if opts.requestedAfter != nil {
		query = query.Where("payment_requests.requested_date >= ?", *opts.requestedAfter)
	}
	if opts.cursor != nil {
		query = query.Where("(payment_requests.created_at < ?) OR (payment_requests.created_at = ? AND payment_requests.id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("payment_requests.created_at DESC").Order("payment_requests.id DESC").Limit(opts.limit)

	var rows []models.PaymentRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, request *models.PaymentRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PaymentRequest{}, "id = ?", id).Error
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.PaymentRequestStatus, paidDate *time.Time, hqComments *string) (int64, error) {
	updates := map[string]any{"status": to}
	if paidDate != nil {
		updates["paid_date"] = *paidDate
	}
	if hqComments != nil {
		updates["hq_comments"] = *hqComments
	}

	result := r.db.WithContext(ctx).
		Model(&models.PaymentRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) CreateAttachment(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error) {
	if err := r.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return nil, err
	}
	return attachment, nil
}

func (r *repository) FindAttachmentByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *repository) ListAttachments(ctx context.Context, requestID uuid.UUID) ([]models.Attachment, error) {
	var rows []models.Attachment
	err := r.db.WithContext(ctx).
		Where("payment_request_id = ?", requestID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Attachment{}, "id = ?", id).Error
}

func (r *repository) SumAmountsByStatus(ctx context.Context) ([]StatusTotals, error) {
	type row struct {
		Status   string
		Count    int64
		TotalUSD decimal.NullDecimal
		TotalIQD decimal.NullDecimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.PaymentRequest{}).
		Select("status, COUNT(*) AS count, SUM(amount_usd) AS total_usd, SUM(amount_iqd) AS total_iqd").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make([]StatusTotals, 0, len(rows))
	for _, r := range rows {
		t := StatusTotals{
			Status: enums.PaymentRequestStatus(r.Status),
			Count:  r.Count,
		}
		if r.TotalUSD.Valid {
			t.TotalUSD = r.TotalUSD.Decimal
		}
		if r.TotalIQD.Valid {
			t.TotalIQD = r.TotalIQD.Decimal
		}
		totals = append(totals, t)
	}
	return totals, nil
}
