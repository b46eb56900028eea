package contractors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
)

// Repository exposes contractor persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a contractor repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new contractor row.
func (r *Repository) Create(ctx context.Context, contractor *models.Contractor) (*models.Contractor, error) {
	if err := r.db.WithContext(ctx).Create(contractor).Error; err != nil {
		return nil, err
	}
	return contractor, nil
}

// FindByID returns the contractor or gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contractor, error) {
	var contractor models.Contractor
	if err := r.db.WithContext(ctx).First(&contractor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contractor, nil
}

// List returns contractors using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Contractor, error) {
	query := r.db.WithContext(ctx).Model(&models.Contractor{})

	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Contractor
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the full contractor row.
func (r *Repository) Update(ctx context.Context, contractor *models.Contractor) error {
	return r.db.WithContext(ctx).Save(contractor).Error
}

// Delete removes the contractor. Fails when contracts still reference it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Contractor{}, "id = ?", id).Error
}
