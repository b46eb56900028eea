package contracts

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
)

// Repository exposes contract persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a contract repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new contract row.
func (r *Repository) Create(ctx context.Context, contract *models.Contract) (*models.Contract, error) {
	if err := r.db.WithContext(ctx).Create(contract).Error; err != nil {
		return nil, err
	}
	return contract, nil
}

// FindByID returns the contract or gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// List returns contracts using cursor pagination. When visibleToUserID is
// set, only contracts under the user's assigned projects are returned.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Contract, error) {
	query := r.db.WithContext(ctx).Model(&models.Contract{})

	if opts.visibleToUserID != nil {
		query = query.
			Joins("JOIN project_assignments ON project_assignments.project_id = contracts.project_id").
			Where("project_assignments.user_id = ?", *opts.visibleToUserID)
	}
	if opts.projectID != nil {
		query = query.Where("contracts.project_id = ?", *opts.projectID)
	}
	if opts.contractorID != nil {
		query = query.Where("contracts.contractor_id = ?", *opts.contractorID)
	}
	if opts.status != "" {
		query = query.Where("contracts.status = ?", opts.status)
	}
	if opts.search != "" {
		query = query.Where("LOWER(contracts.title) LIKE ?", "%"+strings.ToLower(opts.search)+"%")
	}
	if opts.cursor != nil {
		query = query.Where("(contracts.created_at < ?) OR (contracts.created_at = ? AND contracts.id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("contracts.created_at DESC").Order("contracts.id DESC").Limit(opts.limit)

	var rows []models.Contract
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the full contract row.
func (r *Repository) Update(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

// Delete removes the contract. Fails when payment requests still reference it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Contract{}, "id = ?", id).Error
}

// CountByProject returns how many contracts each project owns.
func (r *Repository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}
