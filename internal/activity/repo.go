package activity

import (
	"context"

	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
)

// Repository exposes activity log persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an activity repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends a new activity log entry.
func (r *Repository) Create(ctx context.Context, entry *models.ActivityLogEntry) (*models.ActivityLogEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns activity entries newest first using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.ActivityLogEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLogEntry{})

	if opts.actorUserID != nil {
		query = query.Where("actor_user_id = ?", *opts.actorUserID)
	}
	if opts.targetTable != "" {
		query = query.Where("target_table = ?", opts.targetTable)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.ActivityLogEntry
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Recent returns the latest entries without cursor bookkeeping.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	var rows []models.ActivityLogEntry
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLogEntry{}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
