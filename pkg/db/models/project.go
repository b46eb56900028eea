package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gegsoft/paytrack-backend/pkg/enums"
)

// Project is a construction project; the unit of row-level visibility.
type Project struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string              `gorm:"column:name;not null"`
	Location        string              `gorm:"column:location"`
	StartDate       *time.Time          `gorm:"column:start_date"`
	EndDate         *time.Time          `gorm:"column:end_date"`
	Status          enums.ProjectStatus `gorm:"column:status;type:text;not null"`
	CreatedByUserID uuid.UUID           `gorm:"column:created_by_user_id;type:uuid;not null"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
