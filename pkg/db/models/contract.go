package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gegsoft/paytrack-backend/pkg/enums"
)

// Contract belongs to exactly one project and references exactly one
// contractor. Values may be carried in USD, IQD, or both.
type Contract struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title        string               `gorm:"column:title;not null"`
	ProjectID    uuid.UUID            `gorm:"column:project_id;type:uuid;not null"`
	ContractorID uuid.UUID            `gorm:"column:contractor_id;type:uuid;not null"`
	ValueUSD     *decimal.Decimal     `gorm:"column:value_usd;type:numeric(18,2)"`
	ValueIQD     *decimal.Decimal     `gorm:"column:value_iqd;type:numeric(18,0)"`
	StartDate    *time.Time           `gorm:"column:start_date"`
	EndDate      *time.Time           `gorm:"column:end_date"`
	Status       enums.ContractStatus `gorm:"column:status;type:text;not null"`
	Scope        string               `gorm:"column:scope"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
