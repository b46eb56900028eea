package models

import (
	"time"

	"github.com/google/uuid"
)

// Contractor is a company contracts are signed with. Not project-scoped.
type Contractor struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	ContactPerson string    `gorm:"column:contact_person"`
	ContactEmail  string    `gorm:"column:contact_email"`
	ContactPhone  string    `gorm:"column:contact_phone"`
	Address       string    `gorm:"column:address"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
