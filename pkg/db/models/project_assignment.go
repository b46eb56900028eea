package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectAssignment links a site-scoped user to a project they may see.
type ProjectAssignment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_project_assignments_user_project"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;uniqueIndex:idx_project_assignments_user_project"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
