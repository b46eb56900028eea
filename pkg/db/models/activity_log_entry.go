package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gegsoft/paytrack-backend/pkg/enums"
)

// ActivityLogEntry records who did what when. Append-only; never mutated
// or deleted through normal operation.
type ActivityLogEntry struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorUserID uuid.UUID            `gorm:"column:actor_user_id;type:uuid;not null"`
	Action      enums.ActivityAction `gorm:"column:action;type:text;not null"`
	TargetTable string               `gorm:"column:target_table;not null"`
	TargetID    *uuid.UUID           `gorm:"column:target_id;type:uuid"`
	Details     string               `gorm:"column:details"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
