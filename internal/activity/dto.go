package activity

import (
	"time"

	"github.com/google/uuid"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgpagination "github.com/gegsoft/paytrack-backend/pkg/pagination"
)

type ListParams struct {
	ActorUserID *uuid.UUID
	TargetTable string
	pkgpagination.Params
}

type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor"`
}

type ListItem struct {
	ID          uuid.UUID            `json:"id"`
	ActorUserID uuid.UUID            `json:"actor_user_id"`
	Action      enums.ActivityAction `json:"action"`
	TargetTable string               `json:"target_table"`
	TargetID    *uuid.UUID           `json:"target_id,omitempty"`
	Details     string               `json:"details,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

type listQuery struct {
	actorUserID *uuid.UUID
	targetTable string
	limit       int
	cursor      *pkgpagination.Cursor
}

func toListItem(m models.ActivityLogEntry) ListItem {
	return ListItem{
		ID:          m.ID,
		ActorUserID: m.ActorUserID,
		Action:      m.Action,
		TargetTable: m.TargetTable,
		TargetID:    m.TargetID,
		Details:     m.Details,
		CreatedAt:   m.CreatedAt,
	}
}
