package projects

import (
	"time"

	"github.com/google/uuid"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgpagination "github.com/gegsoft/paytrack-backend/pkg/pagination"
)

type CreateProjectInput struct {
	Name      string              `json:"name"`
	Location  string              `json:"location"`
	StartDate *time.Time          `json:"start_date"`
	EndDate   *time.Time          `json:"end_date"`
	Status    enums.ProjectStatus `json:"status"`
}

type UpdateProjectInput struct {
	Name      *string              `json:"name"`
	Location  *string              `json:"location"`
	StartDate *time.Time           `json:"start_date"`
	EndDate   *time.Time           `json:"end_date"`
	Status    *enums.ProjectStatus `json:"status"`
}

type ListParams struct {
	Status enums.ProjectStatus
	pkgpagination.Params
}

type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor"`
}

type ListItem struct {
	ID              uuid.UUID           `json:"id"`
	Name            string              `json:"name"`
	Location        string              `json:"location,omitempty"`
	StartDate       *time.Time          `json:"start_date,omitempty"`
	EndDate         *time.Time          `json:"end_date,omitempty"`
	Status          enums.ProjectStatus `json:"status"`
	CreatedByUserID uuid.UUID           `json:"created_by_user_id"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type listQuery struct {
	status          enums.ProjectStatus
	visibleToUserID *uuid.UUID
	limit           int
	cursor          *pkgpagination.Cursor
}

func toListItem(m models.Project) ListItem {
	return ListItem{
		ID:              m.ID,
		Name:            m.Name,
		Location:        m.Location,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		Status:          m.Status,
		CreatedByUserID: m.CreatedByUserID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
