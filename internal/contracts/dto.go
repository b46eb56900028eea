package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgpagination "github.com/gegsoft/paytrack-backend/pkg/pagination"
)

type CreateContractInput struct {
	Title        string               `json:"title"`
	ProjectID    uuid.UUID            `json:"project_id"`
	ContractorID uuid.UUID            `json:"contractor_id"`
	ValueUSD     *decimal.Decimal     `json:"value_usd"`
	ValueIQD     *decimal.Decimal     `json:"value_iqd"`
	StartDate    *time.Time           `json:"start_date"`
	EndDate      *time.Time           `json:"end_date"`
	Status       enums.ContractStatus `json:"status"`
	Scope        string               `json:"scope"`
}

type UpdateContractInput struct {
	Title     *string               `json:"title"`
	ValueUSD  *decimal.Decimal      `json:"value_usd"`
	ValueIQD  *decimal.Decimal      `json:"value_iqd"`
	StartDate *time.Time            `json:"start_date"`
	EndDate   *time.Time            `json:"end_date"`
	Status    *enums.ContractStatus `json:"status"`
	Scope     *string               `json:"scope"`
}

type ListParams struct {
	ProjectID    *uuid.UUID
	ContractorID *uuid.UUID
	Status       enums.ContractStatus
	Search       string
	pkgpagination.Params
}

type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor"`
}

type ListItem struct {
	ID           uuid.UUID            `json:"id"`
	Title        string               `json:"title"`
	ProjectID    uuid.UUID            `json:"project_id"`
	ContractorID uuid.UUID            `json:"contractor_id"`
	ValueUSD     *decimal.Decimal     `json:"value_usd,omitempty"`
	ValueIQD     *decimal.Decimal     `json:"value_iqd,omitempty"`
	StartDate    *time.Time           `json:"start_date,omitempty"`
	EndDate      *time.Time           `json:"end_date,omitempty"`
	Status       enums.ContractStatus `json:"status"`
	Scope        string               `json:"scope,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type listQuery struct {
	projectID       *uuid.UUID
	contractorID    *uuid.UUID
	status          enums.ContractStatus
	search          string
	visibleToUserID *uuid.UUID
	limit           int
	cursor          *pkgpagination.Cursor
}

func toListItem(m models.Contract) ListItem {
	return ListItem{
		ID:           m.ID,
		Title:        m.Title,
		ProjectID:    m.ProjectID,
		ContractorID: m.ContractorID,
		ValueUSD:     m.ValueUSD,
		ValueIQD:     m.ValueIQD,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		Status:       m.Status,
		Scope:        m.Scope,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
