package contractors

import (
	"time"

	"github.com/google/uuid"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	pkgpagination "github.com/gegsoft/paytrack-backend/pkg/pagination"
)

type CreateContractorInput struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`
	Address       string `json:"address"`
}

type UpdateContractorInput struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contact_person"`
	ContactEmail  *string `json:"contact_email"`
	ContactPhone  *string `json:"contact_phone"`
	Address       *string `json:"address"`
}

type ListParams struct {
	pkgpagination.Params
}

type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor"`
}

type ListItem struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	ContactEmail  string    `json:"contact_email,omitempty"`
	ContactPhone  string    `json:"contact_phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type listQuery struct {
	limit  int
	cursor *pkgpagination.Cursor
}

func toListItem(m models.Contractor) ListItem {
	return ListItem{
		ID:            m.ID,
		Name:          m.Name,
		ContactPerson: m.ContactPerson,
		ContactEmail:  m.ContactEmail,
		ContactPhone:  m.ContactPhone,
		Address:       m.Address,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
