package contractors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/internal/access"
	"github.com/gegsoft/paytrack-backend/internal/activity"
	pkgdb "github.com/gegsoft/paytrack-backend/pkg/db"
	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgerrors "github.com/gegsoft/paytrack-backend/pkg/errors"
	pkgpagination "github.com/gegsoft/paytrack-backend/pkg/pagination"
)

const targetTable = "contractors"

type contractorsRepository interface {
	Create(ctx context.Context, contractor *models.Contractor) (*models.Contractor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contractor, error)
	List(ctx context.Context, opts listQuery) ([]models.Contractor, error)
	Update(ctx context.Context, contractor *models.Contractor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service exposes contractor CRUD. Contractors are not project-scoped, so
// every role with view rights sees the full list.
type Service interface {
	CreateContractor(ctx context.Context, actor access.Actor, input CreateContractorInput) (*ListItem, error)
	GetContractor(ctx context.Context, actor access.Actor, id uuid.UUID) (*ListItem, error)
	ListContractors(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error)
	UpdateContractor(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdateContractorInput) (*ListItem, error)
	DeleteContractor(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

type service struct {
	repo     contractorsRepository
	recorder activity.Recorder
}

// NewService builds the contractor service.
func NewService(repo contractorsRepository, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contractor repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, recorder: recorder}, nil
}

func (s *service) CreateContractor(ctx context.Context, actor access.Actor, input CreateContractorInput) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourceContractor, enums.OperationCreate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contractor name is required")
	}

	contractor := &models.Contractor{
		Name:          strings.TrimSpace(input.Name),
		ContactPerson: strings.TrimSpace(input.ContactPerson),
		ContactEmail:  strings.TrimSpace(input.ContactEmail),
		ContactPhone:  strings.TrimSpace(input.ContactPhone),
		Address:       strings.TrimSpace(input.Address),
	}
	created, err := s.repo.Create(ctx, contractor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating contractor")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionCreate, targetTable, &created.ID, fmt.Sprintf("created contractor %q", created.Name))
	item := toListItem(*created)
	return &item, nil
}

func (s *service) GetContractor(ctx context.Context, actor access.Actor, id uuid.UUID) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourceContractor, enums.OperationView); err != nil {
		return nil, err
	}
	contractor, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	item := toListItem(*contractor)
	return &item, nil
}

func (s *service) ListContractors(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error) {
	if err := access.Require(actor, enums.ResourceContractor, enums.OperationView); err != nil {
		return nil, err
	}

	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, listQuery{limit: limit + 1, cursor: cursor})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing contractors")
	}

	result := &ListResult{Items: make([]ListItem, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.Cursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for _, row := range rows {
		result.Items = append(result.Items, toListItem(row))
	}
	return result, nil
}

func (s *service) UpdateContractor(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdateContractorInput) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourceContractor, enums.OperationEdit); err != nil {
		return nil, err
	}
	contractor, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "contractor name is required")
		}
		contractor.Name = strings.TrimSpace(*input.Name)
	}
	if input.ContactPerson != nil {
		contractor.ContactPerson = strings.TrimSpace(*input.ContactPerson)
	}
	if input.ContactEmail != nil {
		contractor.ContactEmail = strings.TrimSpace(*input.ContactEmail)
	}
	if input.ContactPhone != nil {
		contractor.ContactPhone = strings.TrimSpace(*input.ContactPhone)
	}
	if input.Address != nil {
		contractor.Address = strings.TrimSpace(*input.Address)
	}

	if err := s.repo.Update(ctx, contractor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating contractor")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionUpdate, targetTable, &contractor.ID, fmt.Sprintf("updated contractor %q", contractor.Name))
	item := toListItem(*contractor)
	return &item, nil
}

func (s *service) DeleteContractor(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := access.Require(actor, enums.ResourceContractor, enums.OperationDelete); err != nil {
		return err
	}
	contractor, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if pkgdb.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "contractor still has contracts attached")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting contractor")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionDelete, targetTable, &id, fmt.Sprintf("deleted contractor %q", contractor.Name))
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Contractor, error) {
	contractor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contractor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading contractor")
	}
	return contractor, nil
}
