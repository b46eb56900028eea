package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/internal/access"
	"github.com/gegsoft/paytrack-backend/internal/activity"
	pkgdb "github.com/gegsoft/paytrack-backend/pkg/db"
	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgerrors "github.com/gegsoft/paytrack-backend/pkg/errors"
	pkgpagination "github.com/gegsoft/paytrack-backend/pkg/pagination"
)

const targetTable = "contracts"

type contractsRepository interface {
	Create(ctx context.Context, contract *models.Contract) (*models.Contract, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	List(ctx context.Context, opts listQuery) ([]models.Contract, error)
	Update(ctx context.Context, contract *models.Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	IsAssigned(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
}

type contractorsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contractor, error)
}

// Service exposes contract CRUD with row-level project scoping.
type Service interface {
	CreateContract(ctx context.Context, actor access.Actor, input CreateContractInput) (*ListItem, error)
	GetContract(ctx context.Context, actor access.Actor, id uuid.UUID) (*ListItem, error)
	ListContracts(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error)
	UpdateContract(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdateContractInput) (*ListItem, error)
	DeleteContract(ctx context.Context, actor access.Actor, id uuid.UUID) error
}

type service struct {
	repo        contractsRepository
	projects    projectsRepository
	contractors contractorsRepository
	recorder    activity.Recorder
}

// NewService builds the contract service.
func NewService(repo contractsRepository, projects projectsRepository, contractors contractorsRepository, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contract repository required")
	}
	if projects == nil {
		return nil, fmt.Errorf("project repository required")
	}
	if contractors == nil {
		return nil, fmt.Errorf("contractor repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, projects: projects, contractors: contractors, recorder: recorder}, nil
}

func (s *service) CreateContract(ctx context.Context, actor access.Actor, input CreateContractInput) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourceContract, enums.OperationCreate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract title is required")
	}
	if input.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id is required")
	}
	if input.ContractorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contractor id is required")
	}
	if err := validateValues(input.ValueUSD, input.ValueIQD); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = enums.ContractStatusPending
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid contract status %q", status))
	}

	// The owning project must exist and, for site roles, be assigned.
	if err := s.ensureProjectVisible(ctx, actor, input.ProjectID); err != nil {
		return nil, err
	}
	if _, err := s.contractors.FindByID(ctx, input.ContractorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contractor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading contractor")
	}

	contract := &models.Contract{
		Title:        strings.TrimSpace(input.Title),
		ProjectID:    input.ProjectID,
		ContractorID: input.ContractorID,
		ValueUSD:     input.ValueUSD,
		ValueIQD:     input.ValueIQD,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Status:       status,
		Scope:        strings.TrimSpace(input.Scope),
	}
	created, err := s.repo.Create(ctx, contract)
	if err != nil {
		if pkgdb.IsForeignKeyViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project or contractor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating contract")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionCreate, targetTable, &created.ID, fmt.Sprintf("created contract %q", created.Title))
	item := toListItem(*created)
	return &item, nil
}

func (s *service) GetContract(ctx context.Context, actor access.Actor, id uuid.UUID) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourceContract, enums.OperationView); err != nil {
		return nil, err
	}
	contract, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	item := toListItem(*contract)
	return &item, nil
}

func (s *service) ListContracts(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error) {
	if err := access.Require(actor, enums.ResourceContract, enums.OperationView); err != nil {
		return nil, err
	}
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid contract status %q", params.Status))
	}

	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		projectID:    params.ProjectID,
		contractorID: params.ContractorID,
		status:       params.Status,
		search:       strings.TrimSpace(params.Search),
		limit:        limit + 1,
		cursor:       cursor,
	}
	if actor.IsSiteScoped() {
		query.visibleToUserID = &actor.UserID
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing contracts")
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

func (s *service) UpdateContract(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdateContractInput) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourceContract, enums.OperationEdit); err != nil {
		return nil, err
	}
	contract, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract title is required")
		}
		contract.Title = strings.TrimSpace(*input.Title)
	}
	if input.ValueUSD != nil {
		contract.ValueUSD = input.ValueUSD
	}
	if input.ValueIQD != nil {
		contract.ValueIQD = input.ValueIQD
	}
	if err := validateValues(contract.ValueUSD, contract.ValueIQD); err != nil {
		return nil, err
	}
	if input.StartDate != nil {
		contract.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		contract.EndDate = input.EndDate
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid contract status %q", *input.Status))
		}
		contract.Status = *input.Status
	}
	if input.Scope != nil {
		contract.Scope = strings.TrimSpace(*input.Scope)
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating contract")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionUpdate, targetTable, &contract.ID, fmt.Sprintf("updated contract %q", contract.Title))
	item := toListItem(*contract)
	return &item, nil
}

func (s *service) DeleteContract(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := access.Require(actor, enums.ResourceContract, enums.OperationDelete); err != nil {
		return err
	}
	contract, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if pkgdb.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "contract still has payment requests attached")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting contract")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionDelete, targetTable, &id, fmt.Sprintf("deleted contract %q", contract.Title))
	return nil
}

func (s *service) findVisible(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Contract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading contract")
	}
	if actor.IsSiteScoped() {
		assigned, err := s.projects.IsAssigned(ctx, actor.UserID, contract.ProjectID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking project assignment")
		}
		if !assigned {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
	}
	return contract, nil
}

func (s *service) ensureProjectVisible(ctx context.Context, actor access.Actor, projectID uuid.UUID) error {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading project")
	}
	if actor.IsSiteScoped() {
		assigned, err := s.projects.IsAssigned(ctx, actor.UserID, projectID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking project assignment")
		}
		if !assigned {
			return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
	}
	return nil
}

func validateValues(usd, iqd *decimal.Decimal) error {
	if usd != nil && usd.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "value_usd must not be negative")
	}
	if iqd != nil && iqd.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "value_iqd must not be negative")
	}
	return nil
}
