package projects

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

const targetTable = "projects"

type projectsRepository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, opts listQuery) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	Assign(ctx context.Context, userID, projectID uuid.UUID) error
	Unassign(ctx context.Context, userID, projectID uuid.UUID) error
	IsAssigned(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
	AssignedUserIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

// Service exposes project CRUD and assignment management.
type Service interface {
	CreateProject(ctx context.Context, actor access.Actor, input CreateProjectInput) (*ListItem, error)
	GetProject(ctx context.Context, actor access.Actor, id uuid.UUID) (*ListItem, error)
	ListProjects(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error)
	UpdateProject(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdateProjectInput) (*ListItem, error)
	DeleteProject(ctx context.Context, actor access.Actor, id uuid.UUID) error
	AssignUser(ctx context.Context, actor access.Actor, projectID, userID uuid.UUID) error
	UnassignUser(ctx context.Context, actor access.Actor, projectID, userID uuid.UUID) error
	AssignedUsers(ctx context.Context, actor access.Actor, projectID uuid.UUID) ([]uuid.UUID, error)
}

type service struct {
	repo     projectsRepository
	recorder activity.Recorder
}

// NewService builds the project service.
func NewService(repo projectsRepository, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("project repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, recorder: recorder}, nil
}

func (s *service) CreateProject(ctx context.Context, actor access.Actor, input CreateProjectInput) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourceProject, enums.OperationCreate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project name is required")
	}
	status := input.Status
	if status == "" {
		status = enums.ProjectStatusPlanned
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid project status %q", status))
	}

	project := &models.Project{
		Name:            strings.TrimSpace(input.Name),
		Location:        strings.TrimSpace(input.Location),
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		Status:          status,
		CreatedByUserID: actor.UserID,
	}
	created, err := s.repo.Create(ctx, project)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating project")
	}

	// Site PMs only see assigned projects, so creating one links them to it.
	if actor.IsSiteScoped() {
		if err := s.repo.Assign(ctx, actor.UserID, created.ID); err != nil && !pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assigning creator to project")
		}
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionCreate, targetTable, &created.ID, fmt.Sprintf("created project %q", created.Name))
	item := toListItem(*created)
	return &item, nil
}

func (s *service) GetProject(ctx context.Context, actor access.Actor, id uuid.UUID) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourceProject, enums.OperationView); err != nil {
		return nil, err
	}
	project, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	item := toListItem(*project)
	return &item, nil
}

func (s *service) ListProjects(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error) {
	if err := access.Require(actor, enums.ResourceProject, enums.OperationView); err != nil {
		return nil, err
	}
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid project status %q", params.Status))
	}

	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	query := listQuery{
		status: params.Status,
		limit:  pkgpagination.NormalizeLimit(params.Limit) + 1,
		cursor: cursor,
	}
	if actor.IsSiteScoped() {
		query.visibleToUserID = &actor.UserID
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing projects")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
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

func (s *service) UpdateProject(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdateProjectInput) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourceProject, enums.OperationEdit); err != nil {
		return nil, err
	}
	project, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "project name is required")
		}
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Location != nil {
		project.Location = strings.TrimSpace(*input.Location)
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid project status %q", *input.Status))
		}
		project.Status = *input.Status
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating project")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionUpdate, targetTable, &project.ID, fmt.Sprintf("updated project %q", project.Name))
	item := toListItem(*project)
	return &item, nil
}

func (s *service) DeleteProject(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := access.Require(actor, enums.ResourceProject, enums.OperationDelete); err != nil {
		return err
	}
	project, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if pkgdb.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "project still has contracts attached")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting project")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionDelete, targetTable, &id, fmt.Sprintf("deleted project %q", project.Name))
	return nil
}

func (s *service) AssignUser(ctx context.Context, actor access.Actor, projectID, userID uuid.UUID) error {
	// Assignment management rides on project edit rights.
	if err := access.Require(actor, enums.ResourceProject, enums.OperationEdit); err != nil {
		return err
	}
	if _, err := s.findVisible(ctx, actor, projectID); err != nil {
		return err
	}
	if err := s.repo.Assign(ctx, userID, projectID); err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "user is already assigned to this project")
		}
		if pkgdb.IsForeignKeyViolation(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assigning user to project")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionUpdate, targetTable, &projectID, fmt.Sprintf("assigned user %s", userID))
	return nil
}

func (s *service) UnassignUser(ctx context.Context, actor access.Actor, projectID, userID uuid.UUID) error {
	if err := access.Require(actor, enums.ResourceProject, enums.OperationEdit); err != nil {
		return err
	}
	if _, err := s.findVisible(ctx, actor, projectID); err != nil {
		return err
	}
	if err := s.repo.Unassign(ctx, userID, projectID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unassigning user from project")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionUpdate, targetTable, &projectID, fmt.Sprintf("unassigned user %s", userID))
	return nil
}

func (s *service) AssignedUsers(ctx context.Context, actor access.Actor, projectID uuid.UUID) ([]uuid.UUID, error) {
	if err := access.Require(actor, enums.ResourceProject, enums.OperationView); err != nil {
		return nil, err
	}
	if _, err := s.findVisible(ctx, actor, projectID); err != nil {
		return nil, err
	}
	ids, err := s.repo.AssignedUserIDs(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing project assignments")
	}
	return ids, nil
}

// findVisible loads the project and applies row-level scoping. Site-scoped
// actors get a not-found for projects outside their assignment set so that
// unassigned rows never leak.
func (s *service) findVisible(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading project")
	}
	if actor.IsSiteScoped() {
		assigned, err := s.repo.IsAssigned(ctx, actor.UserID, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking project assignment")
		}
		if !assigned {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
	}
	return project, nil
}
