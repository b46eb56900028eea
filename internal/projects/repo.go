package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
)

// Repository exposes project and assignment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a project repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new project row.
func (r *Repository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// FindByID returns the project or gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns projects using cursor pagination. When visibleToUserID is
// set, only projects the user is assigned to are returned.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Project, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})

	if opts.visibleToUserID != nil {
		query = query.
			Joins("JOIN project_assignments ON project_assignments.project_id = projects.id").
			Where("project_assignments.user_id = ?", *opts.visibleToUserID)
	}
	if opts.status != "" {
		query = query.Where("projects.status = ?", opts.status)
	}
	if opts.cursor != nil {
		query = query.Where("(projects.created_at < ?) OR (projects.created_at = ? AND projects.id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("projects.created_at DESC").Order("projects.id DESC").Limit(opts.limit)

	var rows []models.Project
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the full project row.
func (r *Repository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete removes the project. Assignment rows cascade at the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id).Error
}

// Assign links a user to a project.
func (r *Repository) Assign(ctx context.Context, userID, projectID uuid.UUID) error {
	assignment := &models.ProjectAssignment{UserID: userID, ProjectID: projectID}
	return r.db.WithContext(ctx).Create(assignment).Error
}

// Unassign removes the user-project link.
func (r *Repository) Unassign(ctx context.Context, userID, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.ProjectAssignment{}).Error
}

// IsAssigned reports whether the user is linked to the project.
func (r *Repository) IsAssigned(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProjectAssignment{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AssignedUserIDs returns the users linked to the project.
func (r *Repository) AssignedUserIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ProjectAssignment{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AssignedProjectIDs returns the projects linked to the user.
func (r *Repository) AssignedProjectIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ProjectAssignment{}).
		Where("user_id = ?", userID).
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByStatus aggregates project counts per status.
func (r *Repository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
