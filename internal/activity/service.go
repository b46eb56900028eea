package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gegsoft/paytrack-backend/internal/access"
	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgerrors "github.com/gegsoft/paytrack-backend/pkg/errors"
	"github.com/gegsoft/paytrack-backend/pkg/logger"
	pkgpagination "github.com/gegsoft/paytrack-backend/pkg/pagination"
)

type activityRepository interface {
	Create(ctx context.Context, entry *models.ActivityLogEntry) (*models.ActivityLogEntry, error)
	List(ctx context.Context, opts listQuery) ([]models.ActivityLogEntry, error)
	Recent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
}

// Recorder is the write-side surface consumed by the other domain services.
type Recorder interface {
	Record(ctx context.Context, actor access.Actor, action enums.ActivityAction, targetTable string, targetID *uuid.UUID, details string)
}

// Service exposes activity recording and HQ-facing log queries.
type Service interface {
	Recorder
	ListActivity(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error)
	RecentActivity(ctx context.Context, actor access.Actor, limit int) ([]ListItem, error)
}

type service struct {
	repo activityRepository
	logg *logger.Logger
}

// NewService builds the activity service.
func NewService(repo activityRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Record appends a log entry for a completed mutation. A failed write is
// reported as an operator warning and never blocks the caller; the business
// mutation has already committed by the time this runs.
func (s *service) Record(ctx context.Context, actor access.Actor, action enums.ActivityAction, targetTable string, targetID *uuid.UUID, details string) {
	entry := &models.ActivityLogEntry{
		ActorUserID: actor.UserID,
		Action:      action,
		TargetTable: targetTable,
		TargetID:    targetID,
		Details:     details,
	}
	if _, err := s.repo.Create(ctx, entry); err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"action":       string(action),
			"target_table": targetTable,
			"actor":        actor.UserID.String(),
		})
		s.logg.Error(ctx, "activity log write failed", err)
	}
}

// ListActivity returns the log for HQ roles. Site-scoped roles have no
// view into the audit trail.
func (s *service) ListActivity(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error) {
	if actor.IsSiteScoped() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s is not allowed to view the activity log", actor.Role))
	}

	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.List(ctx, listQuery{
		actorUserID: params.ActorUserID,
		targetTable: params.TargetTable,
		limit:       limit + 1,
		cursor:      cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing activity log")
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

// RecentActivity returns the newest entries for dashboard rendering.
func (s *service) RecentActivity(ctx context.Context, actor access.Actor, limit int) ([]ListItem, error) {
	if actor.IsSiteScoped() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s is not allowed to view the activity log", actor.Role))
	}
	rows, err := s.repo.Recent(ctx, pkgpagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing recent activity")
	}
	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toListItem(row))
	}
	return items, nil
}
