package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
)

func setupActivityTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS activity_log_entries (
  id TEXT PRIMARY KEY,
  actor_user_id TEXT NOT NULL,
  action TEXT NOT NULL,
  target_table TEXT NOT NULL,
  target_id TEXT,
  details TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func appendEntry(t *testing.T, db *gorm.DB, actor uuid.UUID, action enums.ActivityAction, table string, created time.Time) *models.ActivityLogEntry {
	t.Helper()

	entry := &models.ActivityLogEntry{
		ActorUserID: actor,
		Action:      action,
		TargetTable: table,
		Details:     "test entry",
		CreatedAt:   created,
	}
	entry.ID = uuid.New()
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestRepositoryListFiltersAndOrders(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	actorA := uuid.New()
	actorB := uuid.New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	appendEntry(t, db, actorA, enums.ActivityActionCreate, "projects", base)
	appendEntry(t, db, actorA, enums.ActivityActionApprove, "payment_requests", base.Add(time.Minute))
	appendEntry(t, db, actorB, enums.ActivityActionDelete, "contracts", base.Add(2*time.Minute))

	rows, err := repo.List(ctx, listQuery{limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "contracts", rows[0].TargetTable)
	assert.Equal(t, "projects", rows[2].TargetTable)

	rows, err = repo.List(ctx, listQuery{limit: 10, actorUserID: &actorA})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(ctx, listQuery{limit: 10, targetTable: "payment_requests"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.ActivityActionApprove, rows[0].Action)
}

func TestRepositoryRecentLimits(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	actor := uuid.New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		appendEntry(t, db, actor, enums.ActivityActionUpdate, "projects", base.Add(time.Duration(i)*time.Minute))
	}

	rows, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].CreatedAt.After(rows[2].CreatedAt))
}
