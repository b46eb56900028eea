package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	requests := `
CREATE TABLE IF NOT EXISTS payment_requests (
  id TEXT PRIMARY KEY,
  contract_id TEXT NOT NULL,
  requested_by_user_id TEXT NOT NULL,
  requested_date DATETIME NOT NULL,
  paid_date DATETIME,
  amount_usd NUMERIC,
  amount_iqd NUMERIC,
  note TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  hq_comments TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	attachments := `
CREATE TABLE IF NOT EXISTS attachments (
  id TEXT PRIMARY KEY,
  payment_request_id TEXT NOT NULL,
  file_name TEXT NOT NULL,
  mime_type TEXT NOT NULL,
  data BLOB NOT NULL,
  uploaded_by_user_id TEXT NOT NULL,
  created_at DATETIME
);`
	contracts := `
CREATE TABLE IF NOT EXISTS contracts (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  project_id TEXT NOT NULL,
  contractor_id TEXT NOT NULL,
  value_usd NUMERIC,
  value_iqd NUMERIC,
  start_date DATETIME,
  end_date DATETIME,
  status TEXT NOT NULL,
  scope TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`
	assignments := `
CREATE TABLE IF NOT EXISTS project_assignments (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  project_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (user_id, project_id)
);`
	for _, ddl := range []string{requests, attachments, contracts, assignments} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedContract(t *testing.T, db *gorm.DB, projectID uuid.UUID) *models.Contract {
	t.Helper()

	contract := &models.Contract{
		Title:        "Concrete works",
		ProjectID:    projectID,
		ContractorID: uuid.New(),
		Status:       enums.ContractStatusSigned,
	}
	contract.ID = uuid.New()
	require.NoError(t, db.Create(contract).Error)
	return contract
}

func seedRequest(t *testing.T, db *gorm.DB, contractID uuid.UUID, status enums.PaymentRequestStatus, created time.Time) *models.PaymentRequest {
	t.Helper()

	usd := decimal.NewFromInt(1500)
	request := &models.PaymentRequest{
		ContractID:        contractID,
		RequestedByUserID: uuid.New(),
		RequestedDate:     created,
		AmountUSD:         &usd,
		Status:            status,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
	request.ID = uuid.New()
	require.NoError(t, db.Create(request).Error)
	return request
}

func TestRepositoryListScopesToAssignedProjects(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	assignedProject := uuid.New()
	otherProject := uuid.New()
	visible := seedContract(t, db, assignedProject)
	hidden := seedContract(t, db, otherProject)

	now := time.Now().UTC()
	wanted := seedRequest(t, db, visible.ID, enums.PaymentRequestStatusSubmitted, now)
	seedRequest(t, db, hidden.ID, enums.PaymentRequestStatusSubmitted, now.Add(-time.Minute))

	userID := uuid.New()
	assignment := &models.ProjectAssignment{UserID: userID, ProjectID: assignedProject}
	assignment.ID = uuid.New()
	require.NoError(t, db.Create(assignment).Error)

	rows, err := repo.List(ctx, listQuery{visibleToUserID: &userID, limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, wanted.ID, rows[0].ID)

	// No assignments at all yields an empty result, not an error.
	stranger := uuid.New()
	rows, err = repo.List(ctx, listQuery{visibleToUserID: &stranger, limit: 10})
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Unscoped callers see everything.
	rows, err = repo.List(ctx, listQuery{limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	contract := seedContract(t, db, uuid.New())
	other := seedContract(t, db, uuid.New())

	now := time.Now().UTC()
	submitted := seedRequest(t, db, contract.ID, enums.PaymentRequestStatusSubmitted, now)
	approved := seedRequest(t, db, contract.ID, enums.PaymentRequestStatusApproved, now.Add(-time.Minute))
	seedRequest(t, db, other.ID, enums.PaymentRequestStatusSubmitted, now.Add(-2*time.Minute))

	rows, err := repo.List(ctx, listQuery{contractID: &contract.ID, limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, submitted.ID, rows[0].ID)
	assert.Equal(t, approved.ID, rows[1].ID)

	status := enums.PaymentRequestStatusApproved
	rows, err = repo.List(ctx, listQuery{contractID: &contract.ID, status: status, limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, approved.ID, rows[0].ID)

	rows, err = repo.List(ctx, listQuery{contractorID: &contract.ContractorID, limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	cutoff := now.Add(-30 * time.Second)
	rows, err = repo.List(ctx, listQuery{requestedAfter: &cutoff, limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, submitted.ID, rows[0].ID)
}

func TestRepositoryUpdateStatusIf(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	contract := seedContract(t, db, uuid.New())
	request := seedRequest(t, db, contract.ID, enums.PaymentRequestStatusSubmitted, time.Now().UTC())

	comments := "looks good"
	affected, err := repo.UpdateStatusIf(ctx, request.ID, enums.PaymentRequestStatusSubmitted, enums.PaymentRequestStatusApproved, nil, &comments)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	reloaded, err := repo.FindByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentRequestStatusApproved, reloaded.Status)
	require.NotNil(t, reloaded.HQComments)
	assert.Equal(t, comments, *reloaded.HQComments)
	assert.Nil(t, reloaded.PaidDate)

	// The guard stops a second writer whose snapshot is stale.
	affected, err = repo.UpdateStatusIf(ctx, request.ID, enums.PaymentRequestStatusSubmitted, enums.PaymentRequestStatusRejected, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, affected)

	paid := time.Now().UTC().Truncate(time.Second)
	affected, err = repo.UpdateStatusIf(ctx, request.ID, enums.PaymentRequestStatusApproved, enums.PaymentRequestStatusPaid, &paid, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	reloaded, err = repo.FindByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentRequestStatusPaid, reloaded.Status)
	require.NotNil(t, reloaded.PaidDate)
	assert.WithinDuration(t, paid, *reloaded.PaidDate, time.Second)
}

func TestRepositoryAttachmentRoundtrip(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	contract := seedContract(t, db, uuid.New())
	request := seedRequest(t, db, contract.ID, enums.PaymentRequestStatusSubmitted, time.Now().UTC())

	attachment := &models.Attachment{
		PaymentRequestID: request.ID,
		FileName:         "invoice.pdf",
		MimeType:         "application/pdf",
		Data:             []byte("%PDF-1.4"),
		UploadedByUserID: uuid.New(),
	}
	attachment.ID = uuid.New()
	created, err := repo.CreateAttachment(ctx, attachment)
	require.NoError(t, err)

	found, err := repo.FindAttachmentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice.pdf", found.FileName)
	assert.Equal(t, []byte("%PDF-1.4"), found.Data)

	rows, err := repo.ListAttachments(ctx, request.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, repo.DeleteAttachment(ctx, created.ID))
	rows, err = repo.ListAttachments(ctx, request.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositorySumAmountsByStatus(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	contract := seedContract(t, db, uuid.New())
	now := time.Now().UTC()

	first := seedRequest(t, db, contract.ID, enums.PaymentRequestStatusSubmitted, now)
	usd := decimal.NewFromInt(500)
	iqd := decimal.NewFromInt(650000)
	first.AmountUSD = &usd
	first.AmountIQD = &iqd
	require.NoError(t, db.Save(first).Error)

	seedRequest(t, db, contract.ID, enums.PaymentRequestStatusSubmitted, now.Add(-time.Minute))
	seedRequest(t, db, contract.ID, enums.PaymentRequestStatusPaid, now.Add(-2*time.Minute))

	totals, err := repo.SumAmountsByStatus(ctx)
	require.NoError(t, err)

	byStatus := make(map[enums.PaymentRequestStatus]StatusTotals, len(totals))
	for _, total := range totals {
		byStatus[total.Status] = total
	}

	submitted := byStatus[enums.PaymentRequestStatusSubmitted]
	assert.Equal(t, int64(2), submitted.Count)
	assert.True(t, submitted.TotalUSD.Equal(decimal.NewFromInt(2000)), "got %s", submitted.TotalUSD)
	assert.True(t, submitted.TotalIQD.Equal(decimal.NewFromInt(650000)), "got %s", submitted.TotalIQD)

	paid := byStatus[enums.PaymentRequestStatusPaid]
	assert.Equal(t, int64(1), paid.Count)
	assert.True(t, paid.TotalUSD.Equal(decimal.NewFromInt(1500)), "got %s", paid.TotalUSD)
}
