package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gegsoft/paytrack-backend/internal/access"
	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgerrors "github.com/gegsoft/paytrack-backend/pkg/errors"
)

type stubPaymentsRepo struct {
	requests    map[uuid.UUID]*models.PaymentRequest
	attachments map[uuid.UUID]*models.Attachment
	lastQuery   listQuery
}

func newStubPaymentsRepo() *stubPaymentsRepo {
	return &stubPaymentsRepo{
		requests:    make(map[uuid.UUID]*models.PaymentRequest),
		attachments: make(map[uuid.UUID]*models.Attachment),
	}
}

func (s *stubPaymentsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPaymentsRepo) Create(ctx context.Context, request *models.PaymentRequest) (*models.PaymentRequest, error) {
	request.ID = uuid.New()
	request.CreatedAt = time.Now().UTC()
	request.UpdatedAt = request.CreatedAt
	s.requests[request.ID] = request
	return request, nil
}

func (s *stubPaymentsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *request
	return &found, nil
}

func (s *stubPaymentsRepo) List(ctx context.Context, opts listQuery) ([]models.PaymentRequest, error) {
	s.lastQuery = opts
	var out []models.PaymentRequest
	for _, r := range s.requests {
		if opts.contractID != nil && r.ContractID != *opts.contractID {
			continue
		}
		if opts.status != "" && r.Status != opts.status {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (s *stubPaymentsRepo) Update(ctx context.Context, request *models.PaymentRequest) error {
	s.requests[request.ID] = request
	return nil
}

func (s *stubPaymentsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.requests, id)
	return nil
}

func (s *stubPaymentsRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.PaymentRequestStatus, paidDate *time.Time, hqComments *string) (int64, error) {
	request, ok := s.requests[id]
	if !ok || request.Status != from {
		return 0, nil
	}
	request.Status = to
	if paidDate != nil {
		request.PaidDate = paidDate
	}
	if hqComments != nil {
		request.HQComments = hqComments
	}
	request.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (s *stubPaymentsRepo) CreateAttachment(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error) {
	attachment.ID = uuid.New()
	attachment.CreatedAt = time.Now().UTC()
	s.attachments[attachment.ID] = attachment
	return attachment, nil
}

func (s *stubPaymentsRepo) FindAttachmentByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	attachment, ok := s.attachments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *attachment
	return &found, nil
}

func (s *stubPaymentsRepo) ListAttachments(ctx context.Context, requestID uuid.UUID) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, a := range s.attachments {
		if a.PaymentRequestID == requestID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubPaymentsRepo) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	delete(s.attachments, id)
	return nil
}

func (s *stubPaymentsRepo) SumAmountsByStatus(ctx context.Context) ([]StatusTotals, error) {
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubContractLookup struct {
	contracts map[uuid.UUID]uuid.UUID
}

func newStubContractLookup() *stubContractLookup {
	return &stubContractLookup{contracts: make(map[uuid.UUID]uuid.UUID)}
}

func (s *stubContractLookup) FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	projectID, ok := s.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Contract{ID: id, ProjectID: projectID}, nil
}

func (s *stubContractLookup) add(projectID uuid.UUID) uuid.UUID {
	id := uuid.New()
	s.contracts[id] = projectID
	return id
}

type stubAssignments struct {
	assigned map[uuid.UUID]map[uuid.UUID]bool
}

func newStubAssignments() *stubAssignments {
	return &stubAssignments{assigned: make(map[uuid.UUID]map[uuid.UUID]bool)}
}

func (s *stubAssignments) IsAssigned(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	return s.assigned[userID][projectID], nil
}

func (s *stubAssignments) assign(userID, projectID uuid.UUID) {
	if s.assigned[userID] == nil {
		s.assigned[userID] = make(map[uuid.UUID]bool)
	}
	s.assigned[userID][projectID] = true
}

type recordedActivity struct {
	action enums.ActivityAction
	table  string
}

type capturingRecorder struct {
	records []recordedActivity
}

func (c *capturingRecorder) Record(ctx context.Context, actor access.Actor, action enums.ActivityAction, targetTable string, targetID *uuid.UUID, details string) {
	c.records = append(c.records, recordedActivity{action: action, table: targetTable})
}

type paymentsFixture struct {
	svc         Service
	repo        *stubPaymentsRepo
	contracts   *stubContractLookup
	assignments *stubAssignments
	recorder    *capturingRecorder
}

func newPaymentsFixture(t *testing.T) *paymentsFixture {
	t.Helper()

	repo := newStubPaymentsRepo()
	contracts := newStubContractLookup()
	assignments := newStubAssignments()
	recorder := &capturingRecorder{}
	svc, err := NewService(repo, stubTxRunner{}, contracts, assignments, recorder)
	require.NoError(t, err)
	return &paymentsFixture{svc: svc, repo: repo, contracts: contracts, assignments: assignments, recorder: recorder}
}

func (f *paymentsFixture) submit(t *testing.T, actor access.Actor, contractID uuid.UUID) *ListItem {
	t.Helper()

	usd := decimal.NewFromInt(1200)
	created, err := f.svc.CreatePaymentRequest(context.Background(), actor, CreatePaymentRequestInput{
		ContractID: contractID,
		AmountUSD:  &usd,
		Note:       "progress billing",
	})
	require.NoError(t, err)
	return created
}

func TestCreatePaymentRequestRequiresAnAmount(t *testing.T) {
	f := newPaymentsFixture(t)
	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	contractID := f.contracts.add(uuid.New())

	_, err := f.svc.CreatePaymentRequest(context.Background(), admin, CreatePaymentRequestInput{ContractID: contractID})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	negative := decimal.NewFromInt(-5)
	_, err = f.svc.CreatePaymentRequest(context.Background(), admin, CreatePaymentRequestInput{ContractID: contractID, AmountIQD: &negative})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreatePaymentRequestStartsSubmitted(t *testing.T) {
	f := newPaymentsFixture(t)
	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	contractID := f.contracts.add(uuid.New())

	created := f.submit(t, admin, contractID)
	assert.Equal(t, enums.PaymentRequestStatusSubmitted, created.Status)
	assert.Equal(t, admin.UserID, created.RequestedByUserID)
	require.Len(t, f.recorder.records, 1)
	assert.Equal(t, enums.ActivityActionCreate, f.recorder.records[0].action)
}

func TestSiteAccountantSubmitsOnlyWithinAssignedProjects(t *testing.T) {
	f := newPaymentsFixture(t)
	projectID := uuid.New()
	contractID := f.contracts.add(projectID)
	accountant := access.Actor{UserID: uuid.New(), Role: enums.RoleSiteAccountant}

	usd := decimal.NewFromInt(300)
	_, err := f.svc.CreatePaymentRequest(context.Background(), accountant, CreatePaymentRequestInput{ContractID: contractID, AmountUSD: &usd})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	f.assignments.assign(accountant.UserID, projectID)
	created := f.submit(t, accountant, contractID)
	assert.Equal(t, enums.PaymentRequestStatusSubmitted, created.Status)
}

func TestApproveThenMarkPaid(t *testing.T) {
	f := newPaymentsFixture(t)
	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	accountant := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAccountant}
	contractID := f.contracts.add(uuid.New())

	created := f.submit(t, admin, contractID)

	comments := "approved against milestone 2"
	approved, err := f.svc.Transition(context.Background(), accountant, created.ID, TransitionInput{
		TargetStatus: enums.PaymentRequestStatusApproved,
		HQComments:   &comments,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentRequestStatusApproved, approved.Status)
	require.NotNil(t, approved.HQComments)
	assert.Equal(t, comments, *approved.HQComments)
	assert.Nil(t, approved.PaidDate)

	paid, err := f.svc.Transition(context.Background(), accountant, created.ID, TransitionInput{
		TargetStatus: enums.PaymentRequestStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentRequestStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)

	// Paid is terminal.
	_, err = f.svc.Transition(context.Background(), accountant, created.ID, TransitionInput{
		TargetStatus: enums.PaymentRequestStatusPaid,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestTransitionResponseReflectsStoredRow(t *testing.T) {
	f := newPaymentsFixture(t)
	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	contractID := f.contracts.add(uuid.New())

	created := f.submit(t, admin, contractID)
	time.Sleep(5 * time.Millisecond)

	approved, err := f.svc.Transition(context.Background(), admin, created.ID, TransitionInput{
		TargetStatus: enums.PaymentRequestStatusApproved,
	})
	require.NoError(t, err)

	stored, err := f.repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.UpdatedAt, approved.UpdatedAt)
	assert.True(t, approved.UpdatedAt.After(created.UpdatedAt))
}

func TestMarkPaidRequiresApprovalFirst(t *testing.T) {
	f := newPaymentsFixture(t)
	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	contractID := f.contracts.add(uuid.New())

	created := f.submit(t, admin, contractID)

	_, err := f.svc.Transition(context.Background(), admin, created.ID, TransitionInput{
		TargetStatus: enums.PaymentRequestStatusPaid,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestRejectedIsTerminal(t *testing.T) {
	f := newPaymentsFixture(t)
	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	contractID := f.contracts.add(uuid.New())

	created := f.submit(t, admin, contractID)

	rejected, err := f.svc.Transition(context.Background(), admin, created.ID, TransitionInput{
		TargetStatus: enums.PaymentRequestStatusRejected,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentRequestStatusRejected, rejected.Status)

	_, err = f.svc.Transition(context.Background(), admin, created.ID, TransitionInput{
		TargetStatus: enums.PaymentRequestStatusApproved,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestSiteRolesCannotDecide(t *testing.T) {
	f := newPaymentsFixture(t)
	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	contractID := f.contracts.add(uuid.New())
	created := f.submit(t, admin, contractID)

	for _, role := range []enums.Role{enums.RoleSitePM, enums.RoleSiteAccountant} {
		actor := access.Actor{UserID: uuid.New(), Role: role}
		_, err := f.svc.Transition(context.Background(), actor, created.ID, TransitionInput{
			TargetStatus: enums.PaymentRequestStatusApproved,
		})
		require.Error(t, err, role)
		assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code(), role)
	}
}

func TestMarkPaidAcceptsBackdatedPaidDate(t *testing.T) {
	f := newPaymentsFixture(t)
	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	contractID := f.contracts.add(uuid.New())
	created := f.submit(t, admin, contractID)

	_, err := f.svc.Transition(context.Background(), admin, created.ID, TransitionInput{TargetStatus: enums.PaymentRequestStatusApproved})
	require.NoError(t, err)

	backdated := time.Now().UTC().AddDate(0, 0, -3)
	paid, err := f.svc.Transition(context.Background(), admin, created.ID, TransitionInput{
		TargetStatus: enums.PaymentRequestStatusPaid,
		PaidDate:     &backdated,
	})
	require.NoError(t, err)
	require.NotNil(t, paid.PaidDate)
	assert.WithinDuration(t, backdated, *paid.PaidDate, time.Second)
}

func TestUpdateOnlyWhileSubmitted(t *testing.T) {
	f := newPaymentsFixture(t)
	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	contractID := f.contracts.add(uuid.New())
	created := f.submit(t, admin, contractID)

	usd := decimal.NewFromInt(2400)
	updated, err := f.svc.UpdatePaymentRequest(context.Background(), admin, created.ID, UpdatePaymentRequestInput{AmountUSD: &usd})
	require.NoError(t, err)
	require.NotNil(t, updated.AmountUSD)
	assert.True(t, updated.AmountUSD.Equal(usd))

	_, err = f.svc.Transition(context.Background(), admin, created.ID, TransitionInput{TargetStatus: enums.PaymentRequestStatusApproved})
	require.NoError(t, err)

	_, err = f.svc.UpdatePaymentRequest(context.Background(), admin, created.ID, UpdatePaymentRequestInput{AmountUSD: &usd})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestListScopesSiteRoles(t *testing.T) {
	f := newPaymentsFixture(t)
	accountant := access.Actor{UserID: uuid.New(), Role: enums.RoleSiteAccountant}

	_, err := f.svc.ListPaymentRequests(context.Background(), accountant, ListParams{})
	require.NoError(t, err)
	require.NotNil(t, f.repo.lastQuery.visibleToUserID)
	assert.Equal(t, accountant.UserID, *f.repo.lastQuery.visibleToUserID)

	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	_, err = f.svc.ListPaymentRequests(context.Background(), admin, ListParams{})
	require.NoError(t, err)
	assert.Nil(t, f.repo.lastQuery.visibleToUserID)
}

func TestAttachmentsGatedByState(t *testing.T) {
	f := newPaymentsFixture(t)
	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	contractID := f.contracts.add(uuid.New())
	created := f.submit(t, admin, contractID)

	attachment, err := f.svc.AddAttachment(context.Background(), admin, created.ID, AddAttachmentInput{
		FileName: "invoice.pdf",
		MimeType: "application/pdf",
		Data:     []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "invoice.pdf", attachment.FileName)

	_, err = f.svc.Transition(context.Background(), admin, created.ID, TransitionInput{TargetStatus: enums.PaymentRequestStatusRejected})
	require.NoError(t, err)

	_, err = f.svc.AddAttachment(context.Background(), admin, created.ID, AddAttachmentInput{
		FileName: "late.pdf",
		Data:     []byte("x"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	content, err := f.svc.DownloadAttachment(context.Background(), admin, attachment.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), content.Data)
}

func TestDeleteRemovesAttachments(t *testing.T) {
	f := newPaymentsFixture(t)
	admin := access.Actor{UserID: uuid.New(), Role: enums.RoleHQAdmin}
	contractID := f.contracts.add(uuid.New())
	created := f.submit(t, admin, contractID)

	_, err := f.svc.AddAttachment(context.Background(), admin, created.ID, AddAttachmentInput{
		FileName: "invoice.pdf",
		Data:     []byte("x"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePaymentRequest(context.Background(), admin, created.ID))
	assert.Empty(t, f.repo.requests)
	assert.Empty(t, f.repo.attachments)

	_, err = f.svc.GetPaymentRequest(context.Background(), admin, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
