package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

const targetTable = "payment_requests"

// maxAttachmentBytes caps inline evidence uploads.
const maxAttachmentBytes = 10 << 20

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type contractsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
}

type assignmentChecker interface {
	IsAssigned(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
}

// Service owns the payment request lifecycle: submission, the
// approve/reject/mark-paid workflow, and attachment evidence.
type Service interface {
	CreatePaymentRequest(ctx context.Context, actor access.Actor, input CreatePaymentRequestInput) (*ListItem, error)
	GetPaymentRequest(ctx context.Context, actor access.Actor, id uuid.UUID) (*ListItem, error)
	ListPaymentRequests(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error)
	UpdatePaymentRequest(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdatePaymentRequestInput) (*ListItem, error)
	DeletePaymentRequest(ctx context.Context, actor access.Actor, id uuid.UUID) error
	Transition(ctx context.Context, actor access.Actor, id uuid.UUID, input TransitionInput) (*ListItem, error)
	AddAttachment(ctx context.Context, actor access.Actor, requestID uuid.UUID, input AddAttachmentInput) (*AttachmentItem, error)
	ListAttachments(ctx context.Context, actor access.Actor, requestID uuid.UUID) ([]AttachmentItem, error)
	DownloadAttachment(ctx context.Context, actor access.Actor, attachmentID uuid.UUID) (*AttachmentContent, error)
	DeleteAttachment(ctx context.Context, actor access.Actor, attachmentID uuid.UUID) error
	Totals(ctx context.Context, actor access.Actor) ([]StatusTotals, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	contracts contractsRepository
	projects  assignmentChecker
	recorder  activity.Recorder
}

// NewService builds the payment request service.
func NewService(repo Repository, tx txRunner, contracts contractsRepository, projects assignmentChecker, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment request repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if contracts == nil {
		return nil, fmt.Errorf("contract repository required")
	}
	if projects == nil {
		return nil, fmt.Errorf("assignment checker required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, tx: tx, contracts: contracts, projects: projects, recorder: recorder}, nil
}

func (s *service) CreatePaymentRequest(ctx context.Context, actor access.Actor, input CreatePaymentRequestInput) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourcePaymentRequest, enums.OperationCreate); err != nil {
		return nil, err
	}
	if input.ContractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id is required")
	}
	if err := validateAmounts(input.AmountUSD, input.AmountIQD); err != nil {
		return nil, err
	}

	// The owning contract must exist and, for site roles, sit under an
	// assigned project.
	contract, err := s.contracts.FindByID(ctx, input.ContractID)
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

	requestedDate := time.Now().UTC()
	if input.RequestedDate != nil {
		requestedDate = *input.RequestedDate
	}

	request := &models.PaymentRequest{
		ContractID:        input.ContractID,
		RequestedByUserID: actor.UserID,
		RequestedDate:     requestedDate,
		AmountUSD:         input.AmountUSD,
		AmountIQD:         input.AmountIQD,
		Note:              strings.TrimSpace(input.Note),
		Status:            enums.PaymentRequestStatusSubmitted,
	}
	created, err := s.repo.Create(ctx, request)
	if err != nil {
		if pkgdb.IsForeignKeyViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment request")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionCreate, targetTable, &created.ID, fmt.Sprintf("submitted payment request against contract %s", created.ContractID))
	item := toListItem(*created)
	return &item, nil
}

func (s *service) GetPaymentRequest(ctx context.Context, actor access.Actor, id uuid.UUID) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourcePaymentRequest, enums.OperationView); err != nil {
		return nil, err
	}
	request, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	item := toListItem(*request)
	return &item, nil
}

func (s *service) ListPaymentRequests(ctx context.Context, actor access.Actor, params ListParams) (*ListResult, error) {
	if err := access.Require(actor, enums.ResourcePaymentRequest, enums.OperationView); err != nil {
		return nil, err
	}
	if params.Status != "" && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment request status %q", params.Status))
	}

	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		contractID:     params.ContractID,
		contractorID:   params.ContractorID,
		status:         params.Status,
		requestedAfter: params.RequestedAfter,
		limit:          limit + 1,
		cursor:         cursor,
	}
	if actor.IsSiteScoped() {
		query.visibleToUserID = &actor.UserID
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing payment requests")
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

func (s *service) UpdatePaymentRequest(ctx context.Context, actor access.Actor, id uuid.UUID, input UpdatePaymentRequestInput) (*ListItem, error) {
	if err := access.Require(actor, enums.ResourcePaymentRequest, enums.OperationEdit); err != nil {
		return nil, err
	}
	request, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	// Amounts and notes are only editable before the workflow decides.
	if request.Status != enums.PaymentRequestStatusSubmitted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot edit a %s payment request", request.Status))
	}

	if input.AmountUSD != nil {
		request.AmountUSD = input.AmountUSD
	}
	if input.AmountIQD != nil {
		request.AmountIQD = input.AmountIQD
	}
	if err := validateAmounts(request.AmountUSD, request.AmountIQD); err != nil {
		return nil, err
	}
	if input.Note != nil {
		request.Note = strings.TrimSpace(*input.Note)
	}

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating payment request")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionUpdate, targetTable, &request.ID, "updated payment request")
	item := toListItem(*request)
	return &item, nil
}

func (s *service) DeletePaymentRequest(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := access.Require(actor, enums.ResourcePaymentRequest, enums.OperationDelete); err != nil {
		return err
	}
	if _, err := s.findVisible(ctx, actor, id); err != nil {
		return err
	}

	// Attachments go with the request in one transaction.
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		attachments, err := repo.ListAttachments(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing attachments")
		}
		for _, attachment := range attachments {
			if err := repo.DeleteAttachment(ctx, attachment.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting attachment")
			}
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting payment request")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionDelete, targetTable, &id, "deleted payment request")
	return nil
}

// transitionRule maps a target status onto its required source state,
// permission, and activity label.
type transitionRule struct {
	from      enums.PaymentRequestStatus
	operation enums.Operation
	action    enums.ActivityAction
}

var transitionRules = map[enums.PaymentRequestStatus]transitionRule{
	enums.PaymentRequestStatusApproved: {
		from:      enums.PaymentRequestStatusSubmitted,
		operation: enums.OperationApprove,
		action:    enums.ActivityActionApprove,
	},
	enums.PaymentRequestStatusRejected: {
		from:      enums.PaymentRequestStatusSubmitted,
		operation: enums.OperationApprove,
		action:    enums.ActivityActionReject,
	},
	enums.PaymentRequestStatusPaid: {
		from:      enums.PaymentRequestStatusApproved,
		operation: enums.OperationMarkPaid,
		action:    enums.ActivityActionMarkPaid,
	},
}

func (s *service) Transition(ctx context.Context, actor access.Actor, id uuid.UUID, input TransitionInput) (*ListItem, error) {
	rule, ok := transitionRules[input.TargetStatus]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid target status %q", input.TargetStatus))
	}
	if err := access.Require(actor, enums.ResourcePaymentRequest, rule.operation); err != nil {
		return nil, err
	}

	var updated *models.PaymentRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment request")
		}
		if request.Status != rule.from {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move a %s payment request to %s", request.Status, input.TargetStatus))
		}

		var paidDate *time.Time
		if input.TargetStatus == enums.PaymentRequestStatusPaid {
			stamp := time.Now().UTC()
			if input.PaidDate != nil {
				stamp = *input.PaidDate
			}
			paidDate = &stamp
		}

		// The guard check and the write race against concurrent approvers;
		// the conditional update decides who wins.
		affected, err := repo.UpdateStatusIf(ctx, id, rule.from, input.TargetStatus, paidDate, input.HQComments)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating payment request status")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("payment request is no longer %s", rule.from))
		}

		// Reload so the response carries the row GORM just touched,
		// updated_at included.
		fresh, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading payment request")
		}
		updated = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actor, rule.action, targetTable, &id, fmt.Sprintf("payment request moved to %s", input.TargetStatus))
	item := toListItem(*updated)
	return &item, nil
}

func (s *service) AddAttachment(ctx context.Context, actor access.Actor, requestID uuid.UUID, input AddAttachmentInput) (*AttachmentItem, error) {
	// Evidence upload rides on create or edit rights.
	if !access.Can(actor.Role, enums.ResourcePaymentRequest, enums.OperationCreate) &&
		!access.Can(actor.Role, enums.ResourcePaymentRequest, enums.OperationEdit) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s is not allowed to attach files", actor.Role))
	}
	if strings.TrimSpace(input.FileName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if len(input.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file content is required")
	}
	if len(input.Data) > maxAttachmentBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds the 10MB attachment limit")
	}

	request, err := s.findVisible(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot attach files to a %s payment request", request.Status))
	}

	mimeType := strings.TrimSpace(input.MimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	attachment := &models.Attachment{
		PaymentRequestID: requestID,
		FileName:         strings.TrimSpace(input.FileName),
		MimeType:         mimeType,
		Data:             input.Data,
		UploadedByUserID: actor.UserID,
	}
	created, err := s.repo.CreateAttachment(ctx, attachment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing attachment")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionCreate, "attachments", &created.ID, fmt.Sprintf("attached %q", created.FileName))
	item := toAttachmentItem(*created)
	return &item, nil
}

func (s *service) ListAttachments(ctx context.Context, actor access.Actor, requestID uuid.UUID) ([]AttachmentItem, error) {
	if err := access.Require(actor, enums.ResourcePaymentRequest, enums.OperationView); err != nil {
		return nil, err
	}
	if _, err := s.findVisible(ctx, actor, requestID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListAttachments(ctx, requestID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing attachments")
	}
	items := make([]AttachmentItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toAttachmentItem(row))
	}
	return items, nil
}

func (s *service) DownloadAttachment(ctx context.Context, actor access.Actor, attachmentID uuid.UUID) (*AttachmentContent, error) {
	if err := access.Require(actor, enums.ResourcePaymentRequest, enums.OperationView); err != nil {
		return nil, err
	}
	attachment, err := s.findAttachmentVisible(ctx, actor, attachmentID)
	if err != nil {
		return nil, err
	}
	return &AttachmentContent{
		FileName: attachment.FileName,
		MimeType: attachment.MimeType,
		Data:     attachment.Data,
	}, nil
}

func (s *service) DeleteAttachment(ctx context.Context, actor access.Actor, attachmentID uuid.UUID) error {
	if err := access.Require(actor, enums.ResourcePaymentRequest, enums.OperationDelete); err != nil {
		return err
	}
	attachment, err := s.findAttachmentVisible(ctx, actor, attachmentID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteAttachment(ctx, attachmentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting attachment")
	}

	s.recorder.Record(ctx, actor, enums.ActivityActionDelete, "attachments", &attachmentID, fmt.Sprintf("deleted attachment %q", attachment.FileName))
	return nil
}

func (s *service) Totals(ctx context.Context, actor access.Actor) ([]StatusTotals, error) {
	if err := access.Require(actor, enums.ResourcePaymentRequest, enums.OperationView); err != nil {
		return nil, err
	}
	totals, err := s.repo.SumAmountsByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregating payment totals")
	}
	return totals, nil
}

func (s *service) findVisible(ctx context.Context, actor access.Actor, id uuid.UUID) (*models.PaymentRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment request")
	}
	if actor.IsSiteScoped() {
		contract, err := s.contracts.FindByID(ctx, request.ContractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment request not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading contract")
		}
		if err := s.ensureProjectAssigned(ctx, actor, contract.ProjectID); err != nil {
			return nil, err
		}
	}
	return request, nil
}

func (s *service) findAttachmentVisible(ctx context.Context, actor access.Actor, attachmentID uuid.UUID) (*models.Attachment, error) {
	attachment, err := s.repo.FindAttachmentByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading attachment")
	}
	if _, err := s.findVisible(ctx, actor, attachment.PaymentRequestID); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *service) ensureProjectAssigned(ctx context.Context, actor access.Actor, projectID uuid.UUID) error {
	if !actor.IsSiteScoped() {
		return nil
	}
	assigned, err := s.projects.IsAssigned(ctx, actor.UserID, projectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking project assignment")
	}
	if !assigned {
		return pkgerrors.New(pkgerrors.CodeNotFound, "payment request not found")
	}
	return nil
}

func validateAmounts(usd, iqd *decimal.Decimal) error {
	if usd == nil && iqd == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one of amount_usd or amount_iqd is required")
	}
	if usd != nil && usd.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount_usd must not be negative")
	}
	if iqd != nil && iqd.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount_iqd must not be negative")
	}
	return nil
}
