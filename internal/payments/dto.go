package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gegsoft/paytrack-backend/pkg/db/models"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgpagination "github.com/gegsoft/paytrack-backend/pkg/pagination"
)

type CreatePaymentRequestInput struct {
	ContractID    uuid.UUID        `json:"contract_id"`
	RequestedDate *time.Time       `json:"requested_date"`
	AmountUSD     *decimal.Decimal `json:"amount_usd"`
	AmountIQD     *decimal.Decimal `json:"amount_iqd"`
	Note          string           `json:"note"`
}

type UpdatePaymentRequestInput struct {
	AmountUSD *decimal.Decimal `json:"amount_usd"`
	AmountIQD *decimal.Decimal `json:"amount_iqd"`
	Note      *string          `json:"note"`
}

// TransitionInput drives Approve, Reject, and MarkPaid. PaidDate is only
// honored for MarkPaid and defaults to the current date when absent.
type TransitionInput struct {
	TargetStatus enums.PaymentRequestStatus `json:"target_status"`
	HQComments   *string                    `json:"hq_comments"`
	PaidDate     *time.Time                 `json:"paid_date"`
}

type AddAttachmentInput struct {
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

type ListParams struct {
	ContractID     *uuid.UUID
	ContractorID   *uuid.UUID
	Status         enums.PaymentRequestStatus
	RequestedAfter *time.Time
	pkgpagination.Params
}

type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor"`
}

type ListItem struct {
	ID                uuid.UUID                  `json:"id"`
	ContractID        uuid.UUID                  `json:"contract_id"`
	RequestedByUserID uuid.UUID                  `json:"requested_by_user_id"`
	RequestedDate     time.Time                  `json:"requested_date"`
	PaidDate          *time.Time                 `json:"paid_date,omitempty"`
	AmountUSD         *decimal.Decimal           `json:"amount_usd,omitempty"`
	AmountIQD         *decimal.Decimal           `json:"amount_iqd,omitempty"`
	Note              string                     `json:"note,omitempty"`
	Status            enums.PaymentRequestStatus `json:"status"`
	HQComments        *string                    `json:"hq_comments,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}

// AttachmentItem carries attachment metadata without the blob.
type AttachmentItem struct {
	ID               uuid.UUID `json:"id"`
	PaymentRequestID uuid.UUID `json:"payment_request_id"`
	FileName         string    `json:"file_name"`
	MimeType         string    `json:"mime_type"`
	SizeBytes        int       `json:"size_bytes"`
	UploadedByUserID uuid.UUID `json:"uploaded_by_user_id"`
	CreatedAt        time.Time `json:"created_at"`
}

// AttachmentContent is the downloadable blob plus metadata.
type AttachmentContent struct {
	FileName string
	MimeType string
	Data     []byte
}

// StatusTotals aggregates amounts per workflow status.
type StatusTotals struct {
	Status   enums.PaymentRequestStatus `json:"status"`
	Count    int64                      `json:"count"`
	TotalUSD decimal.Decimal            `json:"total_usd"`
	TotalIQD decimal.Decimal            `json:"total_iqd"`
}

type listQuery struct {
	contractID      *uuid.UUID
	contractorID    *uuid.UUID
	status          enums.PaymentRequestStatus
	requestedAfter  *time.Time
	visibleToUserID *uuid.UUID
	limit           int
	cursor          *pkgpagination.Cursor
}

func toListItem(m models.PaymentRequest) ListItem {
	return ListItem{
		ID:                m.ID,
		ContractID:        m.ContractID,
		RequestedByUserID: m.RequestedByUserID,
		RequestedDate:     m.RequestedDate,
		PaidDate:          m.PaidDate,
		AmountUSD:         m.AmountUSD,
		AmountIQD:         m.AmountIQD,
		Note:              m.Note,
		Status:            m.Status,
		HQComments:        m.HQComments,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toAttachmentItem(m models.Attachment) AttachmentItem {
	return AttachmentItem{
		ID:               m.ID,
		PaymentRequestID: m.PaymentRequestID,
		FileName:         m.FileName,
		MimeType:         m.MimeType,
		SizeBytes:        len(m.Data),
		UploadedByUserID: m.UploadedByUserID,
		CreatedAt:        m.CreatedAt,
	}
}
