package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gegsoft/paytrack-backend/pkg/enums"
)

// PaymentRequest is a request for payment against a contract. PaidDate is
// set if and only if the request has reached the terminal Paid state.
type PaymentRequest struct {
	ID                uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID        uuid.UUID                  `gorm:"column:contract_id;type:uuid;not null"`
	RequestedByUserID uuid.UUID                  `gorm:"column:requested_by_user_id;type:uuid;not null"`
	RequestedDate     time.Time                  `gorm:"column:requested_date;not null"`
	PaidDate          *time.Time                 `gorm:"column:paid_date"`
	AmountUSD         *decimal.Decimal           `gorm:"column:amount_usd;type:numeric(18,2)"`
	AmountIQD         *decimal.Decimal           `gorm:"column:amount_iqd;type:numeric(18,0)"`
	Note              string                     `gorm:"column:note"`
	Status            enums.PaymentRequestStatus `gorm:"column:status;type:text;not null"`
	HQComments        *string                    `gorm:"column:hq_comments"`
	CreatedAt         time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
