package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is an evidence file uploaded against a payment request.
// Immutable once created; rows are removed when the owning request is.
type Attachment struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentRequestID uuid.UUID `gorm:"column:payment_request_id;type:uuid;not null"`
	FileName         string    `gorm:"column:file_name;not null"`
	MimeType         string    `gorm:"column:mime_type;not null"`
	Data             []byte    `gorm:"column:data;type:bytea;not null"`
	UploadedByUserID uuid.UUID `gorm:"column:uploaded_by_user_id;type:uuid;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}
