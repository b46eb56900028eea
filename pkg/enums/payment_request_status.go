package enums

import "fmt"

// PaymentRequestStatus tracks the workflow state of a payment request.
// Submitted requests move to Approved or Rejected; only Approved requests
// can be marked Paid. Rejected and Paid are terminal.
type PaymentRequestStatus string

const (
	PaymentRequestStatusSubmitted PaymentRequestStatus = "Submitted"
	PaymentRequestStatusApproved  PaymentRequestStatus = "Approved"
	PaymentRequestStatusRejected  PaymentRequestStatus = "Rejected"
	PaymentRequestStatusPaid      PaymentRequestStatus = "Paid"
)

var validPaymentRequestStatuses = []PaymentRequestStatus{
	PaymentRequestStatusSubmitted,
	PaymentRequestStatusApproved,
	PaymentRequestStatusRejected,
	PaymentRequestStatusPaid,
}

// String implements fmt.Stringer.
func (p PaymentRequestStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentRequestStatus.
func (p PaymentRequestStatus) IsValid() bool {
	for _, candidate := range validPaymentRequestStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (p PaymentRequestStatus) IsTerminal() bool {
	return p == PaymentRequestStatusRejected || p == PaymentRequestStatusPaid
}

// ParsePaymentRequestStatus converts raw input into a PaymentRequestStatus.
func ParsePaymentRequestStatus(value string) (PaymentRequestStatus, error) {
	for _, candidate := range validPaymentRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment request status %q", value)
}
