package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/gegsoft/paytrack-backend/internal/activity"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
)

// Summary is the headline view HQ sees on login.
type Summary struct {
	Projects       []ProjectCount      `json:"projects"`
	Payments       []PaymentTotals     `json:"payments"`
	RecentActivity []activity.ListItem `json:"recent_activity"`
}

type ProjectCount struct {
	Status enums.ProjectStatus `json:"status"`
	Count  int64               `json:"count"`
}

type PaymentTotals struct {
	Status   enums.PaymentRequestStatus `json:"status"`
	Count    int64                      `json:"count"`
	TotalUSD decimal.Decimal            `json:"total_usd"`
	TotalIQD decimal.Decimal            `json:"total_iqd"`
}
