package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/gegsoft/paytrack-backend/internal/access"
	"github.com/gegsoft/paytrack-backend/internal/activity"
	"github.com/gegsoft/paytrack-backend/internal/payments"
	"github.com/gegsoft/paytrack-backend/pkg/enums"
	pkgerrors "github.com/gegsoft/paytrack-backend/pkg/errors"
)

const recentActivityLimit = 20

type projectCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type paymentAggregator interface {
	SumAmountsByStatus(ctx context.Context) ([]payments.StatusTotals, error)
}

type activityFeed interface {
	RecentActivity(ctx context.Context, actor access.Actor, limit int) ([]activity.ListItem, error)
}

// Service assembles the HQ overview.
type Service interface {
	Summary(ctx context.Context, actor access.Actor) (*Summary, error)
}

type service struct {
	projects projectCounter
	payments paymentAggregator
	activity activityFeed
}

// NewService builds the dashboard service.
func NewService(projects projectCounter, payments paymentAggregator, activityFeed activityFeed) (Service, error) {
	if projects == nil {
		return nil, fmt.Errorf("project counter required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment aggregator required")
	}
	if activityFeed == nil {
		return nil, fmt.Errorf("activity feed required")
	}
	return &service{projects: projects, payments: payments, activity: activityFeed}, nil
}

func (s *service) Summary(ctx context.Context, actor access.Actor) (*Summary, error) {
	// The dashboard aggregates across every project, so it stays HQ-only.
	if actor.IsSiteScoped() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s is not allowed to view the dashboard", actor.Role))
	}

	counts, err := s.projects.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counting projects")
	}
	projectCounts := make([]ProjectCount, 0, len(counts))
	for status, count := range counts {
		projectCounts = append(projectCounts, ProjectCount{Status: enums.ProjectStatus(status), Count: count})
	}
	sort.Slice(projectCounts, func(i, j int) bool { return projectCounts[i].Status < projectCounts[j].Status })

	totals, err := s.payments.SumAmountsByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregating payments")
	}
	paymentTotals := make([]PaymentTotals, 0, len(totals))
	for _, total := range totals {
		paymentTotals = append(paymentTotals, PaymentTotals{
			Status:   total.Status,
			Count:    total.Count,
			TotalUSD: total.TotalUSD,
			TotalIQD: total.TotalIQD,
		})
	}
	sort.Slice(paymentTotals, func(i, j int) bool { return paymentTotals[i].Status < paymentTotals[j].Status })

	recent, err := s.activity.RecentActivity(ctx, actor, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Projects:       projectCounts,
		Payments:       paymentTotals,
		RecentActivity: recent,
	}, nil
}
