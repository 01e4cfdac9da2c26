package dashboard

import "context"

type DashboardService interface {
	// Overview returns today's and this month's figures for the caller's scope.
	Overview(ctx context.Context) (OverviewResponse, error)
	My(ctx context.Context) (MyDashboardResponse, error)
}
