package services

import (
	"context"
	"time"

	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/core/domain"
)

const (
	defaultChartMonths = 6
	maxChartMonths     = 12
)

// DashboardService computes read-only rollups for the admin dashboard
type DashboardService struct {
	store repositories.Store
	now   func() time.Time
}

// NewDashboardService creates a new dashboard service. now is the clock used
// to find the current billing month.
func NewDashboardService(store repositories.Store, now func() time.Time) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{store: store, now: now}
}

// Stats is the headline dashboard numbers
type Stats struct {
	TotalRooms      int64 `json:"total_rooms"`
	OccupiedRooms   int64 `json:"occupied_rooms"`
	VacantRooms     int64 `json:"vacant_rooms"`
	TotalTenants    int64 `json:"total_tenants"`
	PendingInvoices int64 `json:"pending_invoices"`
	PaidInvoices    int64 `json:"paid_invoices"`
	MonthlyRevenue  int64 `json:"monthly_revenue"`
}

// RevenuePoint is one month of the revenue chart
type RevenuePoint struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
}

// Notifications counts items waiting for an admin
type Notifications struct {
	PendingPayments int64 `json:"pending_payments"`
	OpenIssues      int64 `json:"open_issues"`
}

// Stats returns room, tenant and invoice counts and the paid revenue of the
// current billing month
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var err error

	if stats.OccupiedRooms, err = s.store.Rooms().CountByStatus(ctx, domain.RoomOccupied); err != nil {
		return nil, err
	}
	if stats.VacantRooms, err = s.store.Rooms().CountByStatus(ctx, domain.RoomVacant); err != nil {
		return nil, err
	}
	stats.TotalRooms = stats.OccupiedRooms + stats.VacantRooms

	if stats.TotalTenants, err = s.store.Users().CountByRole(ctx, domain.RoleTenant); err != nil {
		return nil, err
	}
	if stats.PendingInvoices, err = s.store.Invoices().CountByStatus(ctx, domain.InvoicePending); err != nil {
		return nil, err
	}
	if stats.PaidInvoices, err = s.store.Invoices().CountByStatus(ctx, domain.InvoicePaid); err != nil {
		return nil, err
	}

	month := domain.BillingMonthOf(s.now())
	sums, err := s.store.Invoices().SumPaidByMonth(ctx, []string{month})
	if err != nil {
		return nil, err
	}
	stats.MonthlyRevenue = sums[month]

	return stats, nil
}

// RevenueChart returns paid revenue for the trailing months, oldest first.
// months outside 1..12 falls back to 6.
func (s *DashboardService) RevenueChart(ctx context.Context, months int) ([]RevenuePoint, error) {
	if months < 1 || months > maxChartMonths {
		months = defaultChartMonths
	}

	keys := domain.TrailingMonths(s.now(), months)
	sums, err := s.store.Invoices().SumPaidByMonth(ctx, keys)
	if err != nil {
		return nil, err
	}

	points := make([]RevenuePoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, RevenuePoint{Month: k, Revenue: sums[k]})
	}
	return points, nil
}

// Notifications returns manual payments awaiting verification and open issues
func (s *DashboardService) Notifications(ctx context.Context) (*Notifications, error) {
	pending, err := s.store.Invoices().CountAwaitingVerification(ctx)
	if err != nil {
		return nil, err
	}
	open, err := s.store.Issues().CountByStatus(ctx, domain.IssueOpen)
	if err != nil {
		return nil, err
	}
	return &Notifications{PendingPayments: pending, OpenIssues: open}, nil
}
