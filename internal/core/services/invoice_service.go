package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/core/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceService manages the invoice ledger
type InvoiceService struct {
	store  repositories.Store
	loc    *time.Location
	logger *zap.Logger
}

// NewInvoiceService creates a new invoice service. Billing months and due
// dates are interpreted in loc.
func NewInvoiceService(store repositories.Store, loc *time.Location, logger *zap.Logger) *InvoiceService {
	if loc == nil {
		loc = time.Local
	}
	return &InvoiceService{store: store, loc: loc, logger: orNop(logger)}
}

// GenerateResult summarizes a monthly generation run
type GenerateResult struct {
	Count    int               `json:"count"`
	Invoices []*models.Invoice `json:"invoices"`
	Skipped  int               `json:"skipped"`
	Failed   int               `json:"failed"`
}

// CreateInvoiceInput represents an ad hoc invoice
type CreateInvoiceInput struct {
	TenantID     uint
	RoomID       uint
	BillingMonth string
	Amount       int64
	DueDate      time.Time
}

var errSkipTenant = errors.New("skip tenant")

// GenerateMonthly creates one pending invoice per tenant with a room for
// billingMonth, priced at the room's current rent. Tenants already billed
// for the month, or whose room no longer exists, are skipped. A failure for
// one tenant is logged and counted without stopping the batch. Only a
// failure to list tenants aborts the run.
func (s *InvoiceService) GenerateMonthly(ctx context.Context, billingMonth string, dueDate time.Time) (*GenerateResult, error) {
	if _, err := domain.ParseBillingMonth(billingMonth, s.loc); err != nil {
		return nil, err
	}

	tenants, err := s.store.Users().ListTenantsWithRoom(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	result := &GenerateResult{Invoices: []*models.Invoice{}}
	for _, tenant := range tenants {
		invoice, err := s.generateForTenant(ctx, tenant, billingMonth, dueDate)
		switch {
		case errors.Is(err, errSkipTenant):
			result.Skipped++
		case err != nil:
			result.Failed++
			s.logger.Error("invoice generation failed",
				zap.Uint("tenant_id", tenant.ID),
				zap.String("billing_month", billingMonth),
				zap.Error(err),
			)
		default:
			result.Invoices = append(result.Invoices, invoice)
		}
	}
	result.Count = len(result.Invoices)

	s.logger.Info("monthly invoices generated",
		zap.String("billing_month", billingMonth),
		zap.Int("created", result.Count),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// generateForTenant runs in its own transaction. The (tenant, month) unique
// index turns a concurrent duplicate into a skip.
func (s *InvoiceService) generateForTenant(ctx context.Context, tenant *models.User, month string, dueDate time.Time) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		exists, err := tx.Invoices().ExistsForTenantMonth(ctx, tenant.ID, month)
		if err != nil {
			return err
		}
		if exists {
			return errSkipTenant
		}

		room, err := tx.Rooms().GetByID(ctx, *tenant.RoomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("tenant room not found, skipping",
					zap.Uint("tenant_id", tenant.ID),
					zap.Uint("room_id", *tenant.RoomID),
				)
				return errSkipTenant
			}
			return err
		}

		invoice = &models.Invoice{
			TenantID:       tenant.ID,
			RoomID:         room.ID,
			BillingMonth:   month,
			Amount:         room.MonthlyRent,
			DueDate:        dueDate,
			Status:         domain.InvoicePending,
			PaymentMethod:  domain.PaymentNone,
			ApprovalStatus: domain.ApprovalNone,
		}
		if err := tx.Invoices().Create(ctx, invoice); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errSkipTenant
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// Create adds a single invoice. A second invoice for the same tenant and
// month is a conflict.
func (s *InvoiceService) Create(ctx context.Context, input *CreateInvoiceInput) (*models.Invoice, error) {
	if _, err := domain.ParseBillingMonth(input.BillingMonth, s.loc); err != nil {
		return nil, err
	}
	if input.Amount < 0 {
		return nil, domain.ErrInvalidAmount
	}

	tenant, err := s.store.Users().GetByID(ctx, input.TenantID)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrTenantNotFound)
	}
	if tenant.Role != domain.RoleTenant {
		return nil, domain.ErrNotATenant
	}
	if _, err := s.store.Rooms().GetByID(ctx, input.RoomID); err != nil {
		return nil, notFoundAs(err, domain.ErrRoomNotFound)
	}

	exists, err := s.store.Invoices().ExistsForTenantMonth(ctx, input.TenantID, input.BillingMonth)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrInvoiceExists
	}

	invoice := &models.Invoice{
		TenantID:       input.TenantID,
		RoomID:         input.RoomID,
		BillingMonth:   input.BillingMonth,
		Amount:         input.Amount,
		DueDate:        input.DueDate,
		Status:         domain.InvoicePending,
		PaymentMethod:  domain.PaymentNone,
		ApprovalStatus: domain.ApprovalNone,
	}
	if err := s.store.Invoices().Create(ctx, invoice); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrInvoiceExists
		}
		return nil, err
	}
	return invoice, nil
}

// List lists invoices. Tenants only ever see their own.
func (s *InvoiceService) List(ctx context.Context, actor domain.Actor, filter repositories.InvoiceFilter, offset, limit int) ([]*models.Invoice, int64, error) {
	if !actor.IsAdmin() {
		filter.TenantID = ptr(actor.UserID)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.ErrInvalidInvoiceStatus
	}
	return s.store.Invoices().List(ctx, filter, offset, limit)
}

// Get returns an invoice visible to actor
func (s *InvoiceService) Get(ctx context.Context, actor domain.Actor, id uint) (*models.Invoice, error) {
	invoice, err := s.store.Invoices().GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrInvoiceNotFound)
	}
	if !actor.IsAdmin() && invoice.TenantID != actor.UserID {
		return nil, domain.ErrNotOwner
	}
	return invoice, nil
}

// CurrentPeriod returns the current billing month and its due date on dueDay
func (s *InvoiceService) CurrentPeriod(now time.Time, dueDay int) (string, time.Time) {
	now = now.In(s.loc)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	return domain.BillingMonthOf(start), domain.DefaultDueDate(start, dueDay)
}

// ResolvePeriod fills in a generation request. An empty month means the
// current one; an empty due date means dueDay of that month.
func (s *InvoiceService) ResolvePeriod(month, dueDate string, now time.Time, dueDay int) (string, time.Time, error) {
	if month == "" {
		current, due := s.CurrentPeriod(now, dueDay)
		if dueDate == "" {
			return current, due, nil
		}
		month = current
	}

	start, err := domain.ParseBillingMonth(month, s.loc)
	if err != nil {
		return "", time.Time{}, err
	}
	if dueDate == "" {
		return month, domain.DefaultDueDate(start, dueDay), nil
	}
	due, err := domain.ParseDate(dueDate, s.loc)
	if err != nil {
		return "", time.Time{}, err
	}
	return month, due, nil
}

// Location returns the business timezone
func (s *InvoiceService) Location() *time.Location {
	return s.loc
}
