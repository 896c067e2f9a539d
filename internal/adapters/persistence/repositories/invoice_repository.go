package repositories

import (
	"context"
	"time"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// invoiceRepository implements InvoiceRepository interface
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create inserts an invoice. A second invoice for the same tenant and month
// fails with gorm.ErrDuplicatedKey.
func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(invoice).Error
}

// GetByID gets an invoice by ID
func (r *invoiceRepository) GetByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByIDForUpdate gets an invoice and locks the row until the transaction ends
func (r *invoiceRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByTenantAndMonth gets the invoice of a tenant for a billing month
func (r *invoiceRepository) GetByTenantAndMonth(ctx context.Context, tenantID uint, month string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND billing_month = ?", tenantID, month).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ExistsForTenantMonth checks if a tenant already has an invoice for month
func (r *invoiceRepository) ExistsForTenantMonth(ctx context.Context, tenantID uint, month string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("tenant_id = ? AND billing_month = ?", tenantID, month).
		Count(&count).Error
	return count > 0, err
}

// List lists invoices matching filter, newest billing month first
func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter, offset, limit int) ([]*models.Invoice, int64, error) {
	var invoices []*models.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Invoice{})
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BillingMonth != "" {
		query = query.Where("billing_month = ?", filter.BillingMonth)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Room").
		Order("billing_month DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

// ListUnpaidDueBefore lists pending invoices due before the given time,
// with tenant and room loaded for reminder messages
func (r *invoiceRepository) ListUnpaidDueBefore(ctx context.Context, before time.Time) ([]*models.Invoice, error) {
	var invoices []*models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Preload("Room").
		Where("status = ? AND due_date < ?", domain.InvoicePending, before).
		Where("NOT (payment_method = ? AND approval_status = ?)", domain.PaymentManual, domain.ApprovalPending).
		Order("due_date ASC").
		Find(&invoices).Error
	return invoices, err
}

// Update saves all invoice columns, including nil ones
func (r *invoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(invoice).Error
}

// CountByStatus counts invoices by payment status
func (r *invoiceRepository) CountByStatus(ctx context.Context, status domain.InvoiceStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountAwaitingVerification counts manual payments waiting for admin review
func (r *invoiceRepository) CountAwaitingVerification(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("payment_method = ? AND approval_status = ? AND status = ?",
			domain.PaymentManual, domain.ApprovalPending, domain.InvoicePending).
		Count(&count).Error
	return count, err
}

// SumPaidByMonth sums paid invoice amounts per billing month.
// Every requested month is present in the result, zero when nothing was paid.
func (r *invoiceRepository) SumPaidByMonth(ctx context.Context, months []string) (map[string]int64, error) {
	result := make(map[string]int64, len(months))
	for _, m := range months {
		result[m] = 0
	}
	if len(months) == 0 {
		return result, nil
	}

	var rows []struct {
		BillingMonth string
		Total        int64
	}
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("billing_month, COALESCE(SUM(amount), 0) AS total").
		Where("status = ? AND billing_month IN ?", domain.InvoicePaid, months).
		Group("billing_month").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.BillingMonth] = row.Total
	}
	return result, nil
}
