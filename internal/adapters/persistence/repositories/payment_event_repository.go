package repositories

import (
	"context"

	"kost-management/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type paymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository creates a new payment event repository
func NewPaymentEventRepository(db *gorm.DB) PaymentEventRepository {
	return &paymentEventRepository{db: db}
}

func (r *paymentEventRepository) Create(ctx context.Context, event *models.PaymentEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByInvoice returns the audit trail of an invoice, oldest first
func (r *paymentEventRepository) ListByInvoice(ctx context.Context, invoiceID uint) ([]*models.PaymentEvent, error) {
	var events []*models.PaymentEvent
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id ASC").
		Find(&events).Error
	return events, err
}
