package services

import (
	"context"
	"time"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/adapters/whatsapp"
	"kost-management/internal/core/domain"

	"go.uber.org/zap"
)

// MessageSender delivers WhatsApp messages
type MessageSender interface {
	Send(ctx context.Context, phone, message string) (bool, error)
	Status(ctx context.Context) whatsapp.Status
}

// ReminderEnqueuer hands reminders to a background worker
type ReminderEnqueuer interface {
	EnqueueReminder(ctx context.Context, invoiceID uint) error
}

// ReminderService sends payment reminders to tenants
type ReminderService struct {
	store      repositories.Store
	sender     MessageSender
	queue      ReminderEnqueuer
	daysBefore int
	now        func() time.Time
	logger     *zap.Logger
}

// NewReminderService creates a new reminder service. When queue is nil,
// scheduled reminders are sent inline.
func NewReminderService(store repositories.Store, sender MessageSender, queue ReminderEnqueuer, daysBefore int, logger *zap.Logger) *ReminderService {
	if daysBefore < 0 {
		daysBefore = 0
	}
	return &ReminderService{
		store:      store,
		sender:     sender,
		queue:      queue,
		daysBefore: daysBefore,
		now:        time.Now,
		logger:     orNop(logger),
	}
}

// WithClock sets the clock that decides which calendar day a reminder
// pass runs on. Its location is the business time zone.
func (s *ReminderService) WithClock(now func() time.Time) *ReminderService {
	if now != nil {
		s.now = now
	}
	return s
}

// ReminderRun summarizes a scheduled reminder pass
type ReminderRun struct {
	Selected int `json:"selected"`
	Queued   int `json:"queued"`
	Sent     int `json:"sent"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// SendReminder sends a reminder for one unpaid invoice
func (s *ReminderService) SendReminder(ctx context.Context, invoiceID uint) error {
	invoice, err := s.store.Invoices().GetByID(ctx, invoiceID)
	if err != nil {
		return notFoundAs(err, domain.ErrInvoiceNotFound)
	}
	if invoice.IsPaid() {
		return domain.ErrInvoiceAlreadyPaid
	}

	tenant, err := s.store.Users().GetByID(ctx, invoice.TenantID)
	if err != nil {
		return notFoundAs(err, domain.ErrTenantNotFound)
	}
	room, err := s.store.Rooms().GetByID(ctx, invoice.RoomID)
	if err != nil {
		return notFoundAs(err, domain.ErrRoomNotFound)
	}
	return s.dispatch(ctx, invoice, tenant, room)
}

func (s *ReminderService) dispatch(ctx context.Context, invoice *models.Invoice, tenant *models.User, room *models.Room) error {
	if tenant.Phone == "" {
		return domain.ErrTenantNoPhone
	}

	message := whatsapp.PaymentReminder(tenant.Name, room.Number, invoice.Amount, invoice.DueDate.In(s.now().Location()))
	ok, err := s.sender.Send(ctx, tenant.Phone, message)
	if err != nil || !ok {
		s.logger.Warn("reminder not delivered",
			zap.Uint("invoice_id", invoice.ID),
			zap.Uint("tenant_id", tenant.ID),
			zap.Error(err),
		)
		return domain.ErrReminderFailed
	}

	s.logger.Info("reminder sent", zap.Uint("invoice_id", invoice.ID), zap.Uint("tenant_id", tenant.ID))
	return nil
}

// EnqueueDueReminders selects unpaid invoices that are overdue or due within
// the configured number of days, and queues or sends a reminder for each.
func (s *ReminderService) EnqueueDueReminders(ctx context.Context) (*ReminderRun, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, s.daysBefore+1)

	invoices, err := s.store.Invoices().ListUnpaidDueBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	run := &ReminderRun{Selected: len(invoices)}
	for _, invoice := range invoices {
		if invoice.Tenant == nil || invoice.Room == nil || invoice.Tenant.Phone == "" {
			run.Skipped++
			continue
		}

		if s.queue != nil {
			if err := s.queue.EnqueueReminder(ctx, invoice.ID); err != nil {
				run.Failed++
				s.logger.Error("enqueue reminder failed", zap.Uint("invoice_id", invoice.ID), zap.Error(err))
				continue
			}
			run.Queued++
			continue
		}

		if err := s.dispatch(ctx, invoice, invoice.Tenant, invoice.Room); err != nil {
			run.Failed++
			continue
		}
		run.Sent++
	}

	s.logger.Info("due reminders processed",
		zap.Int("selected", run.Selected),
		zap.Int("queued", run.Queued),
		zap.Int("sent", run.Sent),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", run.Failed),
	)
	return run, nil
}

// Status reports the WhatsApp bot state
func (s *ReminderService) Status(ctx context.Context) whatsapp.Status {
	return s.sender.Status(ctx)
}
