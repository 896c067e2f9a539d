package services

import (
	"context"
	"time"

	"kost-management/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronService schedules monthly invoice generation and daily reminders
type CronService struct {
	cron      *cron.Cron
	invoices  *InvoiceService
	reminders *ReminderService
	cfg       config.CronConfig
	logger    *zap.Logger
}

// NewCronService creates a new cron service running in the invoice
// service's timezone
func NewCronService(invoices *InvoiceService, reminders *ReminderService, cfg config.CronConfig, logger *zap.Logger) *CronService {
	return &CronService{
		cron:      cron.New(cron.WithLocation(invoices.Location())),
		invoices:  invoices,
		reminders: reminders,
		cfg:       cfg,
		logger:    orNop(logger),
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.InvoiceSpec, func() { s.RunMonthlyInvoices(context.Background()) }); err != nil {
		return err
	}
	if s.reminders != nil {
		if _, err := s.cron.AddFunc(s.cfg.ReminderSpec, func() { s.RunReminders(context.Background()) }); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("cron started",
		zap.String("invoice_spec", s.cfg.InvoiceSpec),
		zap.String("reminder_spec", s.cfg.ReminderSpec),
	)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron stopped")
}

// RunMonthlyInvoices generates invoices for the current month
func (s *CronService) RunMonthlyInvoices(ctx context.Context) {
	month, due := s.invoices.CurrentPeriod(time.Now(), s.cfg.InvoiceDueDay)
	if _, err := s.invoices.GenerateMonthly(ctx, month, due); err != nil {
		s.logger.Error("scheduled invoice generation failed", zap.String("billing_month", month), zap.Error(err))
	}
}

// RunReminders queues reminders for invoices that are due soon or overdue
func (s *CronService) RunReminders(ctx context.Context) {
	if _, err := s.reminders.EnqueueDueReminders(ctx); err != nil {
		s.logger.Error("scheduled reminders failed", zap.Error(err))
	}
}
