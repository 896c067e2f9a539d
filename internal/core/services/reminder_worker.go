package services

import (
	"context"
	"errors"
	"time"

	"kost-management/internal/adapters/queue"

	"go.uber.org/zap"
)

// ReminderJobSource is the queue the worker consumes
type ReminderJobSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	DeadLetter(ctx context.Context, job *queue.Job, cause error) error
}

// ReminderWorker sends queued reminders. Each job is attempted once and
// failures go to the dead-letter list.
type ReminderWorker struct {
	jobs        ReminderJobSource
	reminders   *ReminderService
	pollTimeout time.Duration
	logger      *zap.Logger
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(jobs ReminderJobSource, reminders *ReminderService, logger *zap.Logger) *ReminderWorker {
	return &ReminderWorker{
		jobs:        jobs,
		reminders:   reminders,
		pollTimeout: 5 * time.Second,
		logger:      orNop(logger),
	}
}

// Run consumes jobs until ctx is cancelled
func (w *ReminderWorker) Run(ctx context.Context) error {
	w.logger.Info("reminder worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker stopped")
			return nil
		default:
		}

		job, err := w.jobs.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				continue
			}
			w.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		w.Process(ctx, job)
	}
}

// Process handles one job and reports whether the reminder was sent
func (w *ReminderWorker) Process(ctx context.Context, job *queue.Job) bool {
	payload, err := job.Reminder()
	if err == nil {
		err = w.reminders.SendReminder(ctx, payload.InvoiceID)
	}
	if err != nil {
		w.logger.Warn("reminder job failed", zap.String("job_id", job.ID), zap.Error(err))
		if dlqErr := w.jobs.DeadLetter(ctx, job, err); dlqErr != nil {
			w.logger.Error("dead letter failed", zap.String("job_id", job.ID), zap.Error(dlqErr))
		}
		return false
	}
	return true
}
