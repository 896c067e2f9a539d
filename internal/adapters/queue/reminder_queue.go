// Package queue moves reminder jobs through Redis lists.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// JobType identifies the job kind
type JobType string

const JobTypePaymentReminder JobType = "payment_reminder"

// ReminderPayload is the payload of a payment reminder job
type ReminderPayload struct {
	InvoiceID uint `json:"invoice_id"`
}

// Job is a generic job envelope
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	Error     string          `json:"error,omitempty"`
}

// Reminder decodes the job payload as a reminder
func (j *Job) Reminder() (ReminderPayload, error) {
	var p ReminderPayload
	if j.Type != JobTypePaymentReminder {
		return p, fmt.Errorf("unexpected job type %q", j.Type)
	}
	err := json.Unmarshal(j.Payload, &p)
	return p, err
}

// ReminderQueue enqueues and dequeues reminder jobs
type ReminderQueue struct {
	client *redis.Client
	key    string
	dlq    string
	logger *zap.Logger
}

// NewReminderQueue creates a Redis-backed reminder queue on list key
func NewReminderQueue(client *redis.Client, key string, logger *zap.Logger) *ReminderQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderQueue{client: client, key: key, dlq: key + ":dlq", logger: logger}
}

// NewRedisClient creates a client and checks the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// EnqueueReminder pushes a reminder job for an invoice
func (q *ReminderQueue) EnqueueReminder(ctx context.Context, invoiceID uint) error {
	body, err := json.Marshal(ReminderPayload{InvoiceID: invoiceID})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.NewString(),
		Type:      JobTypePaymentReminder,
		Payload:   body,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued reminder job", zap.String("job_id", job.ID), zap.Uint("invoice_id", invoiceID))
	return nil
}

// Dequeue waits up to timeout for a job. It returns nil when none arrived.
func (q *ReminderQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, nil
	}
	return &job, nil
}

// DeadLetter moves a failed job to the dead-letter list. Jobs are not retried.
func (q *ReminderQueue) DeadLetter(ctx context.Context, job *Job, cause error) error {
	if cause != nil {
		job.Error = cause.Error()
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.client.RPush(ctx, q.dlq, raw).Err(); err != nil {
		q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
		return err
	}
	q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.String("error", job.Error))
	return nil
}
