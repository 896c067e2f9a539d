package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"kost-management/internal/adapters/gateway"
	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/adapters/whatsapp"
	"kost-management/internal/testutil"

	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (repositories.Store, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return repositories.NewStore(db), db
}

type fakeGateway struct {
	enabled bool
	err     error
	calls   []gateway.CreateInvoiceRequest
}

func (f *fakeGateway) Enabled() bool { return f.enabled }

func (f *fakeGateway) CreateInvoice(_ context.Context, req gateway.CreateInvoiceRequest) (*gateway.Invoice, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &gateway.Invoice{
		ID:         "xnd_1",
		ExternalID: req.ExternalID,
		Status:     gateway.StatusPending,
		Amount:     req.Amount,
		InvoiceURL: "https://checkout.example/xnd_1",
	}, nil
}

type fakeStorage struct {
	keys     []string
	err      error
	onUpload func()
}

func (f *fakeStorage) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.onUpload != nil {
		f.onUpload()
	}
	f.keys = append(f.keys, key)
	return "https://bucket.example/" + key, nil
}

type sentMessage struct {
	phone   string
	message string
}

type fakeSender struct {
	mu     sync.Mutex
	fail   bool
	status whatsapp.Status
	sent   []sentMessage
}

func (f *fakeSender) Send(_ context.Context, phone, message string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false, errors.New("bridge offline")
	}
	f.sent = append(f.sent, sentMessage{phone: phone, message: message})
	return true, nil
}

func (f *fakeSender) Status(context.Context) whatsapp.Status { return f.status }

type fakeQueue struct {
	ids []uint
	err error
}

func (f *fakeQueue) EnqueueReminder(_ context.Context, invoiceID uint) error {
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, invoiceID)
	return nil
}
