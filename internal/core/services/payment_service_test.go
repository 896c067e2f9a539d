package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"kost-management/internal/adapters/gateway"
	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/core/domain"
	"kost-management/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

const proofPNG = "data:image/png;base64,iVBORw0KGgo="

type paymentFixture struct {
	svc     *PaymentService
	db      *gorm.DB
	invoice *models.Invoice
	tenant  domain.Actor
	admin   domain.Actor
}

func newPaymentFixture(t *testing.T, gw PaymentGateway, proofs ProofStorage) *paymentFixture {
	t.Helper()
	store, db := newTestStore(t)
	room := testutil.CreateRoom(t, db, "101", 1500000)
	tenant := testutil.CreateTenantInRoom(t, db, "budi", room)
	admin := testutil.CreateUser(t, db, "admin", domain.RoleAdmin)

	svc := NewPaymentService(store, gw, proofs, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC) }

	return &paymentFixture{
		svc:     svc,
		db:      db,
		invoice: testutil.CreateInvoice(t, db, tenant, room, "2025-03", 1500000),
		tenant:  domain.Actor{UserID: tenant.ID, Role: domain.RoleTenant},
		admin:   domain.Actor{UserID: admin.ID, Role: domain.RoleAdmin},
	}
}

func (f *paymentFixture) events(t *testing.T) []domain.PaymentEventType {
	t.Helper()
	events, err := f.svc.ListEvents(context.Background(), f.admin, f.invoice.ID)
	require.NoError(t, err)
	types := make([]domain.PaymentEventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	return types
}

func TestPaymentService_ManualFlow(t *testing.T) {
	f := newPaymentFixture(t, nil, nil)
	ctx := context.Background()
	id := f.invoice.ID

	inv, err := f.svc.SubmitProof(ctx, f.tenant, id, proofPNG)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingVerification, inv.PaymentState())
	require.NotNil(t, inv.PaymentProof)
	assert.Equal(t, proofPNG, *inv.PaymentProof)

	inv, err = f.svc.Reject(ctx, f.admin, id, "blurry photo")
	require.NoError(t, err)
	assert.Equal(t, domain.StateRejected, inv.PaymentState())
	assert.Nil(t, inv.PaymentProof)
	require.NotNil(t, inv.RejectionReason)
	assert.Equal(t, "blurry photo", *inv.RejectionReason)

	inv, err = f.svc.SubmitProof(ctx, f.tenant, id, proofPNG)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingVerification, inv.PaymentState())
	assert.Nil(t, inv.RejectionReason)

	inv, err = f.svc.Approve(ctx, f.admin, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePaid, inv.PaymentState())
	assert.Equal(t, domain.ApprovalApproved, inv.ApprovalStatus)
	require.NotNil(t, inv.ApprovedBy)
	assert.Equal(t, f.admin.UserID, *inv.ApprovedBy)
	require.NotNil(t, inv.PaidAt)

	again, err := f.svc.Approve(ctx, f.admin, id)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, again.Status)

	_, err = f.svc.SubmitProof(ctx, f.tenant, id, proofPNG)
	assert.ErrorIs(t, err, domain.ErrInvoiceAlreadyPaid)

	assert.Equal(t, []domain.PaymentEventType{
		domain.EventProofSubmitted,
		domain.EventRejected,
		domain.EventProofSubmitted,
		domain.EventApproved,
	}, f.events(t))
}

func TestPaymentService_RejectRequiresReason(t *testing.T) {
	f := newPaymentFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.svc.SubmitProof(ctx, f.tenant, f.invoice.ID, proofPNG)
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, f.admin, f.invoice.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	var stored models.Invoice
	require.NoError(t, f.db.First(&stored, f.invoice.ID).Error)
	assert.Equal(t, domain.ApprovalPending, stored.ApprovalStatus)
	assert.NotNil(t, stored.PaymentProof)
}

func TestPaymentService_ApproveRequiresPendingProof(t *testing.T) {
	f := newPaymentFixture(t, nil, nil)

	_, err := f.svc.Approve(context.Background(), f.admin, f.invoice.ID)
	assert.ErrorIs(t, err, domain.ErrNotAwaitingApproval)

	_, err = f.svc.Reject(context.Background(), f.admin, f.invoice.ID, "no proof")
	assert.ErrorIs(t, err, domain.ErrNotAwaitingApproval)

	_, err = f.svc.Approve(context.Background(), f.admin, 999)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestPaymentService_SubmitProofValidation(t *testing.T) {
	f := newPaymentFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.svc.SubmitProof(ctx, f.tenant, f.invoice.ID, "")
	assert.ErrorIs(t, err, domain.ErrEmptyProof)

	_, err = f.svc.SubmitProof(ctx, f.tenant, f.invoice.ID, "not base64!!")
	assert.ErrorIs(t, err, domain.ErrInvalidProof)

	stranger := domain.Actor{UserID: f.tenant.UserID + 100, Role: domain.RoleTenant}
	_, err = f.svc.SubmitProof(ctx, stranger, f.invoice.ID, proofPNG)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestPaymentService_SubmitProofUploadsToStorage(t *testing.T) {
	proofs := &fakeStorage{}
	f := newPaymentFixture(t, nil, proofs)

	inv, err := f.svc.SubmitProof(context.Background(), f.tenant, f.invoice.ID, proofPNG)
	require.NoError(t, err)
	require.Len(t, proofs.keys, 1)
	require.NotNil(t, inv.PaymentProof)
	assert.True(t, strings.HasPrefix(*inv.PaymentProof, "https://bucket.example/"))
}

func TestPaymentService_SubmitProofStorageFailure(t *testing.T) {
	f := newPaymentFixture(t, nil, &fakeStorage{err: errors.New("s3 down")})

	_, err := f.svc.SubmitProof(context.Background(), f.tenant, f.invoice.ID, proofPNG)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	var stored models.Invoice
	require.NoError(t, f.db.First(&stored, f.invoice.ID).Error)
	assert.Equal(t, domain.PaymentNone, stored.PaymentMethod)
}

func TestPaymentService_SubmitProofPaidDuringUpload(t *testing.T) {
	proofs := &fakeStorage{}
	f := newPaymentFixture(t, nil, proofs)
	core, logs := observer.New(zap.WarnLevel)
	f.svc.logger = zap.New(core)

	proofs.onUpload = func() {
		f.invoice.Status = domain.InvoicePaid
		require.NoError(t, f.db.Save(f.invoice).Error)
	}

	_, err := f.svc.SubmitProof(context.Background(), f.tenant, f.invoice.ID, proofPNG)
	assert.ErrorIs(t, err, domain.ErrInvoiceAlreadyPaid)
	require.Len(t, proofs.keys, 1)

	var stored models.Invoice
	require.NoError(t, f.db.First(&stored, f.invoice.ID).Error)
	assert.Nil(t, stored.PaymentProof)
	assert.Equal(t, domain.PaymentNone, stored.PaymentMethod)

	orphaned := logs.FilterMessage("proof object orphaned, invoice not updated").All()
	require.Len(t, orphaned, 1)
	assert.Equal(t, proofs.keys[0], orphaned[0].ContextMap()["key"])
}

func TestPaymentService_CreateGatewayPayment(t *testing.T) {
	gw := &fakeGateway{enabled: true}
	f := newPaymentFixture(t, gw, nil)

	inv, err := f.svc.CreateGatewayPayment(context.Background(), f.tenant, f.invoice.ID)
	require.NoError(t, err)
	require.NotNil(t, inv.GatewayInvoiceURL)
	assert.Equal(t, "https://checkout.example/xnd_1", *inv.GatewayInvoiceURL)
	assert.Equal(t, domain.InvoicePending, inv.Status)

	require.Len(t, gw.calls, 1)
	assert.Equal(t, int64(1500000), gw.calls[0].Amount)
	assert.Contains(t, gw.calls[0].Description, "101")
	id, err := domain.ParseExternalID(gw.calls[0].ExternalID)
	require.NoError(t, err)
	assert.Equal(t, f.invoice.ID, id)

	assert.Equal(t, []domain.PaymentEventType{domain.EventGatewayLinkCreated}, f.events(t))
}

func TestPaymentService_CreateGatewayPaymentErrors(t *testing.T) {
	f := newPaymentFixture(t, nil, nil)
	_, err := f.svc.CreateGatewayPayment(context.Background(), f.tenant, f.invoice.ID)
	assert.ErrorIs(t, err, domain.ErrGatewayNotConfigured)

	f = newPaymentFixture(t, &fakeGateway{enabled: false}, nil)
	_, err = f.svc.CreateGatewayPayment(context.Background(), f.tenant, f.invoice.ID)
	assert.ErrorIs(t, err, domain.ErrGatewayNotConfigured)

	f = newPaymentFixture(t, &fakeGateway{enabled: true, err: errors.New("502")}, nil)
	_, err = f.svc.CreateGatewayPayment(context.Background(), f.tenant, f.invoice.ID)
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	assert.ErrorIs(t, err, domain.ErrExternal)
}

func TestPaymentService_HandleWebhookPaid(t *testing.T) {
	f := newPaymentFixture(t, nil, nil)
	ctx := context.Background()
	cb := &gateway.Callback{
		ID:         "xnd_9",
		ExternalID: domain.FormatExternalID(f.invoice.ID, time.Now()),
		Status:     "PAID",
		PaidAt:     "2025-03-06T08:00:00Z",
	}

	result, err := f.svc.HandleWebhook(ctx, cb, nil)
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.Equal(t, f.invoice.ID, result.InvoiceID)

	var stored models.Invoice
	require.NoError(t, f.db.First(&stored, f.invoice.ID).Error)
	assert.Equal(t, domain.InvoicePaid, stored.Status)
	assert.Equal(t, domain.PaymentGateway, stored.PaymentMethod)
	require.NotNil(t, stored.PaidAt)
	assert.True(t, stored.PaidAt.Equal(time.Date(2025, 3, 6, 8, 0, 0, 0, time.UTC)))
	require.NotNil(t, stored.GatewayInvoiceID)
	assert.Equal(t, "xnd_9", *stored.GatewayInvoiceID)

	replay, err := f.svc.HandleWebhook(ctx, cb, nil)
	require.NoError(t, err)
	assert.False(t, replay.Updated)

	assert.Equal(t, []domain.PaymentEventType{domain.EventGatewayPaid}, f.events(t))
}

func TestPaymentService_HandleWebhookAlreadyPaid(t *testing.T) {
	f := newPaymentFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.svc.OverrideStatus(ctx, f.admin, f.invoice.ID, domain.InvoicePaid)
	require.NoError(t, err)

	result, err := f.svc.HandleWebhook(ctx, &gateway.Callback{
		ID:         "xnd_1",
		ExternalID: domain.FormatExternalID(f.invoice.ID, time.Now()),
		Status:     "PAID",
	}, nil)
	require.NoError(t, err)
	assert.False(t, result.Updated)
	assert.Equal(t, "invoice already paid", result.Message)
}

func TestPaymentService_HandleWebhookRejectsBadInput(t *testing.T) {
	f := newPaymentFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.svc.HandleWebhook(ctx, &gateway.Callback{ExternalID: "INV-abc", Status: "PAID"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidExternalID)

	_, err = f.svc.HandleWebhook(ctx, &gateway.Callback{ExternalID: "INV-1-1"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidWebhookStatus)

	_, err = f.svc.HandleWebhook(ctx, &gateway.Callback{ExternalID: "INV-999-1", Status: "PAID"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestPaymentService_HandleWebhookPendingIsAcknowledged(t *testing.T) {
	f := newPaymentFixture(t, nil, nil)

	result, err := f.svc.HandleWebhook(context.Background(), &gateway.Callback{
		ExternalID: domain.FormatExternalID(f.invoice.ID, time.Now()),
		Status:     "pending",
	}, nil)
	require.NoError(t, err)
	assert.False(t, result.Updated)

	var stored models.Invoice
	require.NoError(t, f.db.First(&stored, f.invoice.ID).Error)
	assert.Equal(t, domain.InvoicePending, stored.Status)
	assert.Empty(t, f.events(t))
}

func TestPaymentService_OverrideStatus(t *testing.T) {
	f := newPaymentFixture(t, nil, nil)
	ctx := context.Background()

	inv, err := f.svc.OverrideStatus(ctx, f.admin, f.invoice.ID, domain.InvoicePaid)
	require.NoError(t, err)
	assert.NotNil(t, inv.PaidAt)

	inv, err = f.svc.OverrideStatus(ctx, f.admin, f.invoice.ID, domain.InvoicePending)
	require.NoError(t, err)
	assert.Nil(t, inv.PaidAt)

	_, err = f.svc.OverrideStatus(ctx, f.admin, f.invoice.ID, "refunded")
	assert.ErrorIs(t, err, domain.ErrInvalidInvoiceStatus)

	_, err = f.svc.ListEvents(ctx, domain.Actor{UserID: 12345, Role: domain.RoleTenant}, f.invoice.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}
