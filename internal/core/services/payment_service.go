package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kost-management/internal/adapters/gateway"
	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/adapters/persistence/repositories"
	"kost-management/internal/adapters/storage"
	"kost-management/internal/core/domain"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// PaymentGateway creates hosted invoices
type PaymentGateway interface {
	Enabled() bool
	CreateInvoice(ctx context.Context, req gateway.CreateInvoiceRequest) (*gateway.Invoice, error)
}

// ProofStorage stores uploaded files and returns their URL
type ProofStorage interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// PaymentService runs the invoice payment state machine:
//
//	UNPAID / REJECTED --SubmitProof--> AWAITING_VERIFICATION
//	AWAITING_VERIFICATION --Approve--> PAID
//	AWAITING_VERIFICATION --Reject--> REJECTED
//	UNPAID / REJECTED / AWAITING_VERIFICATION --gateway PAID webhook--> PAID
//
// Every transition is written to the payment event log.
type PaymentService struct {
	store   repositories.Store
	gateway PaymentGateway
	proofs  ProofStorage
	seen    *cache.Cache
	now     func() time.Time
	logger  *zap.Logger
}

// NewPaymentService creates a new payment service. proofs may be nil, in
// which case the base64 proof is stored on the invoice as is.
func NewPaymentService(store repositories.Store, gw PaymentGateway, proofs ProofStorage, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		store:   store,
		gateway: gw,
		proofs:  proofs,
		seen:    cache.New(30*time.Minute, time.Hour),
		now:     time.Now,
		logger:  orNop(logger),
	}
}

// WebhookResult tells the gateway what happened to its callback
type WebhookResult struct {
	InvoiceID uint   `json:"invoice_id,omitempty"`
	Updated   bool   `json:"updated"`
	Message   string `json:"message"`
}

func (s *PaymentService) recordEvent(ctx context.Context, tx repositories.Store, invoice *models.Invoice, eventType domain.PaymentEventType, actorID *uint, from domain.PaymentState, note string, payload []byte) error {
	event := &models.PaymentEvent{
		InvoiceID:  invoice.ID,
		EventType:  eventType,
		ActorID:    actorID,
		FromStatus: from,
		ToStatus:   invoice.PaymentState(),
		Note:       note,
	}
	if len(payload) > 0 {
		event.Payload = datatypes.JSON(payload)
	}
	return tx.PaymentEvents().Create(ctx, event)
}

func lockInvoice(ctx context.Context, tx repositories.Store, id uint) (*models.Invoice, error) {
	invoice, err := tx.Invoices().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrInvoiceNotFound)
	}
	return invoice, nil
}

// SubmitProof attaches a proof of transfer and puts the invoice up for
// verification. Only the invoice owner may submit.
func (s *PaymentService) SubmitProof(ctx context.Context, actor domain.Actor, invoiceID uint, proof string) (*models.Invoice, error) {
	proof = strings.TrimSpace(proof)
	if proof == "" {
		return nil, domain.ErrEmptyProof
	}
	data, contentType, err := storage.DecodeBase64(proof)
	if err != nil {
		return nil, domain.ErrInvalidProof
	}

	invoice, err := s.store.Invoices().GetByID(ctx, invoiceID)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrInvoiceNotFound)
	}
	if invoice.TenantID != actor.UserID {
		return nil, domain.ErrNotOwner
	}
	if invoice.IsPaid() {
		return nil, domain.ErrInvoiceAlreadyPaid
	}

	reference := proof
	var uploaded string
	if s.proofs != nil {
		key := storage.ProofKey(invoice.ID, contentType)
		url, err := s.proofs.Upload(ctx, key, contentType, data)
		if err != nil {
			s.logger.Error("proof upload failed", zap.Uint("invoice_id", invoice.ID), zap.Error(err))
			return nil, domain.ErrStorageUnavailable
		}
		reference = url
		uploaded = key
	}

	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		locked, err := lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if locked.IsPaid() {
			return domain.ErrInvoiceAlreadyPaid
		}

		from := locked.PaymentState()
		locked.PaymentMethod = domain.PaymentManual
		locked.ApprovalStatus = domain.ApprovalPending
		locked.PaymentProof = &reference
		locked.RejectionReason = nil
		if err := tx.Invoices().Update(ctx, locked); err != nil {
			return err
		}
		invoice = locked
		return s.recordEvent(ctx, tx, locked, domain.EventProofSubmitted, &actor.UserID, from, "", nil)
	})
	if err != nil {
		if uploaded != "" {
			s.logger.Warn("proof object orphaned, invoice not updated",
				zap.Uint("invoice_id", invoiceID),
				zap.String("key", uploaded),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("payment proof submitted", zap.Uint("invoice_id", invoiceID), zap.Uint("tenant_id", actor.UserID))
	return invoice, nil
}

// Approve confirms a manual payment. Approving an already paid invoice
// returns it unchanged.
func (s *PaymentService) Approve(ctx context.Context, admin domain.Actor, invoiceID uint) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		locked, err := lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		invoice = locked
		if locked.IsPaid() {
			return nil
		}

		from := locked.PaymentState()
		if from != domain.StateAwaitingVerification {
			return domain.ErrNotAwaitingApproval
		}

		now := s.now()
		locked.Status = domain.InvoicePaid
		locked.ApprovalStatus = domain.ApprovalApproved
		locked.ApprovedBy = &admin.UserID
		locked.ApprovedAt = &now
		locked.PaidAt = &now
		if err := tx.Invoices().Update(ctx, locked); err != nil {
			return err
		}
		return s.recordEvent(ctx, tx, locked, domain.EventApproved, &admin.UserID, from, "", nil)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment approved", zap.Uint("invoice_id", invoiceID), zap.Uint("admin_id", admin.UserID))
	return invoice, nil
}

// Reject refuses a manual payment with a reason. The proof is cleared so
// the tenant can submit a new one.
func (s *PaymentService) Reject(ctx context.Context, admin domain.Actor, invoiceID uint, reason string) (*models.Invoice, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}

	var invoice *models.Invoice
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		locked, err := lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if locked.IsPaid() {
			return domain.ErrInvoiceAlreadyPaid
		}

		from := locked.PaymentState()
		if from != domain.StateAwaitingVerification {
			return domain.ErrNotAwaitingApproval
		}

		locked.ApprovalStatus = domain.ApprovalRejected
		locked.RejectionReason = &reason
		locked.PaymentProof = nil
		if err := tx.Invoices().Update(ctx, locked); err != nil {
			return err
		}
		invoice = locked
		return s.recordEvent(ctx, tx, locked, domain.EventRejected, &admin.UserID, from, reason, nil)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment rejected", zap.Uint("invoice_id", invoiceID), zap.Uint("admin_id", admin.UserID))
	return invoice, nil
}

// CreateGatewayPayment opens a hosted invoice at the gateway and stores its
// id and URL. The local status is unchanged until the gateway reports PAID.
func (s *PaymentService) CreateGatewayPayment(ctx context.Context, actor domain.Actor, invoiceID uint) (*models.Invoice, error) {
	if s.gateway == nil || !s.gateway.Enabled() {
		return nil, domain.ErrGatewayNotConfigured
	}

	invoice, err := s.store.Invoices().GetByID(ctx, invoiceID)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrInvoiceNotFound)
	}
	if !actor.IsAdmin() && invoice.TenantID != actor.UserID {
		return nil, domain.ErrNotOwner
	}
	if invoice.IsPaid() {
		return nil, domain.ErrInvoiceAlreadyPaid
	}

	tenant, err := s.store.Users().GetByID(ctx, invoice.TenantID)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrTenantNotFound)
	}
	if strings.TrimSpace(tenant.Email) == "" {
		return nil, domain.ErrTenantNoEmail
	}

	roomNumber := fmt.Sprint(invoice.RoomID)
	if room, err := s.store.Rooms().GetByID(ctx, invoice.RoomID); err == nil {
		roomNumber = room.Number
	}

	hosted, err := s.gateway.CreateInvoice(ctx, gateway.CreateInvoiceRequest{
		ExternalID:  domain.FormatExternalID(invoice.ID, s.now()),
		Amount:      invoice.Amount,
		PayerEmail:  tenant.Email,
		Description: fmt.Sprintf("Sewa kamar %s - %s", roomNumber, invoice.BillingMonth),
	})
	if err != nil {
		s.logger.Error("gateway invoice creation failed", zap.Uint("invoice_id", invoice.ID), zap.Error(err))
		if errors.Is(err, gateway.ErrNotConfigured) {
			return nil, domain.ErrGatewayNotConfigured
		}
		return nil, domain.ErrGatewayUnavailable
	}

	payload, _ := json.Marshal(hosted)
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		locked, err := lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if locked.IsPaid() {
			return domain.ErrInvoiceAlreadyPaid
		}

		from := locked.PaymentState()
		locked.GatewayInvoiceID = &hosted.ID
		locked.GatewayInvoiceURL = &hosted.InvoiceURL
		if err := tx.Invoices().Update(ctx, locked); err != nil {
			return err
		}
		invoice = locked
		return s.recordEvent(ctx, tx, locked, domain.EventGatewayLinkCreated, &actor.UserID, from, hosted.ExternalID, payload)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("gateway invoice created", zap.Uint("invoice_id", invoiceID), zap.String("gateway_id", hosted.ID))
	return invoice, nil
}

// HandleWebhook applies a gateway callback. Only PAID changes anything;
// replays of a callback already processed are acknowledged without work.
func (s *PaymentService) HandleWebhook(ctx context.Context, cb *gateway.Callback, raw []byte) (*WebhookResult, error) {
	status := strings.ToUpper(strings.TrimSpace(cb.Status))
	if status == "" {
		return nil, domain.ErrInvalidWebhookStatus
	}
	if status != gateway.StatusPaid {
		s.logger.Info("gateway callback acknowledged", zap.String("external_id", cb.ExternalID), zap.String("status", status))
		return &WebhookResult{Message: "status " + status + " acknowledged"}, nil
	}

	invoiceID, err := domain.ParseExternalID(cb.ExternalID)
	if err != nil {
		return nil, err
	}

	dedupeKey := cb.ID + "|" + cb.ExternalID + "|" + status
	if err := s.seen.Add(dedupeKey, true, cache.DefaultExpiration); err != nil {
		return &WebhookResult{InvoiceID: invoiceID, Message: "duplicate callback"}, nil
	}

	if len(raw) == 0 {
		raw, _ = json.Marshal(cb)
	}

	result := &WebhookResult{InvoiceID: invoiceID}
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		locked, err := lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if locked.IsPaid() {
			result.Message = "invoice already paid"
			return nil
		}

		if locked.GatewayInvoiceID != nil && cb.ID != "" && *locked.GatewayInvoiceID != cb.ID {
			s.logger.Warn("gateway id mismatch",
				zap.Uint("invoice_id", invoiceID),
				zap.String("stored", *locked.GatewayInvoiceID),
				zap.String("callback", cb.ID),
			)
		}

		paidAt := s.now()
		if cb.PaidAt != "" {
			if t, err := time.Parse(time.RFC3339, cb.PaidAt); err == nil {
				paidAt = t
			}
		}

		from := locked.PaymentState()
		locked.Status = domain.InvoicePaid
		locked.PaymentMethod = domain.PaymentGateway
		locked.PaidAt = &paidAt
		if locked.GatewayInvoiceID == nil && cb.ID != "" {
			locked.GatewayInvoiceID = ptr(cb.ID)
		}
		if err := tx.Invoices().Update(ctx, locked); err != nil {
			return err
		}
		if err := s.recordEvent(ctx, tx, locked, domain.EventGatewayPaid, nil, from, cb.ID, raw); err != nil {
			return err
		}

		result.Updated = true
		result.Message = "invoice marked as paid"
		return nil
	})
	if err != nil {
		s.seen.Delete(dedupeKey)
		return nil, err
	}

	s.logger.Info("gateway callback processed",
		zap.Uint("invoice_id", invoiceID),
		zap.Bool("updated", result.Updated),
	)
	return result, nil
}

// OverrideStatus force-sets the invoice status without approval bookkeeping
func (s *PaymentService) OverrideStatus(ctx context.Context, admin domain.Actor, invoiceID uint, status domain.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidInvoiceStatus
	}

	var invoice *models.Invoice
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		locked, err := lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}

		from := locked.PaymentState()
		locked.Status = status
		if status == domain.InvoicePaid {
			locked.PaidAt = ptr(s.now())
		} else {
			locked.PaidAt = nil
		}
		if err := tx.Invoices().Update(ctx, locked); err != nil {
			return err
		}
		invoice = locked
		return s.recordEvent(ctx, tx, locked, domain.EventStatusOverride, &admin.UserID, from, string(status), nil)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice status overridden", zap.Uint("invoice_id", invoiceID), zap.String("status", string(status)))
	return invoice, nil
}

// ListEvents returns the payment audit trail of an invoice visible to actor
func (s *PaymentService) ListEvents(ctx context.Context, actor domain.Actor, invoiceID uint) ([]*models.PaymentEvent, error) {
	invoice, err := s.store.Invoices().GetByID(ctx, invoiceID)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrInvoiceNotFound)
	}
	if !actor.IsAdmin() && invoice.TenantID != actor.UserID {
		return nil, domain.ErrNotOwner
	}
	return s.store.PaymentEvents().ListByInvoice(ctx, invoiceID)
}
