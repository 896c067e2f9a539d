// Package gateway is the client for the hosted-invoice payment gateway (Xendit API).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("gateway api key not configured")

// PaymentMethods offered on the hosted invoice page
var PaymentMethods = []string{"CREDIT_CARD", "BCA", "BNI", "BRI", "MANDIRI", "QRIS", "OVO", "DANA", "LINKAJA"}

// Config holds gateway client settings
type Config struct {
	BaseURL         string
	APIKey          string
	InvoiceDuration time.Duration
	SuccessRedirect string
	FailureRedirect string
	Timeout         time.Duration
}

// CreateInvoiceRequest is the input for a hosted invoice
type CreateInvoiceRequest struct {
	ExternalID  string
	Amount      int64
	PayerEmail  string
	Description string
}

// Invoice is the gateway's hosted invoice
type Invoice struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
	InvoiceURL string `json:"invoice_url"`
	ExpiryDate string `json:"expiry_date"`
}

// Callback is the webhook body the gateway posts on invoice status changes
type Callback struct {
	ID             string `json:"id"`
	ExternalID     string `json:"external_id"`
	UserID         string `json:"user_id,omitempty"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount,omitempty"`
	PaidAmount     int64  `json:"paid_amount,omitempty"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	PaymentChannel string `json:"payment_channel,omitempty"`
	PaidAt         string `json:"paid_at,omitempty"`
}

// Callback statuses
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusExpired = "EXPIRED"
)

// XenditClient creates hosted invoices
type XenditClient struct {
	cfg    Config
	client *http.Client
}

// NewXenditClient creates a new gateway client
func NewXenditClient(cfg Config) *XenditClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.InvoiceDuration <= 0 {
		cfg.InvoiceDuration = 24 * time.Hour
	}
	return &XenditClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether an API key is configured
func (c *XenditClient) Enabled() bool {
	return c.cfg.APIKey != ""
}

type createInvoiceBody struct {
	ExternalID         string   `json:"external_id"`
	Amount             int64    `json:"amount"`
	PayerEmail         string   `json:"payer_email"`
	Description        string   `json:"description"`
	InvoiceDuration    int64    `json:"invoice_duration"`
	Currency           string   `json:"currency"`
	PaymentMethods     []string `json:"payment_methods"`
	SuccessRedirectURL string   `json:"success_redirect_url,omitempty"`
	FailureRedirectURL string   `json:"failure_redirect_url,omitempty"`
}

// CreateInvoice creates a hosted invoice in IDR
func (c *XenditClient) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(createInvoiceBody{
		ExternalID:         req.ExternalID,
		Amount:             req.Amount,
		PayerEmail:         req.PayerEmail,
		Description:        req.Description,
		InvoiceDuration:    int64(c.cfg.InvoiceDuration / time.Second),
		Currency:           "IDR",
		PaymentMethods:     PaymentMethods,
		SuccessRedirectURL: c.cfg.SuccessRedirect,
		FailureRedirectURL: c.cfg.FailureRedirect,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal invoice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/invoices", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create invoice request: %w", err)
	}
	httpReq.SetBasicAuth(c.cfg.APIKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(body))
	}

	var invoice Invoice
	if err := json.Unmarshal(body, &invoice); err != nil {
		return nil, fmt.Errorf("parse gateway response: %w", err)
	}
	if invoice.ID == "" || invoice.InvoiceURL == "" {
		return nil, fmt.Errorf("gateway response missing id or invoice_url")
	}

	return &invoice, nil
}
