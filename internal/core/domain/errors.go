package domain

import "errors"

// Error kinds. Every domain error unwraps to exactly one of these so the
// HTTP layer can classify it without knowing the specific error.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrExternal     = errors.New("external dependency failure")
)

// kindError is a sentinel with a human-readable message that unwraps to its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// NewError creates a sentinel error of the given kind.
func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Auth errors
var (
	ErrInvalidCredentials = NewError(ErrUnauthorized, "invalid email or password")
	ErrEmailAlreadyExists = NewError(ErrConflict, "email already registered")
	ErrAdminRequired      = NewError(ErrForbidden, "admin access required")
	ErrNotOwner           = NewError(ErrForbidden, "access denied")
	ErrWeakPassword       = NewError(ErrValidation, "password must be at least 8 characters")
	ErrMissingFields      = NewError(ErrValidation, "name, email, phone and password are required")
	ErrInvalidEmail       = NewError(ErrValidation, "invalid email address")
	ErrOldPasswordWrong   = NewError(ErrValidation, "old password is incorrect")
	ErrUserNotFound       = NewError(ErrNotFound, "user not found")
)

// Room errors
var (
	ErrRoomNotFound       = NewError(ErrNotFound, "room not found")
	ErrRoomNumberTaken    = NewError(ErrConflict, "room number already exists")
	ErrRoomOccupied       = NewError(ErrConflict, "room is already occupied")
	ErrRoomDeleteOccupied = NewError(ErrConflict, "cannot delete an occupied room")
	ErrInvalidRoomNumber  = NewError(ErrValidation, "room number must be 1-10 characters")
	ErrInvalidRent        = NewError(ErrValidation, "monthly rent must not be negative")
)

// Tenant errors
var (
	ErrTenantNotFound = NewError(ErrNotFound, "tenant not found")
	ErrTenantHasRoom  = NewError(ErrConflict, "tenant already has a room")
	ErrTenantNoRoom   = NewError(ErrValidation, "tenant is not assigned to any room")
	ErrTenantNoPhone  = NewError(ErrValidation, "tenant phone number not found")
	ErrTenantNoEmail  = NewError(ErrValidation, "tenant email is incomplete")
	ErrNotATenant     = NewError(ErrValidation, "user is not a tenant")
)

// Invoice and payment errors
var (
	ErrInvoiceNotFound      = NewError(ErrNotFound, "invoice not found")
	ErrInvoiceExists        = NewError(ErrConflict, "invoice for this month already exists")
	ErrInvoiceAlreadyPaid   = NewError(ErrConflict, "invoice already paid")
	ErrNotAwaitingApproval  = NewError(ErrConflict, "invoice is not awaiting payment verification")
	ErrInvalidBillingMonth  = NewError(ErrValidation, "billing month must be formatted as YYYY-MM")
	ErrInvalidAmount        = NewError(ErrValidation, "amount must not be negative")
	ErrInvalidInvoiceStatus = NewError(ErrValidation, "invalid invoice status")
	ErrEmptyProof           = NewError(ErrValidation, "payment proof is required")
	ErrInvalidProof         = NewError(ErrValidation, "payment proof must be base64 encoded")
	ErrReasonRequired       = NewError(ErrValidation, "rejection reason is required")
	ErrInvalidExternalID    = NewError(ErrValidation, "invalid external_id format")
	ErrInvalidWebhookStatus = NewError(ErrValidation, "invalid webhook status")
	ErrGatewayNotConfigured = NewError(ErrExternal, "payment gateway is not configured, contact the admin")
	ErrGatewayUnavailable   = NewError(ErrExternal, "payment gateway request failed")
)

// Issue errors
var (
	ErrIssueNotFound        = NewError(ErrNotFound, "issue not found")
	ErrInvalidIssueStatus   = NewError(ErrValidation, "invalid issue status")
	ErrInvalidIssuePriority = NewError(ErrValidation, "invalid issue priority")
	ErrIssueTitleRequired   = NewError(ErrValidation, "title and description are required")
)

// Messaging and storage errors
var (
	ErrReminderFailed       = NewError(ErrExternal, "failed to send reminder, make sure the WhatsApp bot is connected")
	ErrStorageNotConfigured = NewError(ErrExternal, "file storage is not configured")
	ErrStorageUnavailable   = NewError(ErrExternal, "file storage request failed")
	ErrInvalidUpload        = NewError(ErrValidation, "key and base64 data are required")
)
