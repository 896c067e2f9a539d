package domain

// Role represents user role in the system
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTenant Role = "tenant"
)

// RoomStatus represents room occupancy
type RoomStatus string

const (
	RoomVacant   RoomStatus = "vacant"
	RoomOccupied RoomStatus = "occupied"
)

// InvoiceStatus is the payment status of an invoice
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
)

// Valid reports whether s is a known invoice status
func (s InvoiceStatus) Valid() bool {
	return s == InvoicePending || s == InvoicePaid
}

// PaymentMethod records how an invoice is being paid
type PaymentMethod string

const (
	PaymentNone    PaymentMethod = "none"
	PaymentManual  PaymentMethod = "manual"
	PaymentGateway PaymentMethod = "gateway"
)

// ApprovalStatus tracks admin verification of a manual payment.
// Only meaningful when the payment method is manual.
type ApprovalStatus string

const (
	ApprovalNone     ApprovalStatus = "none"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// PaymentState is the derived state of the payment state machine
type PaymentState string

const (
	StateUnpaid               PaymentState = "UNPAID"
	StateAwaitingVerification PaymentState = "AWAITING_VERIFICATION"
	StateRejected             PaymentState = "REJECTED"
	StatePaid                 PaymentState = "PAID"
)

// DerivePaymentState maps the stored invoice columns onto the state machine
func DerivePaymentState(status InvoiceStatus, method PaymentMethod, approval ApprovalStatus) PaymentState {
	if status == InvoicePaid {
		return StatePaid
	}
	if method == PaymentManual {
		switch approval {
		case ApprovalPending:
			return StateAwaitingVerification
		case ApprovalRejected:
			return StateRejected
		}
	}
	return StateUnpaid
}

// IssueStatus is the state of a reported issue
type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
)

// Valid reports whether s is a known issue status
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueResolved:
		return true
	}
	return false
}

// IssuePriority ranks reported issues
type IssuePriority string

const (
	PriorityLow    IssuePriority = "low"
	PriorityMedium IssuePriority = "medium"
	PriorityHigh   IssuePriority = "high"
)

// Valid reports whether p is a known priority
func (p IssuePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// PaymentEventType labels payment audit rows
type PaymentEventType string

const (
	EventProofSubmitted     PaymentEventType = "proof_submitted"
	EventApproved           PaymentEventType = "approved"
	EventRejected           PaymentEventType = "rejected"
	EventGatewayLinkCreated PaymentEventType = "gateway_link_created"
	EventGatewayPaid        PaymentEventType = "gateway_paid"
	EventStatusOverride     PaymentEventType = "status_override"
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID uint
	Role   Role
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
