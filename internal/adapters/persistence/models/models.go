package models

import (
	"time"

	"kost-management/internal/core/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User represents users table (admins and tenants)
type User struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	AuthIdentity   string      `gorm:"uniqueIndex;size:64;not null" json:"auth_identity"`
	Name           string      `gorm:"size:100;not null" json:"name"`
	Email          string      `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone          string      `gorm:"size:20" json:"phone"`
	Password       string      `gorm:"size:255;not null" json:"-"`
	Role           domain.Role `gorm:"size:20;not null;default:'tenant';index" json:"role"`
	RoomID         *uint       `gorm:"index" json:"room_id"`
	LastSignedInAt *time.Time  `json:"last_signed_in_at"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Role      domain.Role `json:"role"`
	RoomID    *uint       `json:"room_id"`
	CreatedAt time.Time   `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		RoomID:    u.RoomID,
		CreatedAt: u.CreatedAt,
	}
}

// Room represents rooms table
type Room struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Number      string            `gorm:"uniqueIndex;size:10;not null" json:"number"`
	Status      domain.RoomStatus `gorm:"size:20;not null;default:'vacant';index" json:"status"`
	TenantID    *uint             `gorm:"index" json:"tenant_id"`
	MonthlyRent int64             `gorm:"not null" json:"monthly_rent"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Room) TableName() string {
	return "rooms"
}

// IsOccupied reports whether the room has a tenant
func (r *Room) IsOccupied() bool {
	return r.Status == domain.RoomOccupied
}

// Invoice represents invoices table.
// One row per tenant per billing month, enforced by idx_invoice_tenant_month.
type Invoice struct {
	ID                uint                  `gorm:"primaryKey" json:"id"`
	TenantID          uint                  `gorm:"not null;uniqueIndex:idx_invoice_tenant_month,priority:1" json:"tenant_id"`
	RoomID            uint                  `gorm:"not null;index" json:"room_id"`
	BillingMonth      string                `gorm:"size:7;not null;uniqueIndex:idx_invoice_tenant_month,priority:2;index" json:"billing_month"`
	Amount            int64                 `gorm:"not null" json:"amount"`
	DueDate           time.Time             `gorm:"not null" json:"due_date"`
	PaidAt            *time.Time            `json:"paid_at"`
	Status            domain.InvoiceStatus  `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentMethod     domain.PaymentMethod  `gorm:"size:20;not null;default:'none'" json:"payment_method"`
	ApprovalStatus    domain.ApprovalStatus `gorm:"size:20;not null;default:'none'" json:"approval_status"`
	PaymentProof      *string               `gorm:"type:text" json:"payment_proof,omitempty"`
	RejectionReason   *string               `gorm:"type:text" json:"rejection_reason,omitempty"`
	ApprovedBy        *uint                 `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time            `json:"approved_at,omitempty"`
	GatewayInvoiceID  *string               `gorm:"size:100;index" json:"gateway_invoice_id,omitempty"`
	GatewayInvoiceURL *string               `gorm:"size:255" json:"gateway_invoice_url,omitempty"`
	CreatedAt         time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time             `gorm:"autoUpdateTime" json:"updated_at"`

	Tenant *User `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Room   *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// PaymentState returns the derived payment state machine state
func (i *Invoice) PaymentState() domain.PaymentState {
	return domain.DerivePaymentState(i.Status, i.PaymentMethod, i.ApprovalStatus)
}

// IsPaid reports whether the invoice is settled
func (i *Invoice) IsPaid() bool {
	return i.Status == domain.InvoicePaid
}

// Issue represents issues table
type Issue struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	TenantID    uint                 `gorm:"not null;index" json:"tenant_id"`
	RoomID      *uint                `gorm:"index" json:"room_id"`
	Title       string               `gorm:"size:255;not null" json:"title"`
	Description string               `gorm:"type:text;not null" json:"description"`
	Priority    domain.IssuePriority `gorm:"size:20;not null;default:'medium'" json:"priority"`
	Status      domain.IssueStatus   `gorm:"size:20;not null;default:'open';index" json:"status"`
	ResolvedAt  *time.Time           `json:"resolved_at"`
	CreatedAt   time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Issue) TableName() string {
	return "issues"
}

// PaymentEvent is an append-only audit row for invoice payment transitions
type PaymentEvent struct {
	ID         uint                    `gorm:"primaryKey" json:"id"`
	InvoiceID  uint                    `gorm:"not null;index" json:"invoice_id"`
	EventType  domain.PaymentEventType `gorm:"size:30;not null" json:"event_type"`
	ActorID    *uint                   `json:"actor_id"`
	FromStatus domain.PaymentState     `gorm:"size:30" json:"from_status"`
	ToStatus   domain.PaymentState     `gorm:"size:30" json:"to_status"`
	Note       string                  `gorm:"type:text" json:"note"`
	Payload    datatypes.JSON          `json:"payload,omitempty"`
	CreatedAt  time.Time               `gorm:"autoCreateTime" json:"created_at"`
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}

// AutoMigrate runs auto migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Room{},
		&Invoice{},
		&Issue{},
		&PaymentEvent{},
	)
}
