package repositories

import (
	"context"
	"time"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/core/domain"
)

// Store is the storage handle injected into services.
// Repositories obtained from a Store returned by Transaction share its transaction.
type Store interface {
	Users() UserRepository
	Rooms() RoomRepository
	Invoices() InvoiceRepository
	Issues() IssueRepository
	PaymentEvents() PaymentEventRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetRoom(ctx context.Context, userID uint, roomID *uint) error
	List(ctx context.Context, role domain.Role, offset, limit int) ([]*models.User, int64, error)
	ListTenantsWithRoom(ctx context.Context) ([]*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}

// RoomRepository defines room repository interface
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id uint) (*models.Room, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Room, error)
	GetByNumber(ctx context.Context, number string) (*models.Room, error)
	List(ctx context.Context) ([]*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id uint) error
	ExistsByNumber(ctx context.Context, number string, excludeID uint) (bool, error)
	CountByStatus(ctx context.Context, status domain.RoomStatus) (int64, error)
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	TenantID     *uint
	Status       domain.InvoiceStatus
	BillingMonth string
}

// InvoiceRepository defines invoice repository interface
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id uint) (*models.Invoice, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Invoice, error)
	GetByTenantAndMonth(ctx context.Context, tenantID uint, month string) (*models.Invoice, error)
	ExistsForTenantMonth(ctx context.Context, tenantID uint, month string) (bool, error)
	List(ctx context.Context, filter InvoiceFilter, offset, limit int) ([]*models.Invoice, int64, error)
	ListUnpaidDueBefore(ctx context.Context, before time.Time) ([]*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	CountByStatus(ctx context.Context, status domain.InvoiceStatus) (int64, error)
	CountAwaitingVerification(ctx context.Context) (int64, error)
	SumPaidByMonth(ctx context.Context, months []string) (map[string]int64, error)
}

// IssueRepository defines issue repository interface
type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	GetByID(ctx context.Context, id uint) (*models.Issue, error)
	List(ctx context.Context, tenantID *uint, offset, limit int) ([]*models.Issue, int64, error)
	Update(ctx context.Context, issue *models.Issue) error
	CountByStatus(ctx context.Context, status domain.IssueStatus) (int64, error)
}

// PaymentEventRepository defines the payment audit trail repository
type PaymentEventRepository interface {
	Create(ctx context.Context, event *models.PaymentEvent) error
	ListByInvoice(ctx context.Context, invoiceID uint) ([]*models.PaymentEvent, error)
}
