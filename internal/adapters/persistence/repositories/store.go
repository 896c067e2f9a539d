package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore implements Store on top of a *gorm.DB
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a new store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return NewUserRepository(s.db) }
func (s *gormStore) Rooms() RoomRepository                 { return NewRoomRepository(s.db) }
func (s *gormStore) Invoices() InvoiceRepository           { return NewInvoiceRepository(s.db) }
func (s *gormStore) Issues() IssueRepository               { return NewIssueRepository(s.db) }
func (s *gormStore) PaymentEvents() PaymentEventRepository { return NewPaymentEventRepository(s.db) }

// Transaction runs fn inside a database transaction.
// The transaction is rolled back when fn returns an error.
func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// Ping checks that the database is reachable
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// forUpdate adds a row lock. SQLite ignores it.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// first loads the single row matching query, or gorm.ErrRecordNotFound
func first[T any](db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var row T
	if err := db.Where(query, args...).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
