// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a fresh in-memory SQLite database with all tables migrated.
// The pool is limited to one connection, so code running inside a
// transaction must only use the transaction handle.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// CreateRoom inserts a vacant room
func CreateRoom(t *testing.T, db *gorm.DB, number string, rent int64) *models.Room {
	t.Helper()
	room := &models.Room{Number: number, MonthlyRent: rent, Status: domain.RoomVacant}
	require.NoError(t, db.Create(room).Error)
	return room
}

// CreateUser inserts a user with the given role and no room
func CreateUser(t *testing.T, db *gorm.DB, name string, role domain.Role) *models.User {
	t.Helper()
	user := &models.User{
		AuthIdentity: "test_" + uuid.NewString(),
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		Phone:        "081234567890",
		Password:     "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTenantInRoom inserts a tenant and marks the room occupied by them
func CreateTenantInRoom(t *testing.T, db *gorm.DB, name string, room *models.Room) *models.User {
	t.Helper()
	tenant := CreateUser(t, db, name, domain.RoleTenant)
	tenant.RoomID = &room.ID
	require.NoError(t, db.Save(tenant).Error)

	room.Status = domain.RoomOccupied
	room.TenantID = &tenant.ID
	require.NoError(t, db.Save(room).Error)
	return tenant
}

// CreateInvoice inserts a pending invoice for the tenant's current room
func CreateInvoice(t *testing.T, db *gorm.DB, tenant *models.User, room *models.Room, month string, amount int64) *models.Invoice {
	t.Helper()
	inv := &models.Invoice{
		TenantID:       tenant.ID,
		RoomID:         room.ID,
		BillingMonth:   month,
		Amount:         amount,
		DueDate:        time.Now().AddDate(0, 0, 10),
		Status:         domain.InvoicePending,
		PaymentMethod:  domain.PaymentNone,
		ApprovalStatus: domain.ApprovalNone,
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}
