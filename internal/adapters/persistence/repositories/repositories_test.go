package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"kost-management/internal/adapters/persistence/models"
	"kost-management/internal/core/domain"
	"kost-management/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// A helper function to create a mock MySQL connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestInvoiceRepository_UniqueTenantMonth(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	room := testutil.CreateRoom(t, db, "101", 1500000)
	tenant := testutil.CreateTenantInRoom(t, db, "budi", room)
	testutil.CreateInvoice(t, db, tenant, room, "2025-03", 1500000)

	repo := NewInvoiceRepository(db)
	err := repo.Create(ctx, &models.Invoice{
		TenantID:     tenant.ID,
		RoomID:       room.ID,
		BillingMonth: "2025-03",
		Amount:       1500000,
		Status:       domain.InvoicePending,
	})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	exists, err := repo.ExistsForTenantMonth(ctx, tenant.ID, "2025-03")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForTenantMonth(ctx, tenant.ID, "2025-04")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInvoiceRepository_SumPaidByMonth(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	room := testutil.CreateRoom(t, db, "101", 1000)
	a := testutil.CreateTenantInRoom(t, db, "a", room)
	b := testutil.CreateUser(t, db, "b", domain.RoleTenant)

	paid := func(inv *models.Invoice) {
		inv.Status = domain.InvoicePaid
		require.NoError(t, db.Save(inv).Error)
	}
	paid(testutil.CreateInvoice(t, db, a, room, "2025-01", 1000))
	paid(testutil.CreateInvoice(t, db, a, room, "2025-02", 1200))
	paid(testutil.CreateInvoice(t, db, b, room, "2025-02", 800))
	testutil.CreateInvoice(t, db, a, room, "2025-03", 5000)

	sums, err := NewInvoiceRepository(db).SumPaidByMonth(ctx, []string{"2025-01", "2025-02", "2025-03"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"2025-01": 1000, "2025-02": 2000, "2025-03": 0}, sums)
}

func TestInvoiceRepository_UpdateClearsNullableColumns(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	room := testutil.CreateRoom(t, db, "101", 1000)
	tenant := testutil.CreateTenantInRoom(t, db, "a", room)
	inv := testutil.CreateInvoice(t, db, tenant, room, "2025-01", 1000)

	repo := NewInvoiceRepository(db)
	proof := "aGVsbG8="
	inv.PaymentProof = &proof
	require.NoError(t, repo.Update(ctx, inv))

	inv.PaymentProof = nil
	require.NoError(t, repo.Update(ctx, inv))

	got, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PaymentProof)
}

func TestInvoiceRepository_ListUnpaidDueBefore_SkipsAwaitingVerification(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	room := testutil.CreateRoom(t, db, "101", 1000)
	tenant := testutil.CreateTenantInRoom(t, db, "a", room)

	unpaid := testutil.CreateInvoice(t, db, tenant, room, "2025-01", 1000)
	awaiting := testutil.CreateInvoice(t, db, tenant, room, "2025-02", 1000)
	awaiting.PaymentMethod = domain.PaymentManual
	awaiting.ApprovalStatus = domain.ApprovalPending
	require.NoError(t, db.Save(awaiting).Error)
	rejected := testutil.CreateInvoice(t, db, tenant, room, "2025-03", 1000)
	rejected.PaymentMethod = domain.PaymentManual
	rejected.ApprovalStatus = domain.ApprovalRejected
	require.NoError(t, db.Save(rejected).Error)

	invoices, err := NewInvoiceRepository(db).ListUnpaidDueBefore(ctx, time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)
	ids := make([]uint, 0, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.ID)
	}
	assert.ElementsMatch(t, []uint{unpaid.ID, rejected.ID}, ids)
}

func TestUserRepository_ListTenantsWithRoom(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	room := testutil.CreateRoom(t, db, "101", 1000)
	withRoom := testutil.CreateTenantInRoom(t, db, "a", room)
	testutil.CreateUser(t, db, "b", domain.RoleTenant)
	testutil.CreateUser(t, db, "admin", domain.RoleAdmin)

	tenants, err := NewUserRepository(db).ListTenantsWithRoom(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.Equal(t, withRoom.ID, tenants[0].ID)
}

func TestRoomRepository_ExistsByNumber(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	room := testutil.CreateRoom(t, db, "101", 1000)
	repo := NewRoomRepository(db)

	exists, err := repo.ExistsByNumber(ctx, "101", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByNumber(ctx, "101", room.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_TransactionRollback(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	store := NewStore(db)
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx Store) error {
		if err := tx.Rooms().Create(ctx, &models.Room{Number: "201", MonthlyRent: 1, Status: domain.RoomVacant}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Rooms().GetByNumber(ctx, "201")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRoomRepository_GetByIDForUpdate_LocksRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `rooms` WHERE id = \\?.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "status", "monthly_rent"}).
			AddRow(7, "107", "vacant", 900000))

	room, err := NewRoomRepository(db).GetByIDForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "107", room.Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}
