package services

import (
	"context"
	"testing"

	"kost-management/internal/config"
	"kost-management/internal/core/domain"
	"kost-management/internal/pkg/jwt"
	"kost-management/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantService_Register(t *testing.T) {
	store, db := newTestStore(t)
	svc := NewTenantService(store, nil)
	ctx := context.Background()
	room := testutil.CreateRoom(t, db, "101", 1000)

	reg, err := svc.Register(ctx, &RegisterTenantInput{
		Name:       "Budi",
		Email:      " Budi@Example.com ",
		Phone:      "081234567890",
		Password:   "rahasia123",
		RoomNumber: "101",
	})
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", reg.User.Email)
	assert.Equal(t, domain.RoleTenant, reg.User.Role)
	require.NotNil(t, reg.User.RoomID)
	assert.Equal(t, room.ID, *reg.User.RoomID)
	assert.Equal(t, domain.RoomOccupied, reg.Room.Status)
	assert.NotEqual(t, "rahasia123", reg.User.Password)

	_, err = svc.Register(ctx, &RegisterTenantInput{
		Name: "Siti", Email: "siti@example.com", Phone: "0812", Password: "rahasia123", RoomNumber: "101",
	})
	assert.ErrorIs(t, err, domain.ErrRoomOccupied)

	testutil.CreateRoom(t, db, "102", 1000)
	_, err = svc.Register(ctx, &RegisterTenantInput{
		Name: "Budi 2", Email: "budi@example.com", Phone: "0812", Password: "rahasia123", RoomNumber: "102",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	// nothing from the failed attempts was persisted
	room102, err := store.Rooms().GetByNumber(ctx, "102")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomVacant, room102.Status)
}

func TestTenantService_RegisterValidation(t *testing.T) {
	store, db := newTestStore(t)
	svc := NewTenantService(store, nil)
	ctx := context.Background()
	testutil.CreateRoom(t, db, "101", 1000)

	base := RegisterTenantInput{Name: "Budi", Email: "budi@example.com", Phone: "0812", Password: "rahasia123", RoomNumber: "101"}

	in := base
	in.Password = "short"
	_, err := svc.Register(ctx, &in)
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	in = base
	in.Phone = ""
	_, err = svc.Register(ctx, &in)
	assert.ErrorIs(t, err, domain.ErrMissingFields)

	in = base
	in.Email = "not-an-email"
	_, err = svc.Register(ctx, &in)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	in = base
	in.RoomNumber = "404"
	_, err = svc.Register(ctx, &in)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestTenantService_CreateByAdminAndList(t *testing.T) {
	store, db := newTestStore(t)
	svc := NewTenantService(store, nil)
	ctx := context.Background()
	testutil.CreateRoom(t, db, "101", 1000)
	testutil.CreateUser(t, db, "admin", domain.RoleAdmin)

	reg, err := svc.CreateByAdmin(ctx, &RegisterTenantInput{Name: "Budi", Email: "budi@example.com", Phone: "0812", RoomNumber: "101"})
	require.NoError(t, err)
	assert.Contains(t, reg.User.AuthIdentity, "manual_")

	tenants, total, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, tenants, 1)
	assert.Equal(t, "101", tenants[0].RoomNumber)

	_, err = svc.Get(ctx, reg.User.ID)
	require.NoError(t, err)
}

func TestAuthService_LoginAndRegister(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	testutil.CreateRoom(t, db, "101", 1000)

	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", AccessTokenMins: 60}}
	svc := NewAuthService(store, NewTenantService(store, nil), cfg, nil)

	registered, err := svc.Register(ctx, &RegisterTenantInput{
		Name: "Budi", Email: "budi@example.com", Phone: "0812", Password: "rahasia123", RoomNumber: "101",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, 3600, registered.ExpiresIn)

	resp, err := svc.Login(ctx, &LoginInput{Email: "BUDI@example.com", Password: "rahasia123"})
	require.NoError(t, err)

	claims, err := jwt.ValidateAccessToken(resp.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, string(domain.RoleTenant), claims.Role)

	_, err = svc.Login(ctx, &LoginInput{Email: "budi@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginInput{Email: "nobody@example.com", Password: "rahasia123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	me, err := svc.Me(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", me.Email)
}

func TestUserService_ProfileAndPassword(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	testutil.CreateRoom(t, db, "101", 1000)

	reg, err := NewTenantService(store, nil).Register(ctx, &RegisterTenantInput{
		Name: "Budi", Email: "budi@example.com", Phone: "0812", Password: "rahasia123", RoomNumber: "101",
	})
	require.NoError(t, err)
	svc := NewUserService(store)

	name := "Budi Santoso"
	profile, err := svc.UpdateProfile(ctx, reg.User.ID, &UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, profile.Name)
	assert.Equal(t, "0812", profile.Phone)

	err = svc.ChangePassword(ctx, reg.User.ID, &ChangePasswordInput{OldPassword: "wrong", NewPassword: "baru12345"})
	assert.ErrorIs(t, err, domain.ErrOldPasswordWrong)

	err = svc.ChangePassword(ctx, reg.User.ID, &ChangePasswordInput{OldPassword: "rahasia123", NewPassword: "short"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(ctx, reg.User.ID, &ChangePasswordInput{OldPassword: "rahasia123", NewPassword: "baru12345"}))
}
