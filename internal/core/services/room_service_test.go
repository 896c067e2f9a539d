package services

import (
	"context"
	"testing"

	"kost-management/internal/core/domain"
	"kost-management/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomService_CreateAndUpdate(t *testing.T) {
	store, _ := newTestStore(t)
	svc := NewRoomService(store, nil)
	ctx := context.Background()

	room, err := svc.Create(ctx, &CreateRoomInput{Number: " 101 ", MonthlyRent: 1500000})
	require.NoError(t, err)
	assert.Equal(t, "101", room.Number)
	assert.Equal(t, domain.RoomVacant, room.Status)

	_, err = svc.Create(ctx, &CreateRoomInput{Number: "101", MonthlyRent: 1})
	assert.ErrorIs(t, err, domain.ErrRoomNumberTaken)

	_, err = svc.Create(ctx, &CreateRoomInput{Number: "12345678901", MonthlyRent: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidRoomNumber)

	_, err = svc.Create(ctx, &CreateRoomInput{Number: "102", MonthlyRent: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidRent)

	rent := int64(1750000)
	updated, err := svc.Update(ctx, room.ID, &UpdateRoomInput{MonthlyRent: &rent})
	require.NoError(t, err)
	assert.Equal(t, rent, updated.MonthlyRent)
	assert.Equal(t, "101", updated.Number)
}

func TestRoomService_Delete(t *testing.T) {
	store, db := newTestStore(t)
	svc := NewRoomService(store, nil)
	ctx := context.Background()

	occupied := testutil.CreateRoom(t, db, "101", 1000)
	testutil.CreateTenantInRoom(t, db, "budi", occupied)
	vacant := testutil.CreateRoom(t, db, "102", 1000)

	err := svc.Delete(ctx, occupied.ID)
	assert.ErrorIs(t, err, domain.ErrRoomDeleteOccupied)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, svc.Delete(ctx, vacant.ID))

	rooms, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "101", rooms[0].Number)

	assert.ErrorIs(t, svc.Delete(ctx, 999), domain.ErrRoomNotFound)
}

func TestRoomService_AssignAndRelease(t *testing.T) {
	store, db := newTestStore(t)
	svc := NewRoomService(store, nil)
	ctx := context.Background()

	room := testutil.CreateRoom(t, db, "101", 1000)
	other := testutil.CreateRoom(t, db, "102", 1000)
	tenant := testutil.CreateUser(t, db, "budi", domain.RoleTenant)
	second := testutil.CreateUser(t, db, "siti", domain.RoleTenant)

	assigned, err := svc.AssignRoom(ctx, room.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomOccupied, assigned.Status)
	require.NotNil(t, assigned.TenantID)
	assert.Equal(t, tenant.ID, *assigned.TenantID)

	user, err := store.Users().GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	require.NotNil(t, user.RoomID)
	assert.Equal(t, room.ID, *user.RoomID)

	_, err = svc.AssignRoom(ctx, room.ID, second.ID)
	assert.ErrorIs(t, err, domain.ErrRoomOccupied)

	_, err = svc.AssignRoom(ctx, other.ID, tenant.ID)
	assert.ErrorIs(t, err, domain.ErrTenantHasRoom)

	// the failed assignment must not have touched the other room
	untouched, err := svc.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomVacant, untouched.Status)
	assert.Nil(t, untouched.TenantID)

	released, err := svc.ReleaseRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomVacant, released.Status)
	assert.Nil(t, released.TenantID)

	user, err = store.Users().GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Nil(t, user.RoomID)
}

func TestRoomService_CheckAvailability(t *testing.T) {
	store, db := newTestStore(t)
	svc := NewRoomService(store, nil)
	ctx := context.Background()

	occupied := testutil.CreateRoom(t, db, "101", 1000)
	testutil.CreateTenantInRoom(t, db, "budi", occupied)
	testutil.CreateRoom(t, db, "102", 1000)

	got, err := svc.CheckAvailability(ctx, "102")
	require.NoError(t, err)
	assert.True(t, got.Available)
	require.NotNil(t, got.Room)

	got, err = svc.CheckAvailability(ctx, "101")
	require.NoError(t, err)
	assert.False(t, got.Available)

	got, err = svc.CheckAvailability(ctx, "999")
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Nil(t, got.Room)
}
