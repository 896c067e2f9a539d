package services

import (
	"context"
	"testing"

	"kost-management/internal/core/domain"
	"kost-management/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueService_CreateAndList(t *testing.T) {
	store, db := newTestStore(t)
	svc := NewIssueService(store, nil)
	ctx := context.Background()

	room := testutil.CreateRoom(t, db, "101", 1000)
	budi := testutil.CreateTenantInRoom(t, db, "budi", room)
	homeless := testutil.CreateUser(t, db, "andi", domain.RoleTenant)
	budiActor := domain.Actor{UserID: budi.ID, Role: domain.RoleTenant}

	issue, err := svc.Create(ctx, budiActor, &CreateIssueInput{Title: " Leaking tap ", Description: "bathroom"})
	require.NoError(t, err)
	assert.Equal(t, "Leaking tap", issue.Title)
	assert.Equal(t, domain.PriorityMedium, issue.Priority)
	assert.Equal(t, domain.IssueOpen, issue.Status)
	require.NotNil(t, issue.RoomID)
	assert.Equal(t, room.ID, *issue.RoomID)

	_, err = svc.Create(ctx, budiActor, &CreateIssueInput{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrIssueTitleRequired)

	_, err = svc.Create(ctx, budiActor, &CreateIssueInput{Title: "x", Description: "y", Priority: "urgent"})
	assert.ErrorIs(t, err, domain.ErrInvalidIssuePriority)

	_, err = svc.Create(ctx, domain.Actor{UserID: homeless.ID, Role: domain.RoleTenant}, &CreateIssueInput{Title: "x", Description: "y"})
	assert.ErrorIs(t, err, domain.ErrTenantNoRoom)

	issues, total, err := svc.List(ctx, domain.Actor{UserID: homeless.ID, Role: domain.RoleTenant}, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, issues)

	issues, total, err = svc.List(ctx, domain.Actor{UserID: 1, Role: domain.RoleAdmin}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, issues, 1)
}

func TestIssueService_UpdateStatusTracksResolution(t *testing.T) {
	store, db := newTestStore(t)
	svc := NewIssueService(store, nil)
	ctx := context.Background()

	room := testutil.CreateRoom(t, db, "101", 1000)
	budi := testutil.CreateTenantInRoom(t, db, "budi", room)
	issue, err := svc.Create(ctx, domain.Actor{UserID: budi.ID, Role: domain.RoleTenant},
		&CreateIssueInput{Title: "AC broken", Description: "no cold air", Priority: domain.PriorityHigh})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, issue.ID, domain.IssueInProgress)
	require.NoError(t, err)
	assert.Nil(t, updated.ResolvedAt)

	updated, err = svc.UpdateStatus(ctx, issue.ID, domain.IssueResolved)
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	resolvedAt := *updated.ResolvedAt

	// resolving twice keeps the first timestamp
	updated, err = svc.UpdateStatus(ctx, issue.ID, domain.IssueResolved)
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	assert.True(t, resolvedAt.Equal(*updated.ResolvedAt))

	updated, err = svc.UpdateStatus(ctx, issue.ID, domain.IssueOpen)
	require.NoError(t, err)
	assert.Nil(t, updated.ResolvedAt)

	_, err = svc.UpdateStatus(ctx, issue.ID, "closed")
	assert.ErrorIs(t, err, domain.ErrInvalidIssueStatus)

	_, err = svc.UpdateStatus(ctx, 999, domain.IssueOpen)
	assert.ErrorIs(t, err, domain.ErrIssueNotFound)
}
