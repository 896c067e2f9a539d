package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBillingMonth(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid month", input: "2025-03"},
		{name: "december", input: "2024-12"},
		{name: "month out of range", input: "2025-13", wantErr: true},
		{name: "single digit month", input: "2025-3", wantErr: true},
		{name: "full date", input: "2025-03-01", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseBillingMonth(tc.input, time.UTC)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBillingMonth)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, got.Day())
			assert.Equal(t, tc.input, BillingMonthOf(got))
		})
	}
}

func TestDefaultDueDate(t *testing.T) {
	march := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), DefaultDueDate(march, 10))

	feb := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), DefaultDueDate(feb, 31))
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), DefaultDueDate(feb, 0))
}

func TestTrailingMonths(t *testing.T) {
	now := time.Date(2025, time.February, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{"2024-10", "2024-11", "2024-12", "2025-01", "2025-02"}, TrailingMonths(now, 5))
	assert.Equal(t, []string{"2025-02"}, TrailingMonths(now, 1))
}

func TestExternalIDRoundTrip(t *testing.T) {
	at := time.Date(2025, time.March, 5, 8, 0, 0, 0, time.UTC)
	ext := FormatExternalID(42, at)
	assert.Equal(t, "INV-42-1741161600000", ext)

	id, err := ParseExternalID(ext)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestParseExternalID_Invalid(t *testing.T) {
	for _, ext := range []string{"", "INV-", "INV-abc-1", "inv-1-2", "ORDER-1-2", "INV-0-123", "INV-12"} {
		_, err := ParseExternalID(ext)
		assert.True(t, errors.Is(err, ErrInvalidExternalID), ext)
	}
}

func TestDerivePaymentState(t *testing.T) {
	assert.Equal(t, StateUnpaid, DerivePaymentState(InvoicePending, PaymentNone, ApprovalNone))
	assert.Equal(t, StateUnpaid, DerivePaymentState(InvoicePending, PaymentGateway, ApprovalNone))
	assert.Equal(t, StateAwaitingVerification, DerivePaymentState(InvoicePending, PaymentManual, ApprovalPending))
	assert.Equal(t, StateRejected, DerivePaymentState(InvoicePending, PaymentManual, ApprovalRejected))
	assert.Equal(t, StatePaid, DerivePaymentState(InvoicePaid, PaymentManual, ApprovalApproved))
	assert.Equal(t, StatePaid, DerivePaymentState(InvoicePaid, PaymentGateway, ApprovalNone))
}

func TestKindErrors(t *testing.T) {
	assert.ErrorIs(t, ErrRoomOccupied, ErrConflict)
	assert.ErrorIs(t, ErrInvoiceNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrGatewayNotConfigured, ErrExternal)
	assert.NotErrorIs(t, ErrRoomOccupied, ErrNotFound)
	assert.Equal(t, "room is already occupied", ErrRoomOccupied.Error())
}
