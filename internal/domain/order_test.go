package domain

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderID(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := NewOrderID()
		require.True(t, strings.HasPrefix(id, "#APX-"), "unexpected prefix: %s", id)

		n, err := strconv.Atoi(strings.TrimPrefix(id, "#APX-"))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1000)
		assert.LessOrEqual(t, n, 9998)
	}
}

func TestPaymentStatusFor(t *testing.T) {
	assert.Equal(t, PaymentStatusUnpaid, PaymentStatusFor(PaymentMethodCOD))
	assert.Equal(t, PaymentStatusUnpaid, PaymentStatusFor("cod"))
	assert.Equal(t, PaymentStatusUnpaid, PaymentStatusFor("Cod"))
	assert.Equal(t, PaymentStatusPaid, PaymentStatusFor(PaymentMethodCard))
	assert.Equal(t, PaymentStatusPaid, PaymentStatusFor(PaymentMethodBkash))
	assert.Equal(t, PaymentStatusPaid, PaymentStatusFor("bkash"))
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range ValidStatuses() {
		assert.True(t, IsValidStatus(s))
	}
	assert.False(t, IsValidStatus("pending"))
	assert.False(t, IsValidStatus("Refunded"))
	assert.False(t, IsValidStatus(""))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(OrderStatusDelivered))
	assert.True(t, IsTerminalStatus(OrderStatusCancelled))
	assert.False(t, IsTerminalStatus(OrderStatusPending))
	assert.False(t, IsTerminalStatus(OrderStatusShipped))
}
