package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/apexplus/storefront/internal/domain"
	apperrors "github.com/apexplus/storefront/pkg/errors"
)

// --- Mocks ---

type mockOrderPlacer struct {
	mock.Mock
}

func (m *mockOrderPlacer) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type mockCheckoutEvents struct {
	mock.Mock
}

func (m *mockCheckoutEvents) PublishOrderLocallyConfirmed(ctx context.Context, orderID string, totalAmount int64, reason string) error {
	args := m.Called(ctx, orderID, totalAmount, reason)
	return args.Error(0)
}

// --- Test Helpers ---

func newCheckoutTestService(carts *mockCartRepository, orders *mockOrderPlacer, events *mockCheckoutEvents) *CheckoutService {
	return NewCheckoutService(carts, orders, events, 0, newTestLogger())
}

func checkoutCart() *domain.Cart {
	cart := domain.NewCart("sess-1")
	cart.Items = []domain.CartItem{
		{ProductID: "prod-1", VariantID: "40", Name: "Air Runner", Price: 2400, Quantity: 2},
		{ProductID: "prod-2", VariantID: "42", Name: "Trail King", Price: 3100, Quantity: 1},
	}
	return cart
}

// --- Tests ---

func TestCheckout_Success(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderPlacer)
	events := new(mockCheckoutEvents)
	svc := newCheckoutTestService(carts, orders, events)
	ctx := context.Background()

	carts.On("Get", ctx, "sess-1").Return(checkoutCart(), nil)
	orders.On("CreateOrder", ctx, mock.AnythingOfType("service.CreateOrderInput")).
		Return(&domain.Order{ID: "#APX-5123", TotalAmount: 7900}, nil)
	carts.On("Delete", ctx, "sess-1").Return(nil)

	result, err := svc.Checkout(ctx, "sess-1", CheckoutInput{
		CustomerName:  "Rahim Uddin",
		Phone:         "01712345678",
		Address:       "House 7, Road 3, Banani",
		City:          "Dhaka",
		PaymentMethod: domain.PaymentMethodCOD,
	})

	require.NoError(t, err)
	assert.Equal(t, "#APX-5123", result.OrderID)
	// 2400*2 + 3100 from the live cart, not the client.
	assert.Equal(t, int64(7900), result.TotalAmount)
	assert.Equal(t, domain.PaymentStatusUnpaid, result.PaymentStatus)
	assert.False(t, result.LocallyConfirmed)

	carts.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestCheckout_AppliesGuestDefaults(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderPlacer)
	events := new(mockCheckoutEvents)
	svc := newCheckoutTestService(carts, orders, events)
	ctx := context.Background()

	carts.On("Get", ctx, "sess-1").Return(checkoutCart(), nil)
	carts.On("Delete", ctx, "sess-1").Return(nil)

	var captured CreateOrderInput
	orders.On("CreateOrder", ctx, mock.AnythingOfType("service.CreateOrderInput")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(CreateOrderInput)
		}).
		Return(&domain.Order{ID: "#APX-5124"}, nil)

	_, err := svc.Checkout(ctx, "sess-1", CheckoutInput{})

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCustomerName, captured.CustomerName)
	assert.Equal(t, domain.DefaultPhone, captured.Phone)
	assert.Equal(t, domain.DefaultAddress, captured.Address)
	assert.Equal(t, domain.DefaultCity, captured.City)
	assert.Equal(t, domain.PaymentMethodCOD, captured.PaymentMethod)
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderPlacer)
	events := new(mockCheckoutEvents)
	svc := newCheckoutTestService(carts, orders, events)
	ctx := context.Background()

	carts.On("Get", ctx, "sess-1").Return(domain.NewCart("sess-1"), nil)

	result, err := svc.Checkout(ctx, "sess-1", CheckoutInput{})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCheckout_MissingCartRejected(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderPlacer)
	events := new(mockCheckoutEvents)
	svc := newCheckoutTestService(carts, orders, events)
	ctx := context.Background()

	carts.On("Get", ctx, "sess-1").Return(nil, apperrors.ErrNotFound)

	result, err := svc.Checkout(ctx, "sess-1", CheckoutInput{})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCheckout_PipelineFailureConfirmsLocally(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderPlacer)
	events := new(mockCheckoutEvents)
	svc := newCheckoutTestService(carts, orders, events)
	ctx := context.Background()

	carts.On("Get", ctx, "sess-1").Return(checkoutCart(), nil)
	orders.On("CreateOrder", ctx, mock.AnythingOfType("service.CreateOrderInput")).
		Return(nil, assert.AnError)
	events.On("PublishOrderLocallyConfirmed", ctx, mock.AnythingOfType("string"), int64(7900), mock.AnythingOfType("string")).
		Return(nil)
	carts.On("Delete", ctx, "sess-1").Return(nil)

	result, err := svc.Checkout(ctx, "sess-1", CheckoutInput{})

	// The shopper never sees the failure.
	require.NoError(t, err)
	assert.True(t, result.LocallyConfirmed)
	assert.True(t, strings.HasPrefix(result.OrderID, "#APX-"))
	assert.Equal(t, int64(7900), result.TotalAmount)

	events.AssertExpectations(t)
	carts.AssertExpectations(t)
}

func TestCheckout_FallbackEventFailureStillSucceeds(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderPlacer)
	events := new(mockCheckoutEvents)
	svc := newCheckoutTestService(carts, orders, events)
	ctx := context.Background()

	carts.On("Get", ctx, "sess-1").Return(checkoutCart(), nil)
	orders.On("CreateOrder", ctx, mock.AnythingOfType("service.CreateOrderInput")).
		Return(nil, assert.AnError)
	events.On("PublishOrderLocallyConfirmed", ctx, mock.AnythingOfType("string"), int64(7900), mock.AnythingOfType("string")).
		Return(assert.AnError)
	carts.On("Delete", ctx, "sess-1").Return(nil)

	result, err := svc.Checkout(ctx, "sess-1", CheckoutInput{})

	require.NoError(t, err)
	assert.True(t, result.LocallyConfirmed)
}

func TestCheckout_CartClearedEvenWhenPipelineFails(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderPlacer)
	events := new(mockCheckoutEvents)
	svc := newCheckoutTestService(carts, orders, events)
	ctx := context.Background()

	carts.On("Get", ctx, "sess-1").Return(checkoutCart(), nil)
	orders.On("CreateOrder", ctx, mock.AnythingOfType("service.CreateOrderInput")).
		Return(nil, assert.AnError)
	events.On("PublishOrderLocallyConfirmed", ctx, mock.AnythingOfType("string"), int64(7900), mock.AnythingOfType("string")).
		Return(nil)
	carts.On("Delete", ctx, "sess-1").Return(nil)

	_, err := svc.Checkout(ctx, "sess-1", CheckoutInput{})

	require.NoError(t, err)
	carts.AssertCalled(t, "Delete", ctx, "sess-1")
}

func TestCheckout_ClearFailureDoesNotSurface(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderPlacer)
	events := new(mockCheckoutEvents)
	svc := newCheckoutTestService(carts, orders, events)
	ctx := context.Background()

	carts.On("Get", ctx, "sess-1").Return(checkoutCart(), nil)
	orders.On("CreateOrder", ctx, mock.AnythingOfType("service.CreateOrderInput")).
		Return(&domain.Order{ID: "#APX-5125"}, nil)
	carts.On("Delete", ctx, "sess-1").Return(assert.AnError)

	result, err := svc.Checkout(ctx, "sess-1", CheckoutInput{})

	require.NoError(t, err)
	assert.Equal(t, "#APX-5125", result.OrderID)
}

func TestCheckout_MissingSessionID(t *testing.T) {
	carts := new(mockCartRepository)
	orders := new(mockOrderPlacer)
	events := new(mockCheckoutEvents)
	svc := newCheckoutTestService(carts, orders, events)

	result, err := svc.Checkout(context.Background(), "", CheckoutInput{})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
