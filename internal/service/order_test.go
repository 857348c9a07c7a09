package service

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/apexplus/storefront/internal/domain"
	apperrors "github.com/apexplus/storefront/pkg/errors"
)

// --- Mock Repository ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// --- Mock Event Publisher ---

type mockOrderEvents struct {
	mock.Mock
}

func (m *mockOrderEvents) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderEvents) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error {
	args := m.Called(ctx, orderID, oldStatus, newStatus)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newOrderTestService(repo *mockOrderRepository, events *mockOrderEvents) *OrderService {
	return NewOrderService(repo, events, newTestLogger())
}

func validOrderInput() CreateOrderInput {
	return CreateOrderInput{
		CustomerName:  "Rahim Uddin",
		Phone:         "01712345678",
		Address:       "House 7, Road 3, Banani",
		City:          "Dhaka",
		PaymentMethod: domain.PaymentMethodCOD,
		TotalAmount:   5200,
		Items: []OrderItemInput{
			{ProductID: "prod-1", VariantID: "40", Quantity: 2, PriceAtPurchase: 2500},
			{ProductID: "prod-2", VariantID: "42", Quantity: 1, PriceAtPurchase: 200},
		},
	}
}

// --- Tests ---

func TestCreateOrder_Success(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	events.On("PublishOrderCreated", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, err := svc.CreateOrder(ctx, validOrderInput())

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.ID, "#APX-"))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, int64(5200), order.TotalAmount)
	require.Len(t, order.Items, 2)
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
	}

	repo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCreateOrder_SuppliedID(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	events.On("PublishOrderCreated", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)

	input := validOrderInput()
	input.ID = "#APX-4242"

	order, err := svc.CreateOrder(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "#APX-4242", order.ID)
}

func TestCreateOrder_TrustsSubmittedTotal(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	events.On("PublishOrderCreated", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)

	// The total does not match the line items; it is stored anyway.
	input := validOrderInput()
	input.TotalAmount = 1

	order, err := svc.CreateOrder(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, int64(1), order.TotalAmount)
}

func TestCreateOrder_OnlinePaymentMarkedPaid(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	events.On("PublishOrderCreated", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)

	input := validOrderInput()
	input.PaymentMethod = "bkash"

	order, err := svc.CreateOrder(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)

	input := validOrderInput()
	input.Items = nil

	order, err := svc.CreateOrder(context.Background(), input)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateOrder_MissingCustomerName(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)

	input := validOrderInput()
	input.CustomerName = "   "

	order, err := svc.CreateOrder(context.Background(), input)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateOrder_PublishFailureDoesNotFailOrder(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	events.On("PublishOrderCreated", ctx, mock.AnythingOfType("*domain.Order")).
		Return(assert.AnError)

	order, err := svc.CreateOrder(ctx, validOrderInput())

	require.NoError(t, err)
	assert.NotNil(t, order)

	events.AssertExpectations(t)
}

func TestGetOrder_NotFound(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)
	ctx := context.Background()

	repo.On("GetByID", ctx, "#APX-9999").Return(nil, apperrors.ErrNotFound)

	order, err := svc.GetOrder(ctx, "#APX-9999")

	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListOrders_Success(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)
	ctx := context.Background()

	expected := []*domain.Order{
		{ID: "#APX-2001", Status: domain.OrderStatusPending},
		{ID: "#APX-2002", Status: domain.OrderStatusShipped},
	}
	repo.On("List", ctx).Return(expected, nil)

	orders, err := svc.ListOrders(ctx)

	require.NoError(t, err)
	assert.Len(t, orders, 2)

	repo.AssertExpectations(t)
}

func TestUpdateOrderStatus_Success(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)
	ctx := context.Background()

	existing := &domain.Order{ID: "#APX-3001", Status: domain.OrderStatusPending}

	repo.On("GetByID", ctx, "#APX-3001").Return(existing, nil)
	repo.On("UpdateStatus", ctx, "#APX-3001", domain.OrderStatusShipped).Return(nil)
	events.On("PublishOrderStatusChanged", ctx, "#APX-3001", domain.OrderStatusPending, domain.OrderStatusShipped).Return(nil)

	order, err := svc.UpdateOrderStatus(ctx, "#APX-3001", domain.OrderStatusShipped)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, order.Status)

	repo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestUpdateOrderStatus_BackwardsMoveAccepted(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)
	ctx := context.Background()

	// Delivered back to Pending is a legal move.
	existing := &domain.Order{ID: "#APX-3002", Status: domain.OrderStatusDelivered}

	repo.On("GetByID", ctx, "#APX-3002").Return(existing, nil)
	repo.On("UpdateStatus", ctx, "#APX-3002", domain.OrderStatusPending).Return(nil)
	events.On("PublishOrderStatusChanged", ctx, "#APX-3002", domain.OrderStatusDelivered, domain.OrderStatusPending).Return(nil)

	order, err := svc.UpdateOrderStatus(ctx, "#APX-3002", domain.OrderStatusPending)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestUpdateOrderStatus_UnknownStatus(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)

	order, err := svc.UpdateOrderStatus(context.Background(), "#APX-3003", "shipped")

	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	repo := new(mockOrderRepository)
	events := new(mockOrderEvents)
	svc := newOrderTestService(repo, events)
	ctx := context.Background()

	repo.On("GetByID", ctx, "#APX-3004").Return(nil, apperrors.ErrNotFound)

	order, err := svc.UpdateOrderStatus(ctx, "#APX-3004", domain.OrderStatusProcessing)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
