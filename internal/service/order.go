package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/apexplus/storefront/internal/domain"
	"github.com/apexplus/storefront/internal/repository"
	apperrors "github.com/apexplus/storefront/pkg/errors"
)

// orderEventPublisher is the slice of the event producer the order service
// needs.
type orderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error
}

// OrderItemInput is a submitted order line. The price is recorded as-is;
// nothing cross-checks it against the catalog.
type OrderItemInput struct {
	ProductID       string `json:"product_id" validate:"required"`
	VariantID       string `json:"variant_id"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	PriceAtPurchase int64  `json:"price_at_purchase" validate:"gte=0"`
}

// CreateOrderInput holds the parameters for placing an order.
type CreateOrderInput struct {
	ID            string           `json:"id"`
	CustomerName  string           `json:"customer_name" validate:"required"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone" validate:"required"`
	Address       string           `json:"address" validate:"required"`
	City          string           `json:"city"`
	PaymentMethod string           `json:"payment_method"`
	TotalAmount   int64            `json:"total_amount" validate:"gte=0"`
	Items         []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// OrderService implements the business logic for order placement and
// fulfillment tracking.
type OrderService struct {
	orders repository.OrderRepository
	events orderEventPublisher
	logger *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, events orderEventPublisher, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		events: events,
		logger: logger,
	}
}

// CreateOrder records a new order. The submitted total and per-line prices
// are stored verbatim; payment status follows the payment method.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, apperrors.InvalidInput("customer name is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, apperrors.InvalidInput("phone is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, apperrors.InvalidInput("address is required")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == "" {
			return nil, apperrors.InvalidInput("item product id is required")
		}
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be greater than zero")
		}
	}

	id := input.ID
	if id == "" {
		id = domain.NewOrderID()
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            id,
		CustomerName:  input.CustomerName,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
		City:          input.City,
		Status:        domain.OrderStatusPending,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: domain.PaymentStatusFor(input.PaymentMethod),
		TotalAmount:   input.TotalAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:              uuid.NewString(),
			OrderID:         id,
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	// Do not fail the operation if event publishing fails.
	if err := s.events.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.Int64("total_amount", order.TotalAmount),
		slog.String("payment_method", order.PaymentMethod),
	)

	return order, nil
}

// GetOrder retrieves an order with its enriched line items.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}
	return s.orders.GetByID(ctx, id)
}

// ListOrders returns all orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx)
}

// UpdateOrderStatus sets an order's fulfillment status. Any valid status may
// replace any other, including moves out of Delivered or Cancelled.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}
	if !domain.IsValidStatus(status) {
		return nil, apperrors.InvalidInput("invalid order status: " + status)
	}

	existing, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldStatus := existing.Status

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	existing.Status = status
	existing.UpdatedAt = time.Now().UTC()

	if err := s.events.PublishOrderStatusChanged(ctx, id, oldStatus, status); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", status),
	)

	return existing, nil
}
