package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apexplus/storefront/internal/domain"
	pkgkafka "github.com/apexplus/storefront/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicOrderCreated          = "storefront.order.created"
	TopicOrderStatusChanged    = "storefront.order.status_changed"
	TopicOrderLocallyConfirmed = "storefront.order.locally_confirmed"
	TopicProductUpserted       = "storefront.product.upserted"
)

// Aggregate type constants.
const (
	AggregateTypeOrder   = "order"
	AggregateTypeProduct = "product"
)

// Source identifier for events originating from this service.
const SourceStorefront = "storefront"

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customer_name"`
	City          string          `json:"city"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	TotalAmount   int64           `json:"total_amount"`
	Items         []OrderItemData `json:"items"`
}

// OrderItemData is the event payload for an order line item.
type OrderItemData struct {
	ProductID       string `json:"product_id"`
	VariantID       string `json:"variant_id"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase int64  `json:"price_at_purchase"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// OrderLocallyConfirmedData is the payload for an order.locally_confirmed
// event, emitted when checkout falls back to a fabricated local reference
// after the order pipeline failed. It is the only trace the back office gets
// of these orders, since no database row exists.
type OrderLocallyConfirmedData struct {
	OrderID     string `json:"order_id"`
	TotalAmount int64  `json:"total_amount"`
	Reason      string `json:"reason"`
}

// ProductUpsertedData is the payload for a product.upserted event.
type ProductUpsertedData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	Price      int64  `json:"price"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		}
	}

	data := OrderCreatedData{
		ID:            order.ID,
		CustomerName:  order.CustomerName,
		City:          order.City,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount,
		Items:         items,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error {
	data := OrderStatusChangedData{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, orderID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.String("order_id", orderID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return nil
}

// PublishOrderLocallyConfirmed publishes an order.locally_confirmed event.
func (p *Producer) PublishOrderLocallyConfirmed(ctx context.Context, orderID string, totalAmount int64, reason string) error {
	data := OrderLocallyConfirmedData{
		OrderID:     orderID,
		TotalAmount: totalAmount,
		Reason:      reason,
	}

	event, err := pkgkafka.NewEvent(TopicOrderLocallyConfirmed, orderID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.locally_confirmed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderLocallyConfirmed, event); err != nil {
		return fmt.Errorf("publish order.locally_confirmed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.locally_confirmed event",
		slog.String("order_id", orderID),
	)

	return nil
}

// PublishProductUpserted publishes a product.upserted event.
func (p *Producer) PublishProductUpserted(ctx context.Context, product *domain.Product) error {
	data := ProductUpsertedData{
		ID:         product.ID,
		Name:       product.Name,
		CategoryID: product.CategoryID,
		Price:      product.EffectivePrice(),
	}

	event, err := pkgkafka.NewEvent(TopicProductUpserted, product.ID, AggregateTypeProduct, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create product.upserted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductUpserted, event); err != nil {
		return fmt.Errorf("publish product.upserted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.upserted event",
		slog.String("product_id", product.ID),
	)

	return nil
}
