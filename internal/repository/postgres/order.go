package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/apexplus/storefront/internal/domain"
	"github.com/apexplus/storefront/pkg/database"
	apperrors "github.com/apexplus/storefront/pkg/errors"
)

const orderColumns = `id, customer_name, email, phone, address, city, status, payment_method, payment_status, total_amount, created_at, updated_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order and its items atomically within a transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, customer_name, email, phone, address, city, status, payment_method, payment_status, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.CustomerName,
		o.Email,
		o.Phone,
		o.Address,
		o.City,
		o.Status,
		o.PaymentMethod,
		o.PaymentStatus,
		o.TotalAmount,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("order", "id", o.ID)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, variant_id, quantity, price_at_purchase)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.VariantID,
			item.Quantity,
			item.PriceAtPurchase,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its reference, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id,
	).Scan(
		&o.ID, &o.CustomerName, &o.Email, &o.Phone, &o.Address, &o.City,
		&o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.TotalAmount,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	itemsByOrder, err := r.loadOrderItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	o.Items = itemsByOrder[id]
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}

	return &o, nil
}

// List returns all orders newest-first with their items.
func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.CustomerName, &o.Email, &o.Phone, &o.Address, &o.City,
			&o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.TotalAmount,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		o.Items = []domain.OrderItem{}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load items for all orders in a single query to avoid N+1.
	if len(orders) > 0 {
		ids := make([]string, len(orders))
		for i := range orders {
			ids[i] = orders[i].ID
		}

		itemsByOrder, err := r.loadOrderItems(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range orders {
			if items, ok := itemsByOrder[orders[i].ID]; ok {
				orders[i].Items = items
			}
		}
	}

	return orders, nil
}

// UpdateStatus overwrites the status of an order. Any valid status replaces
// any other; there is no transition check here or anywhere above.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// loadOrderItems retrieves items for the given order references, enriched
// with the current product name and brand. Items whose product has been
// deleted keep empty name and brand.
func (r *OrderRepository) loadOrderItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.variant_id,
		       COALESCE(p.name, '') AS product_name, COALESCE(p.brand, '') AS brand,
		       oi.quantity, oi.price_at_purchase
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("batch load order items: %w", err)
	}
	defer rows.Close()

	itemsByOrder := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariantID,
			&item.ProductName,
			&item.Brand,
			&item.Quantity,
			&item.PriceAtPurchase,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return itemsByOrder, nil
}
