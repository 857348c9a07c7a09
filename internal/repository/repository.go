package repository

import (
	"context"

	"github.com/apexplus/storefront/internal/domain"
)

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	// Create inserts a new category and its subcategories atomically.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its slug, including subcategories.
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// List returns all categories with their subcategories.
	List(ctx context.Context) ([]*domain.Category, error)

	// Update renames a category and replaces its subcategories. The slug
	// is never changed.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category and its subcategories. Products referencing
	// the slug are left untouched.
	Delete(ctx context.Context, id string) error

	// Exists reports whether a category with the given slug exists.
	Exists(ctx context.Context, id string) (bool, error)
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product with its images and variants atomically.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by ID with images, variants, and its
	// category display label.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the filter, ordered per its sort option.
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)

	// Update replaces a product's fields, images, and variants atomically.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product with its images and variants. Order history
	// referencing the product is left untouched.
	Delete(ctx context.Context, id string) error
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order and its items into the store atomically.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its reference, including items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns all orders newest-first, items enriched with product
	// name and brand from the catalog.
	List(ctx context.Context) ([]*domain.Order, error)

	// UpdateStatus overwrites the status of an order.
	UpdateStatus(ctx context.Context, id string, status string) error
}

// CartRepository defines the interface for session cart persistence.
type CartRepository interface {
	// Get retrieves the cart for a session. Returns ErrNotFound when the
	// session has no cart yet.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save stores the cart, refreshing its TTL.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart for a session.
	Delete(ctx context.Context, sessionID string) error
}
