package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/apexplus/storefront/internal/domain"
	"github.com/apexplus/storefront/internal/repository"
	apperrors "github.com/apexplus/storefront/pkg/errors"
)

// MaxQuantityPerItem is the maximum quantity allowed for a single cart line.
const MaxQuantityPerItem = 100

// AddItemInput holds the parameters for adding an item to the cart.
// Quantity defaults to 1 when omitted.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=100"`
}

// CartService implements the business logic for session cart operations.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a session. Sessions without a cart get an
// empty one; the total is always derived from the line items on the way out.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// AddItem adds a product/variant to the session cart. An existing line for
// the same product and variant is merged: its quantity grows and its price
// snapshot refreshes to the product's current effective price.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", input.ProductID)
		}
		return nil, fmt.Errorf("get product for cart add: %w", err)
	}

	cart, err := s.getOrCreateCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	imageURL := ""
	if len(product.Images) > 0 {
		imageURL = product.Images[0]
	}

	if i := cart.FindItemIndex(input.ProductID, input.VariantID); i >= 0 {
		newQty := cart.Items[i].Quantity + input.Quantity
		if newQty > MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		cart.Items[i].Quantity = newQty
		cart.Items[i].Price = product.EffectivePrice()
		cart.Items[i].Name = product.Name
		cart.Items[i].Brand = product.Brand
		cart.Items[i].ImageURL = imageURL
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: input.ProductID,
			VariantID: input.VariantID,
			Name:      product.Name,
			Brand:     product.Brand,
			Price:     product.EffectivePrice(),
			Quantity:  input.Quantity,
			ImageURL:  imageURL,
		})
	}

	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", input.ProductID),
		slog.String("variant_id", input.VariantID),
		slog.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// RemoveItem removes the cart line at the given index. Indices outside the
// current item range leave the cart untouched and still succeed.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, index int) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.getOrCreateCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	before := len(cart.Items)
	cart.RemoveItem(index)
	if len(cart.Items) == before {
		return cart, nil
	}

	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.Int("index", index),
	)

	return cart, nil
}

// ClearCart removes the session's cart entirely.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
	)

	return nil
}

// getOrCreateCart retrieves the session cart, creating an empty one if it
// does not exist yet.
func (s *CartService) getOrCreateCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}
