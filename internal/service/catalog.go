package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/apexplus/storefront/internal/domain"
	"github.com/apexplus/storefront/internal/repository"
	apperrors "github.com/apexplus/storefront/pkg/errors"
	"github.com/apexplus/storefront/pkg/slug"
)

// productEventPublisher is the slice of the event producer the catalog
// service needs.
type productEventPublisher interface {
	PublishProductUpserted(ctx context.Context, product *domain.Product) error
}

// SubcategoryInput describes a subcategory inside a category payload.
type SubcategoryInput struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

// CreateCategoryInput holds the parameters for creating a category.
type CreateCategoryInput struct {
	Name          string             `json:"name" validate:"required,min=2,max=100"`
	Subcategories []SubcategoryInput `json:"subcategories" validate:"dive"`
}

// UpdateCategoryInput holds the parameters for updating a category. The slug
// is fixed at creation; only the display name and subcategory set change.
type UpdateCategoryInput struct {
	Name          string             `json:"name" validate:"required,min=2,max=100"`
	Subcategories []SubcategoryInput `json:"subcategories" validate:"dive"`
}

// ProductInput holds the parameters for creating or replacing a product.
type ProductInput struct {
	ID            string                  `json:"id" validate:"required"`
	Name          string                  `json:"name" validate:"required,min=2,max=200"`
	Description   string                  `json:"description"`
	Price         int64                   `json:"price" validate:"required,gt=0"`
	DiscountPrice *int64                  `json:"discount_price"`
	CategoryID    string                  `json:"category_id" validate:"required"`
	SubcategoryID string                  `json:"subcategory_id"`
	Brand         string                  `json:"brand"`
	Rating        *float64                `json:"rating"`
	ReviewsCount  *int                    `json:"reviews_count"`
	Images        []string                `json:"images"`
	Variants      []domain.ProductVariant `json:"variants"`
	IsNewArrival  bool                    `json:"is_new_arrival"`
	IsBestSeller  bool                    `json:"is_best_seller"`
}

// CatalogService implements the business logic for category and product
// management.
type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	events     productEventPublisher
	logger     *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	events productEventPublisher,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		events:     events,
		logger:     logger,
	}
}

// CreateCategory creates a category. Its id is a slug derived from the name
// and never changes afterwards, even if the category is renamed.
func (s *CatalogService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:            slug.Generate(name),
		Name:          name,
		Subcategories: buildSubcategories(slug.Generate(name), input.Subcategories),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("name", category.Name),
	)

	return category, nil
}

// GetCategory retrieves a category by its slug id.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("category id is required")
	}
	return s.categories.GetByID(ctx, domain.NormalizeCategoryID(id))
}

// ListCategories returns all categories with their subcategories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

// UpdateCategory renames a category and replaces its subcategory set. The
// slug id stays as it was at creation.
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) (*domain.Category, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("category id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}

	id = domain.NormalizeCategoryID(id)

	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = name
	existing.Subcategories = buildSubcategories(id, input.Subcategories)
	existing.UpdatedAt = time.Now().UTC()

	if err := s.categories.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category updated",
		slog.String("category_id", id),
		slog.String("name", name),
	)

	return existing, nil
}

// DeleteCategory deletes a category and its subcategories. Products keep
// their category_id and fall back to showing the raw id as their label.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("category id is required")
	}

	if err := s.categories.Delete(ctx, domain.NormalizeCategoryID(id)); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
	)

	return nil
}

// CreateProduct creates a product. Blank image slots are dropped, a
// placeholder fills in when no usable image remains, and products without
// variants get the default size set.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := s.validateProductInput(ctx, &input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:            input.ID,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		DiscountPrice: input.DiscountPrice,
		CategoryID:    domain.NormalizeCategoryID(input.CategoryID),
		SubcategoryID: input.SubcategoryID,
		Brand:         input.Brand,
		Images:        normalizeImages(input.Images),
		Variants:      input.Variants,
		IsNewArrival:  input.IsNewArrival,
		IsBestSeller:  input.IsBestSeller,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if input.ReviewsCount != nil {
		product.ReviewsCount = *input.ReviewsCount
	}
	if len(product.Variants) == 0 {
		product.Variants = domain.DefaultVariants(product.ID)
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.publishProductUpserted(ctx, product)

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("category_id", product.CategoryID),
	)

	return product, nil
}

// GetProduct retrieves a product by id with its images and variants.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	return s.products.GetByID(ctx, id)
}

// ListProducts returns products matching the filter.
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	if filter.MaxPrice < 0 {
		return nil, apperrors.InvalidInput("max price must not be negative")
	}
	filter.CategoryID = domain.NormalizeCategoryID(filter.CategoryID)
	return s.products.List(ctx, filter)
}

// UpdateProduct replaces a product's editable fields. Omitted variants,
// rating and reviews count carry over from the stored row so the admin
// editor can submit partial payloads.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	input.ID = id
	if err := s.validateProductInput(ctx, &input); err != nil {
		return nil, err
	}

	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = input.Description
	existing.Price = input.Price
	existing.DiscountPrice = input.DiscountPrice
	existing.CategoryID = domain.NormalizeCategoryID(input.CategoryID)
	existing.SubcategoryID = input.SubcategoryID
	existing.Brand = input.Brand
	existing.Images = normalizeImages(input.Images)
	existing.IsNewArrival = input.IsNewArrival
	existing.IsBestSeller = input.IsBestSeller
	existing.UpdatedAt = time.Now().UTC()

	if len(input.Variants) > 0 {
		existing.Variants = input.Variants
	}
	if input.Rating != nil {
		existing.Rating = *input.Rating
	}
	if input.ReviewsCount != nil {
		existing.ReviewsCount = *input.ReviewsCount
	}

	if err := s.products.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.publishProductUpserted(ctx, existing)

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", id),
	)

	return existing, nil
}

// DeleteProduct removes a product with its images and variants.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("product id is required")
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

func (s *CatalogService) validateProductInput(ctx context.Context, input *ProductInput) error {
	if input.ID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.InvalidInput("product name is required")
	}
	if input.Price <= 0 {
		return apperrors.InvalidInput("price must be greater than zero")
	}
	if input.DiscountPrice != nil && *input.DiscountPrice <= 0 {
		return apperrors.InvalidInput("discount price must be greater than zero")
	}
	if input.DiscountPrice != nil && *input.DiscountPrice > input.Price {
		return apperrors.InvalidInput("discount price must not exceed price")
	}
	if input.CategoryID == "" {
		return apperrors.InvalidInput("category id is required")
	}

	exists, err := s.categories.Exists(ctx, domain.NormalizeCategoryID(input.CategoryID))
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return apperrors.InvalidInput(fmt.Sprintf("category %q does not exist", input.CategoryID))
	}

	return nil
}

// publishProductUpserted emits the catalog change event. Publish failures
// are logged and swallowed so catalog writes never depend on the broker.
func (s *CatalogService) publishProductUpserted(ctx context.Context, product *domain.Product) {
	if err := s.events.PublishProductUpserted(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.upserted event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}
}

// buildSubcategories assigns slug ids to subcategories missing one and
// stamps the owning category.
func buildSubcategories(categoryID string, inputs []SubcategoryInput) []domain.Subcategory {
	subs := make([]domain.Subcategory, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}
		id := in.ID
		if id == "" {
			id = slug.Generate(name)
		}
		subs = append(subs, domain.Subcategory{
			ID:         id,
			Name:       name,
			CategoryID: categoryID,
			Position:   i,
		})
	}
	return subs
}

// normalizeImages drops blank slots, caps the list at the editor's slot
// count, and falls back to the placeholder when nothing usable remains.
func normalizeImages(images []string) []string {
	out := make([]string, 0, domain.MaxProductImages)
	for _, img := range images {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		out = append(out, img)
		if len(out) == domain.MaxProductImages {
			break
		}
	}
	if len(out) == 0 {
		out = append(out, domain.PlaceholderImageURL)
	}
	return out
}
