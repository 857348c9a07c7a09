package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/apexplus/storefront/internal/domain"
	"github.com/apexplus/storefront/pkg/database"
	apperrors "github.com/apexplus/storefront/pkg/errors"
)

// productColumns selects product fields plus the category display label.
// The LEFT JOIN keeps products whose category was deleted visible; their raw
// category slug doubles as the label.
const productColumns = `
	p.id, p.name, p.description, p.price, p.discount_price,
	p.category_id, COALESCE(c.name, p.category_id) AS category_label,
	p.subcategory_id, p.brand, p.rating, p.reviews_count,
	p.is_new_arrival, p.is_best_seller, p.created_at, p.updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a product with its images and variants within a transaction.
// A failure on any row leaves no trace of the product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO products (id, name, description, price, discount_price, category_id, subcategory_id, brand, rating, reviews_count, is_new_arrival, is_best_seller, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.Name, p.Description, p.Price, p.DiscountPrice,
		p.CategoryID, p.SubcategoryID, p.Brand, p.Rating, p.ReviewsCount,
		p.IsNewArrival, p.IsBestSeller, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "id", p.ID)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	if err := insertProductChildren(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// insertProductChildren writes the ordered image and variant rows for a product.
func insertProductChildren(ctx context.Context, tx pgx.Tx, p *domain.Product) error {
	for i, url := range p.Images {
		_, err := tx.Exec(ctx,
			`INSERT INTO product_images (product_id, position, url) VALUES ($1, $2, $3)`,
			p.ID, i, url,
		)
		if err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}

	for i, v := range p.Variants {
		_, err := tx.Exec(ctx,
			`INSERT INTO product_variants (product_id, position, variant_id, size, color, stock, sku) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, i, v.ID, v.Size, v.Color, v.Stock, v.SKU,
		)
		if err != nil {
			return fmt.Errorf("insert product variant: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a product by ID with its images and variants.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`

	var p domain.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.DiscountPrice,
		&p.CategoryID, &p.CategoryLabel,
		&p.SubcategoryID, &p.Brand, &p.Rating, &p.ReviewsCount,
		&p.IsNewArrival, &p.IsBestSeller, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	if err := r.loadChildren(ctx, []*domain.Product{&p}); err != nil {
		return nil, err
	}

	return &p, nil
}

// List returns products matching the filter with images and variants attached.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.CategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argIndex))
		args = append(args, domain.NormalizeCategoryID(filter.CategoryID))
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.brand ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.MaxPrice > 0 {
		conditions = append(conditions, fmt.Sprintf("COALESCE(p.discount_price, p.price) <= $%d", argIndex))
		args = append(args, filter.MaxPrice)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY %s`,
		productColumns, whereClause, orderClause(filter.Sort),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.DiscountPrice,
			&p.CategoryID, &p.CategoryLabel,
			&p.SubcategoryID, &p.Brand, &p.Rating, &p.ReviewsCount,
			&p.IsNewArrival, &p.IsBestSeller, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	if len(products) > 0 {
		if err := r.loadChildren(ctx, products); err != nil {
			return nil, err
		}
	}

	return products, nil
}

// orderClause maps a sort option to a SQL ORDER BY expression. Unknown
// options fall back to newest-first.
func orderClause(sort string) string {
	switch sort {
	case domain.SortPriceLow:
		return "COALESCE(p.discount_price, p.price) ASC"
	case domain.SortPriceHigh:
		return "COALESCE(p.discount_price, p.price) DESC"
	case domain.SortPopular:
		return "p.reviews_count DESC"
	case domain.SortNewArrivals:
		return "p.is_new_arrival DESC, p.created_at DESC"
	default:
		return "p.created_at DESC"
	}
}

// Update replaces a product's fields and rebuilds its image and variant rows
// within a transaction.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		`UPDATE products
		 SET name = $1, description = $2, price = $3, discount_price = $4,
		     category_id = $5, subcategory_id = $6, brand = $7, rating = $8,
		     reviews_count = $9, is_new_arrival = $10, is_best_seller = $11, updated_at = $12
		 WHERE id = $13`,
		p.Name, p.Description, p.Price, p.DiscountPrice,
		p.CategoryID, p.SubcategoryID, p.Brand, p.Rating,
		p.ReviewsCount, p.IsNewArrival, p.IsBestSeller, p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("delete product images: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, p.ID); err != nil {
		return fmt.Errorf("delete product variants: %w", err)
	}

	if err := insertProductChildren(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete removes a product and its image and variant rows. Order items keep
// their product_id reference for history.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("delete product images: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("delete product variants: %w", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// loadChildren batch-loads image and variant rows for the given products in
// two queries to avoid N+1.
func (r *ProductRepository) loadChildren(ctx context.Context, products []*domain.Product) error {
	ids := make([]string, len(products))
	byID := make(map[string]*domain.Product, len(products))
	for i, p := range products {
		ids[i] = p.ID
		byID[p.ID] = p
		p.Images = []string{}
		p.Variants = []domain.ProductVariant{}
	}

	imageRows, err := r.pool.Query(ctx,
		`SELECT product_id, url FROM product_images WHERE product_id = ANY($1) ORDER BY position`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("batch load product images: %w", err)
	}
	defer imageRows.Close()

	for imageRows.Next() {
		var productID, url string
		if err := imageRows.Scan(&productID, &url); err != nil {
			return fmt.Errorf("scan product image: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Images = append(p.Images, url)
		}
	}
	if err := imageRows.Err(); err != nil {
		return fmt.Errorf("iterate product image rows: %w", err)
	}

	variantRows, err := r.pool.Query(ctx,
		`SELECT product_id, variant_id, size, color, stock, sku FROM product_variants WHERE product_id = ANY($1) ORDER BY position`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("batch load product variants: %w", err)
	}
	defer variantRows.Close()

	for variantRows.Next() {
		var productID string
		var v domain.ProductVariant
		if err := variantRows.Scan(&productID, &v.ID, &v.Size, &v.Color, &v.Stock, &v.SKU); err != nil {
			return fmt.Errorf("scan product variant: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	if err := variantRows.Err(); err != nil {
		return fmt.Errorf("iterate product variant rows: %w", err)
	}

	return nil
}
