package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexplus/storefront/internal/domain"
	"github.com/apexplus/storefront/pkg/database"
	apperrors "github.com/apexplus/storefront/pkg/errors"
)

func newProductTestRepo(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewProductRepository(mock)
	return repo, mock
}

func sampleProduct() *domain.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	discount := int64(2400)
	return &domain.Product{
		ID:            "prod-001",
		Name:          "Air Runner",
		Description:   "Lightweight daily trainer",
		Price:         3000,
		DiscountPrice: &discount,
		CategoryID:    "sneakers",
		SubcategoryID: "running",
		Brand:         "Apex",
		Rating:        4.5,
		ReviewsCount:  120,
		Images:        []string{"https://cdn.example.com/air-runner-1.jpg", "https://cdn.example.com/air-runner-2.jpg"},
		Variants:      domain.DefaultVariants("prod-001"),
		IsNewArrival:  true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func expectProductInsert(mock pgxmock.PgxPoolIface, p *domain.Product) {
	mock.ExpectExec("INSERT INTO products").
		WithArgs(
			p.ID, p.Name, p.Description, p.Price, p.DiscountPrice,
			p.CategoryID, p.SubcategoryID, p.Brand, p.Rating, p.ReviewsCount,
			p.IsNewArrival, p.IsBestSeller, p.CreatedAt, p.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

// --- Create Tests ---

func TestProductRepository_Create_Success(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	p := sampleProduct()

	mock.ExpectBegin()
	expectProductInsert(mock, p)

	for i, url := range p.Images {
		mock.ExpectExec("INSERT INTO product_images").
			WithArgs(p.ID, i, url).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	for i, v := range p.Variants {
		mock.ExpectExec("INSERT INTO product_variants").
			WithArgs(p.ID, i, v.ID, v.Size, v.Color, v.Stock, v.SKU).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	mock.ExpectCommit()

	err := repo.Create(context.Background(), p)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create_ImageInsertError_RollsBack(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	p := sampleProduct()

	mock.ExpectBegin()
	expectProductInsert(mock, p)

	// First image fails; the product row must roll back with it.
	mock.ExpectExec("INSERT INTO product_images").
		WithArgs(p.ID, 0, p.Images[0]).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert product image")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create_DuplicateID(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	p := sampleProduct()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products").
		WithArgs(
			p.ID, p.Name, p.Description, p.Price, p.DiscountPrice,
			p.CategoryID, p.SubcategoryID, p.Brand, p.Rating, p.ReviewsCount,
			p.IsNewArrival, p.IsBestSeller, p.CreatedAt, p.UpdatedAt,
		).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), p)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- GetByID Tests ---

func TestProductRepository_GetByID_Success(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	now := time.Now().UTC().Truncate(time.Microsecond)
	discount := int64(2400)

	productRows := pgxmock.NewRows([]string{
		"id", "name", "description", "price", "discount_price",
		"category_id", "category_label", "subcategory_id", "brand", "rating", "reviews_count",
		"is_new_arrival", "is_best_seller", "created_at", "updated_at",
	}).AddRow(
		"prod-001", "Air Runner", "Lightweight daily trainer", int64(3000), &discount,
		"sneakers", "Sneakers", "running", "Apex", 4.5, 120,
		true, false, now, now,
	)

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs("prod-001").
		WillReturnRows(productRows)

	imageRows := pgxmock.NewRows([]string{"product_id", "url"}).
		AddRow("prod-001", "https://cdn.example.com/air-runner-1.jpg")
	mock.ExpectQuery("SELECT .+ FROM product_images").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(imageRows)

	variantRows := pgxmock.NewRows([]string{"product_id", "variant_id", "size", "color", "stock", "sku"}).
		AddRow("prod-001", "v1", "40", "Default", 10, "SKU-prod-001-40").
		AddRow("prod-001", "v2", "42", "Default", 10, "SKU-prod-001-42")
	mock.ExpectQuery("SELECT .+ FROM product_variants").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(variantRows)

	p, err := repo.GetByID(context.Background(), "prod-001")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "Air Runner", p.Name)
	assert.Equal(t, "Sneakers", p.CategoryLabel)
	assert.Equal(t, int64(2400), p.EffectivePrice())
	require.Len(t, p.Images, 1)
	require.Len(t, p.Variants, 2)
	assert.Equal(t, "v1", p.Variants[0].ID)
	assert.Equal(t, "40", p.Variants[0].Size)
	assert.Equal(t, 10, p.Variants[0].Stock)
	assert.Equal(t, "SKU-prod-001-40", p.Variants[0].SKU)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_OrphanedCategory(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	now := time.Now().UTC().Truncate(time.Microsecond)

	// Category was deleted: COALESCE falls back to the raw slug as label.
	productRows := pgxmock.NewRows([]string{
		"id", "name", "description", "price", "discount_price",
		"category_id", "category_label", "subcategory_id", "brand", "rating", "reviews_count",
		"is_new_arrival", "is_best_seller", "created_at", "updated_at",
	}).AddRow(
		"prod-002", "Trail Blazer", "", int64(5200), (*int64)(nil),
		"hiking-boots", "hiking-boots", "", "Apex", 0.0, 0,
		false, false, now, now,
	)

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs("prod-002").
		WillReturnRows(productRows)

	mock.ExpectQuery("SELECT .+ FROM product_images").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "url"}))

	mock.ExpectQuery("SELECT .+ FROM product_variants").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "variant_id", "size", "color", "stock", "sku"}))

	p, err := repo.GetByID(context.Background(), "prod-002")
	require.NoError(t, err)

	assert.Equal(t, "hiking-boots", p.CategoryID)
	assert.Equal(t, "hiking-boots", p.CategoryLabel)
	assert.NotNil(t, p.Images)
	assert.NotNil(t, p.Variants)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	p, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, p)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- List Tests ---

func TestProductRepository_List_WithFilters(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	now := time.Now().UTC().Truncate(time.Microsecond)

	productRows := pgxmock.NewRows([]string{
		"id", "name", "description", "price", "discount_price",
		"category_id", "category_label", "subcategory_id", "brand", "rating", "reviews_count",
		"is_new_arrival", "is_best_seller", "created_at", "updated_at",
	}).AddRow(
		"prod-001", "Air Runner", "", int64(3000), (*int64)(nil),
		"sneakers", "Sneakers", "", "Apex", 4.5, 120,
		false, true, now, now,
	)

	// Category filter is normalized to lowercase before hitting SQL.
	mock.ExpectQuery("SELECT .+ FROM products").
		WithArgs("sneakers", "%runner%", int64(5000)).
		WillReturnRows(productRows)

	mock.ExpectQuery("SELECT .+ FROM product_images").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "url"}))

	mock.ExpectQuery("SELECT .+ FROM product_variants").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "variant_id", "size", "color", "stock", "sku"}))

	filter := domain.ProductFilter{
		CategoryID: "  Sneakers ",
		Search:     "runner",
		MaxPrice:   5000,
		Sort:       domain.SortPopular,
	}
	products, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "prod-001", products[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_Empty(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	productRows := pgxmock.NewRows([]string{
		"id", "name", "description", "price", "discount_price",
		"category_id", "category_label", "subcategory_id", "brand", "rating", "reviews_count",
		"is_new_arrival", "is_best_seller", "created_at", "updated_at",
	})

	mock.ExpectQuery("SELECT .+ FROM products").
		WillReturnRows(productRows)

	products, err := repo.List(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NotNil(t, products)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Update Tests ---

func TestProductRepository_Update_Success(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	p := sampleProduct()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").
		WithArgs(
			p.Name, p.Description, p.Price, p.DiscountPrice,
			p.CategoryID, p.SubcategoryID, p.Brand, p.Rating,
			p.ReviewsCount, p.IsNewArrival, p.IsBestSeller, p.UpdatedAt,
			p.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectExec("DELETE FROM product_images").
		WithArgs(p.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM product_variants").
		WithArgs(p.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	for i, url := range p.Images {
		mock.ExpectExec("INSERT INTO product_images").
			WithArgs(p.ID, i, url).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	for i, v := range p.Variants {
		mock.ExpectExec("INSERT INTO product_variants").
			WithArgs(p.ID, i, v.ID, v.Size, v.Color, v.Stock, v.SKU).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	mock.ExpectCommit()

	err := repo.Update(context.Background(), p)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	p := sampleProduct()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").
		WithArgs(
			p.Name, p.Description, p.Price, p.DiscountPrice,
			p.CategoryID, p.SubcategoryID, p.Brand, p.Rating,
			p.ReviewsCount, p.IsNewArrival, p.IsBestSeller, p.UpdatedAt,
			p.ID,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), p)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Delete Tests ---

func TestProductRepository_Delete_Success(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM product_images").
		WithArgs("prod-001").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM product_variants").
		WithArgs("prod-001").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM products").
		WithArgs("prod-001").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "prod-001")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newProductTestRepo(t)
	defer mock.ExpectationsWereMet()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM product_images").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM product_variants").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM products").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
