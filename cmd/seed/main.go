// Command seed populates the storefront database with the demo catalog:
// three categories with their subcategories and a small set of shoes.
// Safe to re-run; rows that already exist are skipped.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/apexplus/storefront/internal/config"
	"github.com/apexplus/storefront/internal/domain"
	"github.com/apexplus/storefront/internal/repository/postgres"
	"github.com/apexplus/storefront/migrations"
	"github.com/apexplus/storefront/pkg/database"
	apperrors "github.com/apexplus/storefront/pkg/errors"
	"github.com/apexplus/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("storefront-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	categories := postgres.NewCategoryRepository(pool)
	products := postgres.NewProductRepository(pool)

	var created, skipped int

	for _, c := range seedCategories() {
		err := categories.Create(ctx, c)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrAlreadyExists):
			skipped++
		default:
			log.Error("failed to seed category",
				slog.String("category_id", c.ID),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	for _, p := range seedProducts() {
		err := products.Create(ctx, p)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrAlreadyExists):
			skipped++
		default:
			log.Error("failed to seed product",
				slog.String("product_id", p.ID),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	log.Info("seed complete",
		slog.Int("created", created),
		slog.Int("skipped", skipped),
	)
}

func seedCategories() []*domain.Category {
	now := time.Now().UTC()
	cats := []*domain.Category{
		{
			ID:   "men",
			Name: "Men",
			Subcategories: []domain.Subcategory{
				{ID: "m-formal", Name: "Formal Shoes"},
				{ID: "m-sneakers", Name: "Sneakers"},
				{ID: "m-casual", Name: "Casual"},
				{ID: "m-boots", Name: "Boots"},
			},
		},
		{
			ID:   "women",
			Name: "Women",
			Subcategories: []domain.Subcategory{
				{ID: "w-heels", Name: "Heels"},
				{ID: "w-flats", Name: "Flats"},
				{ID: "w-sandals", Name: "Sandals"},
			},
		},
		{
			ID:   "kids",
			Name: "Kids",
			Subcategories: []domain.Subcategory{
				{ID: "k-school", Name: "School Shoes"},
				{ID: "k-casual", Name: "Casual"},
			},
		},
	}

	for _, c := range cats {
		c.CreatedAt = now
		c.UpdatedAt = now
		for i := range c.Subcategories {
			c.Subcategories[i].CategoryID = c.ID
			c.Subcategories[i].Position = i
		}
	}
	return cats
}

func discount(v int64) *int64 { return &v }

func seedProducts() []*domain.Product {
	now := time.Now().UTC()
	prods := []*domain.Product{
		{
			ID:            "1",
			Name:          "Classic Oxford Formal",
			Description:   "Genuine leather formal shoes for modern professionals. Breathable lining and anti-slip sole.",
			Price:         4500,
			DiscountPrice: discount(3800),
			CategoryID:    "men",
			SubcategoryID: "m-formal",
			Brand:         "Apex",
			Rating:        4.8,
			ReviewsCount:  124,
			Images: []string{
				"https://picsum.photos/seed/shoes1/600/600",
				"https://picsum.photos/seed/shoes2/600/600",
			},
			IsBestSeller: true,
			Variants: []domain.ProductVariant{
				{ID: "v1", Size: "40", Color: "Black", Stock: 15, SKU: "APX-M-BLK-40"},
				{ID: "v2", Size: "42", Color: "Black", Stock: 8, SKU: "APX-M-BLK-42"},
			},
		},
		{
			ID:            "2",
			Name:          "Stellar Run Sneakers",
			Description:   "Lightweight performance running shoes with reactive foam cushioning for maximum energy return.",
			Price:         3200,
			CategoryID:    "men",
			SubcategoryID: "m-sneakers",
			Brand:         "Sprint",
			Rating:        4.5,
			ReviewsCount:  89,
			Images:        []string{"https://picsum.photos/seed/shoes3/600/600"},
			IsNewArrival:  true,
			Variants:      []domain.ProductVariant{{ID: "v3", Size: "41", Color: "Blue", Stock: 20, SKU: "SPR-RN-BL-41"}},
		},
		{
			ID:            "3",
			Name:          "Elegance Stiletto",
			Description:   "High-heeled fashion for grand occasions. Comfort cushioned insole for all-night wear.",
			Price:         5500,
			DiscountPrice: discount(4200),
			CategoryID:    "women",
			SubcategoryID: "w-heels",
			Brand:         "Venturini",
			Rating:        4.9,
			ReviewsCount:  56,
			Images:        []string{"https://picsum.photos/seed/shoes4/600/600"},
			Variants:      []domain.ProductVariant{{ID: "v4", Size: "37", Color: "Red", Stock: 5, SKU: "VT-HE-RD-37"}},
		},
		{
			ID:            "4",
			Name:          "Urban Explorer Boots",
			Description:   "Rugged outdoor boots designed for heavy-duty use. Waterproof leather and reinforced stitching.",
			Price:         7800,
			DiscountPrice: discount(6500),
			CategoryID:    "men",
			SubcategoryID: "m-boots",
			Brand:         "Apex",
			Rating:        4.7,
			ReviewsCount:  42,
			Images:        []string{"https://picsum.photos/seed/shoes5/600/600"},
			Variants:      []domain.ProductVariant{{ID: "v5", Size: "42", Color: "Tan", Stock: 12, SKU: "APX-BT-TN-42"}},
		},
		{
			ID:            "5",
			Name:          "Velvet Flat Ballerinas",
			Description:   "Chic and comfortable flats for daily wear. Soft velvet exterior and flexible sole.",
			Price:         2400,
			CategoryID:    "women",
			SubcategoryID: "w-flats",
			Brand:         "Nino Rossi",
			Rating:        4.3,
			ReviewsCount:  78,
			Images:        []string{"https://picsum.photos/seed/shoes6/600/600"},
			Variants:      []domain.ProductVariant{{ID: "v6", Size: "38", Color: "Black", Stock: 25, SKU: "NR-FB-BLK-38"}},
		},
		{
			ID:            "6",
			Name:          "Junior Spark Sneakers",
			Description:   "Vibrant and durable sneakers for active kids. Easy-strap closure for independent wear.",
			Price:         1800,
			CategoryID:    "kids",
			SubcategoryID: "k-casual",
			Brand:         "Sprint",
			Rating:        4.6,
			ReviewsCount:  156,
			Images:        []string{"https://picsum.photos/seed/shoes7/600/600"},
			Variants:      []domain.ProductVariant{{ID: "v7", Size: "32", Color: "Multicolor", Stock: 40, SKU: "SPR-K-MC-32"}},
		},
		{
			ID:            "7",
			Name:          "Monk Strap Professional",
			Description:   "Sophisticated monk strap shoes for a sharp business look. Hand-burnished finish.",
			Price:         5200,
			CategoryID:    "men",
			SubcategoryID: "m-formal",
			Brand:         "Venturini",
			Rating:        4.8,
			ReviewsCount:  31,
			Images:        []string{"https://picsum.photos/seed/shoes8/600/600"},
			Variants:      []domain.ProductVariant{{ID: "v8", Size: "41", Color: "Dark Brown", Stock: 10, SKU: "VT-MS-DB-41"}},
		},
		{
			ID:            "8",
			Name:          "Glamour Platform Sandals",
			Description:   "Stylish platform sandals for summer parties. Trendy ankle strap and comfortable height.",
			Price:         3800,
			CategoryID:    "women",
			SubcategoryID: "w-sandals",
			Brand:         "Nino Rossi",
			Rating:        4.4,
			ReviewsCount:  63,
			Images:        []string{"https://picsum.photos/seed/shoes9/600/600"},
			Variants:      []domain.ProductVariant{{ID: "v9", Size: "38", Color: "Gold", Stock: 18, SKU: "NR-PS-GD-38"}},
		},
	}

	for _, p := range prods {
		p.CreatedAt = now
		p.UpdatedAt = now
	}
	return prods
}
