package domain

import "time"

// PlaceholderImageURL is substituted when a product is saved without any
// usable image URLs so the storefront always has something to render.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1542291026-7eec264c27ff?auto=format&fit=crop&q=80&w=600"

// MaxProductImages is the number of image slots the admin editor exposes.
const MaxProductImages = 4

// Product is a catalog entry. Prices are whole BDT amounts.
type Product struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int64  `json:"price"`
	DiscountPrice *int64 `json:"discount_price,omitempty"`
	CategoryID    string `json:"category_id"`
	// CategoryLabel is the display name of the category, or the raw
	// category id when the category has been deleted.
	CategoryLabel string           `json:"category_label"`
	SubcategoryID string           `json:"subcategory_id,omitempty"`
	Brand         string           `json:"brand"`
	Rating        float64          `json:"rating"`
	ReviewsCount  int              `json:"reviews_count"`
	Images        []string         `json:"images"`
	Variants      []ProductVariant `json:"variants"`
	IsNewArrival  bool             `json:"is_new_arrival"`
	IsBestSeller  bool             `json:"is_best_seller"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ProductVariant is a purchasable size/color combination of a product with
// its own stock and SKU. Stock is informational: placing an order does not
// decrement it.
type ProductVariant struct {
	ID    string `json:"id"`
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
	SKU   string `json:"sku"`
}

// DefaultVariants returns the placeholder size entries assigned to products
// created without any variants of their own.
func DefaultVariants(productID string) []ProductVariant {
	return []ProductVariant{
		{ID: "v1", Size: "40", Color: "Default", Stock: 10, SKU: "SKU-" + productID + "-40"},
		{ID: "v2", Size: "42", Color: "Default", Stock: 10, SKU: "SKU-" + productID + "-42"},
	}
}

// EffectivePrice returns the discount price when one is set, otherwise
// the regular price.
func (p *Product) EffectivePrice() int64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// Sort options accepted by the product listing.
const (
	SortNewest      = "newest"
	SortPriceLow    = "price-low"
	SortPriceHigh   = "price-high"
	SortPopular     = "popular"
	SortNewArrivals = "new-arrivals"
)

// ProductFilter narrows and orders a product listing.
type ProductFilter struct {
	CategoryID string
	Search     string
	MaxPrice   int64
	Sort       string
}
