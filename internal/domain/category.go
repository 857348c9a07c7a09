package domain

import (
	"strings"
	"time"
)

// Category groups products under a slug identifier derived from its name.
// The slug is generated once at creation time; renaming a category keeps
// the original slug so product references stay intact.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Subcategory is an ordered child entry of a category.
type Subcategory struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	Position   int    `json:"position"`
}

// NormalizeCategoryID canonicalizes a category reference for comparison
// and storage. Category slugs are always lowercase.
func NormalizeCategoryID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
