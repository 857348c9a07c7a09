package domain

import "time"

// Cart is a per-session shopping cart. It never exists independently of
// its session: reading an unknown session yields an empty cart.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is a product/variant line in the cart. Price is a snapshot of
// the product's effective price taken when the item was last added.
type CartItem struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Name      string `json:"name"`
	Brand     string `json:"brand,omitempty"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

// NewCart returns an empty cart for the given session.
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Items:     []CartItem{},
		UpdatedAt: time.Now().UTC(),
	}
}

// TotalAmount recomputes the cart total from its line items. The total is
// never stored; every read derives it fresh.
func (c *Cart) TotalAmount() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the cart item matching the given product
// and variant IDs. Returns -1 if not found.
func (c *Cart) FindItemIndex(productID, variantID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// RemoveItem deletes the item at the given index, preserving the order of
// the remaining items. Out-of-range indices are a silent no-op.
func (c *Cart) RemoveItem(index int) {
	if index < 0 || index >= len(c.Items) {
		return
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
}
