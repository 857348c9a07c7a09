package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartTotalAmount(t *testing.T) {
	cart := NewCart("sess-1")
	assert.Equal(t, int64(0), cart.TotalAmount())

	cart.Items = []CartItem{
		{ProductID: "p1", VariantID: "40", Price: 2500, Quantity: 2},
		{ProductID: "p2", VariantID: "42", Price: 1200, Quantity: 1},
	}

	assert.Equal(t, int64(6200), cart.TotalAmount())
	assert.Equal(t, 3, cart.ItemCount())
}

func TestCartFindItemIndex(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p1", VariantID: "40"},
			{ProductID: "p1", VariantID: "42"},
		},
	}

	assert.Equal(t, 0, cart.FindItemIndex("p1", "40"))
	assert.Equal(t, 1, cart.FindItemIndex("p1", "42"))
	assert.Equal(t, -1, cart.FindItemIndex("p2", "40"))
}

func TestCartRemoveItem(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p1", VariantID: "40"},
			{ProductID: "p2", VariantID: "42"},
			{ProductID: "p3", VariantID: "44"},
		},
	}

	cart.RemoveItem(1)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, "p1", cart.Items[0].ProductID)
	assert.Equal(t, "p3", cart.Items[1].ProductID)

	// Out-of-range indices are silent no-ops.
	cart.RemoveItem(-1)
	cart.RemoveItem(5)
	assert.Len(t, cart.Items, 2)
}
