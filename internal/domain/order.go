package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Order status constants.
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// Payment status constants.
const (
	PaymentStatusPaid   = "Paid"
	PaymentStatusUnpaid = "Unpaid"
)

// Payment methods accepted at checkout. COD orders stay unpaid until the
// courier collects.
const (
	PaymentMethodCOD   = "COD"
	PaymentMethodBkash = "bKash"
	PaymentMethodNagad = "Nagad"
	PaymentMethodCard  = "Card"
)

// Defaults applied to checkout submissions with missing customer fields.
const (
	DefaultCustomerName = "Guest"
	DefaultPhone        = "00000000"
	DefaultAddress      = "N/A"
	DefaultCity         = "Dhaka"
)

// Order represents a placed customer order.
type Order struct {
	ID            string      `json:"id"`
	CustomerName  string      `json:"customer_name"`
	Email         string      `json:"email,omitempty"`
	Phone         string      `json:"phone"`
	Address       string      `json:"address"`
	City          string      `json:"city"`
	Status        string      `json:"status"`
	PaymentMethod string      `json:"payment_method"`
	PaymentStatus string      `json:"payment_status"`
	TotalAmount   int64       `json:"total_amount"`
	Items         []OrderItem `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem is a line item captured at purchase time. ProductName and Brand
// are enriched from the catalog on reads; PriceAtPurchase is whatever the
// client submitted.
type OrderItem struct {
	ID              string `json:"id"`
	OrderID         string `json:"order_id"`
	ProductID       string `json:"product_id"`
	VariantID       string `json:"variant_id"`
	ProductName     string `json:"product_name,omitempty"`
	Brand           string `json:"brand,omitempty"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase int64  `json:"price_at_purchase"`
}

// NewOrderID generates a short human-readable order reference of the form
// "#APX-NNNN" where NNNN is in [1000, 9998].
func NewOrderID() string {
	return fmt.Sprintf("#APX-%d", 1000+rand.IntN(8999)) // #nosec G404 -- order references are not security tokens
}

// PaymentStatusFor returns the payment status recorded for the given
// payment method: everything is Paid except cash on delivery. The method
// is compared case-insensitively so "cod" submissions stay unpaid too.
func PaymentStatusFor(method string) string {
	if strings.EqualFold(method, PaymentMethodCOD) {
		return PaymentStatusUnpaid
	}
	return PaymentStatusPaid
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidStatus checks if a status string is valid. Any valid status may
// replace any other; there is no transition graph.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether the status marks the end of fulfillment.
// Informational only: updates to terminal orders are still accepted.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}
