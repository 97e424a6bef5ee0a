package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartLine represents one distinct menu item and its quantity in an
// in-progress order. A cart holds at most one line per menu item.
type CartLine struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
}

// Subtotal returns unit price times quantity for this line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Validate checks the line invariants.
func (l CartLine) Validate() error {
	if l.MenuItemID == "" {
		return ValidationError{Field: "menu_item_id", Message: "menu item id is required"}
	}
	if l.Quantity < 1 {
		return ValidationError{Field: "quantity", Message: "quantity must be at least 1"}
	}
	if l.UnitPrice.IsNegative() {
		return ValidationError{Field: "unit_price", Message: "unit price must not be negative"}
	}
	return nil
}

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
