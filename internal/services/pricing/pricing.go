// Package pricing computes order totals. It is pure: no state, no
// network, no errors on well-formed input.
package pricing

import (
	"github.com/shopspring/decimal"

	"tableside/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// Quote is the derived price breakdown for a cart.
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Price derives subtotal, discount and total from the cart lines and an
// optional validated coupon. Guarantees: discount >= 0,
// discount <= subtotal, total = subtotal - discount.
func Price(lines []models.CartLine, coupon *models.Coupon) Quote {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal())
	}

	discount := discountFor(subtotal, coupon)
	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

func discountFor(subtotal decimal.Decimal, coupon *models.Coupon) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.Type {
	case models.CouponPercentage:
		discount = subtotal.Mul(coupon.Value).Div(oneHundred)
		if coupon.MaxDiscount != nil && discount.GreaterThan(*coupon.MaxDiscount) {
			discount = *coupon.MaxDiscount
		}
	case models.CouponFixed:
		discount = coupon.Value
	case models.CouponFreeItem:
		// The server applies the free item to the order; no monetary
		// discount on this side.
		return decimal.Zero
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}
