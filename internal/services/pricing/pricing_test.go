package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"tableside/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// lines builds one quantity-1 cart line per price.
func lines(prices ...string) []models.CartLine {
	out := make([]models.CartLine, 0, len(prices))
	for i, p := range prices {
		out = append(out, models.CartLine{
			MenuItemID: string(rune('a' + i)),
			UnitPrice:  dec(p),
			Quantity:   1,
		})
	}
	return out
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name         string
		lines        []models.CartLine
		coupon       *models.Coupon
		wantSubtotal string
		wantDiscount string
		wantTotal    string
	}{
		{
			name:         "empty cart",
			lines:        nil,
			wantSubtotal: "0", wantDiscount: "0", wantTotal: "0",
		},
		{
			name:         "no coupon",
			lines:        lines("12.50", "7.50"),
			wantSubtotal: "20", wantDiscount: "0", wantTotal: "20",
		},
		{
			name: "quantity multiplies",
			lines: []models.CartLine{
				{MenuItemID: "burger", UnitPrice: dec("10"), Quantity: 2},
			},
			wantSubtotal: "20", wantDiscount: "0", wantTotal: "20",
		},
		{
			name:         "percentage coupon",
			lines:        lines("100"),
			coupon:       &models.Coupon{Code: "P20", Type: models.CouponPercentage, Value: dec("20")},
			wantSubtotal: "100", wantDiscount: "20", wantTotal: "80",
		},
		{
			name:         "percentage capped by max discount",
			lines:        lines("100"),
			coupon:       &models.Coupon{Code: "P20", Type: models.CouponPercentage, Value: dec("20"), MaxDiscount: decPtr("10")},
			wantSubtotal: "100", wantDiscount: "10", wantTotal: "90",
		},
		{
			name:         "fixed coupon",
			lines:        lines("100"),
			coupon:       &models.Coupon{Code: "F10", Type: models.CouponFixed, Value: dec("10")},
			wantSubtotal: "100", wantDiscount: "10", wantTotal: "90",
		},
		{
			name:         "fixed coupon clamped to subtotal",
			lines:        lines("30"),
			coupon:       &models.Coupon{Code: "F50", Type: models.CouponFixed, Value: dec("50")},
			wantSubtotal: "30", wantDiscount: "30", wantTotal: "0",
		},
		{
			name:         "free item coupon has no monetary discount",
			lines:        lines("30"),
			coupon:       &models.Coupon{Code: "FREEBIE", Type: models.CouponFreeItem, Value: dec("1")},
			wantSubtotal: "30", wantDiscount: "0", wantTotal: "30",
		},
		{
			name:         "unknown coupon type ignored",
			lines:        lines("30"),
			coupon:       &models.Coupon{Code: "X", Type: models.CouponType("mystery"), Value: dec("5")},
			wantSubtotal: "30", wantDiscount: "0", wantTotal: "30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := Price(tt.lines, tt.coupon)
			if !quote.Subtotal.Equal(dec(tt.wantSubtotal)) {
				t.Errorf("subtotal = %s, want %s", quote.Subtotal, tt.wantSubtotal)
			}
			if !quote.Discount.Equal(dec(tt.wantDiscount)) {
				t.Errorf("discount = %s, want %s", quote.Discount, tt.wantDiscount)
			}
			if !quote.Total.Equal(dec(tt.wantTotal)) {
				t.Errorf("total = %s, want %s", quote.Total, tt.wantTotal)
			}

			// Invariants hold for every case.
			if quote.Discount.IsNegative() {
				t.Errorf("discount is negative: %s", quote.Discount)
			}
			if quote.Discount.GreaterThan(quote.Subtotal) {
				t.Errorf("discount %s exceeds subtotal %s", quote.Discount, quote.Subtotal)
			}
			if !quote.Total.Equal(quote.Subtotal.Sub(quote.Discount)) {
				t.Errorf("total %s != subtotal %s - discount %s", quote.Total, quote.Subtotal, quote.Discount)
			}
			if quote.Total.IsNegative() {
				t.Errorf("total is negative: %s", quote.Total)
			}
		})
	}
}
