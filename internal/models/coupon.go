package models

import "github.com/shopspring/decimal"

// CouponType represents the discount mechanism of a coupon.
type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
	CouponFreeItem   CouponType = "freeItem"
)

// Coupon represents a server-issued discount rule. Coupons are read-only
// on the client; eligibility is always decided by the server.
type Coupon struct {
	Code           string           `json:"code"`
	Type           CouponType       `json:"type"`
	Value          decimal.Decimal  `json:"value"`
	MinOrderAmount *decimal.Decimal `json:"minOrderAmount,omitempty"`
	MaxDiscount    *decimal.Decimal `json:"maxDiscount,omitempty"`
}

// MeetsMinimum reports whether the given order amount satisfies the
// coupon's minimum order requirement.
func (c *Coupon) MeetsMinimum(amount decimal.Decimal) bool {
	if c.MinOrderAmount == nil {
		return true
	}
	return amount.GreaterThanOrEqual(*c.MinOrderAmount)
}
