// Package coupon validates coupon codes against the backend. Coupon
// eligibility depends on live usage counters and time windows, so every
// validation is a network round trip; nothing is cached.
package coupon

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"tableside/internal/api"
	"tableside/internal/logger"
	"tableside/internal/models"
)

// RejectionReason classifies why the server refused a coupon.
type RejectionReason string

const (
	ReasonInvalidCode       RejectionReason = "invalid_code"
	ReasonExpired           RejectionReason = "expired"
	ReasonUsageLimitReached RejectionReason = "usage_limit_reached"
	ReasonBelowMinimum      RejectionReason = "below_minimum"
	ReasonNotApplicable     RejectionReason = "not_applicable_to_customer"
)

// RejectionError is a structured coupon rejection with a user-facing
// message.
type RejectionError struct {
	Reason  RejectionReason
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("coupon rejected (%s): %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("coupon rejected (%s)", e.Reason)
}

// Validator round-trips coupon codes to the backend.
type Validator struct {
	client *api.Client
	logger *logger.Logger
}

// NewValidator creates a coupon validator.
func NewValidator(client *api.Client, log *logger.Logger) *Validator {
	return &Validator{
		client: client,
		logger: log,
	}
}

// Validate checks code against the backend for the given restaurant and
// current order amount. On success it returns the coupon descriptor; on
// refusal it returns a RejectionError.
func (v *Validator) Validate(ctx context.Context, code, restaurantID string, orderAmount decimal.Decimal) (*models.Coupon, error) {
	requestID := logger.GenerateRequestID()

	resp, err := v.client.ValidateCoupon(ctx, &api.ValidateCouponRequest{
		Code:         code,
		RestaurantID: restaurantID,
		OrderAmount:  orderAmount,
	}, requestID)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Kind == api.KindRejected {
			return nil, &RejectionError{Reason: ReasonInvalidCode, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("failed to validate coupon: %w", err)
	}

	if !resp.Valid {
		rejection := &RejectionError{Reason: parseReason(resp.Reason), Message: resp.Message}
		v.logger.Info("coupon_rejected", "Backend rejected coupon", requestID, map[string]interface{}{
			"code":   code,
			"reason": string(rejection.Reason),
		})
		return nil, rejection
	}

	if resp.Coupon == nil {
		return nil, fmt.Errorf("backend marked coupon valid but returned no descriptor")
	}

	v.logger.Info("coupon_applied", "Coupon validated", requestID, map[string]interface{}{
		"code": resp.Coupon.Code,
		"type": string(resp.Coupon.Type),
	})

	return resp.Coupon, nil
}

func parseReason(reason string) RejectionReason {
	switch RejectionReason(reason) {
	case ReasonExpired, ReasonUsageLimitReached, ReasonBelowMinimum, ReasonNotApplicable:
		return RejectionReason(reason)
	default:
		return ReasonInvalidCode
	}
}
