// Package checkout assembles and submits orders. Submission is a
// financial action: it is never retried automatically and at most one
// attempt is in flight at a time.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tableside/internal/api"
	"tableside/internal/logger"
	"tableside/internal/models"
	"tableside/internal/services/cart"
	"tableside/internal/services/coupon"
	"tableside/internal/services/pricing"
)

var (
	// ErrEmptyCart is returned when submitting with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoSession is returned when submitting without a table session.
	ErrNoSession = errors.New("no table session")
	// ErrSubmitInFlight is returned while a prior submission is still
	// unresolved. The caller should wait, not retry.
	ErrSubmitInFlight = errors.New("a submission is already in flight")
)

// Result is the outcome of a successful submission.
type Result struct {
	Order *models.Order
	// LocalQuote is the price the client computed before submitting.
	// The server's totals are authoritative; the quote is kept for
	// display and for mismatch detection.
	LocalQuote pricing.Quote
	// TotalMismatch is set when the server's total disagrees with the
	// local quote. Non-fatal; the server total wins.
	TotalMismatch bool
}

// Orchestrator submits orders exactly once per user intent.
type Orchestrator struct {
	client *api.Client
	logger *logger.Logger

	mu       sync.Mutex
	inFlight bool
}

// NewOrchestrator creates a checkout orchestrator.
func NewOrchestrator(client *api.Client, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		client: client,
		logger: log,
	}
}

// InFlight reports whether a submission is currently unresolved.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// Submit validates preconditions locally, submits the order once and,
// on success, clears the cart. On failure the cart is left intact so
// the user can edit or retry. Duplicate calls while a submission is
// pending fail fast with ErrSubmitInFlight.
func (o *Orchestrator) Submit(ctx context.Context, store *cart.Store, session *models.TableSession, applied *models.Coupon, notes string) (*Result, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	o.inFlight = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	requestID := logger.GenerateRequestID()

	if session == nil {
		return nil, ErrNoSession
	}
	lines := store.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	quote := pricing.Price(lines, applied)

	// The cart may have changed since the coupon was validated; the
	// minimum is re-checked here and violations fail before any
	// network call.
	couponCode := ""
	if applied != nil {
		if !applied.MeetsMinimum(quote.Subtotal) {
			o.logger.Info("checkout_rejected", "Coupon minimum no longer met", requestID, map[string]interface{}{
				"code":     applied.Code,
				"subtotal": quote.Subtotal.String(),
			})
			return nil, &coupon.RejectionError{
				Reason:  coupon.ReasonBelowMinimum,
				Message: fmt.Sprintf("order no longer meets the %s minimum for coupon %s", applied.MinOrderAmount.String(), applied.Code),
			}
		}
		couponCode = applied.Code
	}

	req := &api.SubmitOrderRequest{
		RestaurantID: store.RestaurantID(),
		TableNumber:  session.TableNumber,
		Items:        make([]api.SubmitOrderItem, 0, len(lines)),
		CouponCode:   couponCode,
		Notes:        notes,
	}
	for _, line := range lines {
		req.Items = append(req.Items, api.SubmitOrderItem{
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
		})
	}

	o.logger.Info("order_submitting", "Submitting order", requestID, map[string]interface{}{
		"restaurant_id": req.RestaurantID,
		"table_number":  req.TableNumber,
		"line_count":    len(req.Items),
		"local_total":   quote.Total.String(),
	})

	order, err := o.client.SubmitOrder(ctx, req, requestID)
	if err != nil {
		o.logger.Error("order_submit_failed", "Order submission failed", requestID, err, map[string]interface{}{
			"restaurant_id": req.RestaurantID,
		})
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	result := &Result{Order: order, LocalQuote: quote}
	if !order.Total.Equal(quote.Total) {
		result.TotalMismatch = true
		o.logger.Warn("total_mismatch", "Server total disagrees with local quote", requestID, map[string]interface{}{
			"order_id":     order.ID,
			"local_total":  quote.Total.String(),
			"server_total": order.Total.String(),
		})
	}

	if err := store.Clear(ctx); err != nil {
		// The order exists server-side; a stale local cart is a
		// nuisance, not a failure.
		o.logger.Warn("cart_clear_failed", "Failed to clear cart after checkout", requestID, map[string]interface{}{
			"order_id": order.ID,
		})
	}

	o.logger.Info("order_submitted", "Order created", requestID, map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total.String(),
	})

	return result, nil
}
