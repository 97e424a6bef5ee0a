// Package api implements the HTTP client for the ordering backend. The
// backend is authoritative for table codes, coupons and orders; this
// client only moves JSON and classifies failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"tableside/internal/logger"
	"tableside/internal/models"
)

// Client talks to the ordering backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// New creates a backend client. The timeout applies per request and
// bounds every call, checkout included, so callers never hang on a
// dead connection.
func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// ValidateTableCodeResponse is the body returned for a valid table code.
type ValidateTableCodeResponse struct {
	RestaurantID string `json:"restaurantId"`
	TableNumber  int    `json:"tableNumber"`
	Restaurant   struct {
		Name string `json:"name"`
	} `json:"restaurant"`
}

// ValidateCouponRequest is the body for POST /coupons/validate.
type ValidateCouponRequest struct {
	Code         string          `json:"code"`
	RestaurantID string          `json:"restaurantId"`
	OrderAmount  decimal.Decimal `json:"orderAmount"`
}

// ValidateCouponResponse is the body returned by POST /coupons/validate.
type ValidateCouponResponse struct {
	Valid   bool           `json:"valid"`
	Coupon  *models.Coupon `json:"coupon,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Message string         `json:"message,omitempty"`
}

// SubmitOrderItem is one order line in a submission.
type SubmitOrderItem struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// SubmitOrderRequest is the body for POST /billing/orders/public.
type SubmitOrderRequest struct {
	RestaurantID string            `json:"restaurantId"`
	TableNumber  int               `json:"tableNumber"`
	Items        []SubmitOrderItem `json:"items"`
	CouponCode   string            `json:"couponCode,omitempty"`
	Notes        string            `json:"notes,omitempty"`
}

// ValidateTableCode sends a raw scanned payload to the backend for
// resolution. The payload is untrusted; no client-side parsing happens.
func (c *Client) ValidateTableCode(ctx context.Context, qrData, requestID string) (*ValidateTableCodeResponse, error) {
	var resp ValidateTableCodeResponse
	body := map[string]string{"qrData": qrData}
	if err := c.post(ctx, "/tables/validate-qr", body, &resp, requestID); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRestaurant fetches the public restaurant descriptor.
func (c *Client) GetRestaurant(ctx context.Context, restaurantID, requestID string) (*models.Restaurant, error) {
	var resp models.Restaurant
	path := "/restaurants/public/" + url.PathEscape(restaurantID)
	if err := c.get(ctx, path, &resp, requestID); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMenu fetches the public menu for a restaurant.
func (c *Client) GetMenu(ctx context.Context, restaurantID, requestID string) ([]models.MenuItem, error) {
	var resp []models.MenuItem
	path := "/items/public/" + url.PathEscape(restaurantID)
	if err := c.get(ctx, path, &resp, requestID); err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidateCoupon round-trips a coupon code with the current order
// amount. Eligibility depends on live server state, so results are
// never cached.
func (c *Client) ValidateCoupon(ctx context.Context, req *ValidateCouponRequest, requestID string) (*ValidateCouponResponse, error) {
	var resp ValidateCouponResponse
	if err := c.post(ctx, "/coupons/validate", req, &resp, requestID); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitOrder places an order. The returned order is the server's
// authoritative record, totals included.
func (c *Client) SubmitOrder(ctx context.Context, req *SubmitOrderRequest, requestID string) (*models.Order, error) {
	var resp models.Order
	if err := c.post(ctx, "/billing/orders/public", req, &resp, requestID); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOrder fetches the current state of an order.
func (c *Client) GetOrder(ctx context.Context, orderID, requestID string) (*models.Order, error) {
	var resp models.Order
	path := "/billing/orders/public/" + url.PathEscape(orderID)
	if err := c.get(ctx, path, &resp, requestID); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}, requestID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out, requestID)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}, requestID string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out, requestID)
}

func (c *Client) do(req *http.Request, out interface{}, requestID string) error {
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := wrapTransportError(err)
		c.logger.Error("backend_call_failed", fmt.Sprintf("%s %s failed", req.Method, req.URL.Path), requestID, apiErr, map[string]interface{}{
			"kind":        string(apiErr.Kind),
			"duration_ms": time.Since(started).Milliseconds(),
		})
		return apiErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := statusError(resp.StatusCode, readErrorMessage(resp.Body))
		c.logger.Debug("backend_call_rejected", fmt.Sprintf("%s %s returned %d", req.Method, req.URL.Path, resp.StatusCode), requestID, map[string]interface{}{
			"status": resp.StatusCode,
			"kind":   string(apiErr.Kind),
		})
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindTransient, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}
	return nil
}

// readErrorMessage extracts the {message} field from an error body.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ""
	}
	return parsed.Message
}
