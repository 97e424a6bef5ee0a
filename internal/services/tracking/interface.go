package tracking

import (
	"context"

	"tableside/internal/models"
)

// OrderFetcher fetches the authoritative order state. Implemented by
// the backend API client.
type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID, requestID string) (*models.Order, error)
}
