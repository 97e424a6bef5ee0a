// Package session resolves a raw scanned table code into a validated
// table session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableside/internal/api"
	"tableside/internal/logger"
	"tableside/internal/models"
)

// ErrInvalidCode is returned for any code the backend refuses:
// malformed payload, unknown restaurant or table, inactive table. The
// wrapped error carries the server's message.
var ErrInvalidCode = errors.New("invalid table code")

// Resolver turns a scanned or typed code into a TableSession. The raw
// payload is never parsed locally; the backend is authoritative.
type Resolver struct {
	client *api.Client
	logger *logger.Logger
}

// NewResolver creates a resolver backed by the given API client.
func NewResolver(client *api.Client, log *logger.Logger) *Resolver {
	return &Resolver{
		client: client,
		logger: log,
	}
}

// Resolve validates rawCode against the backend and returns the
// resolved session. No automatic retry is applied; the caller decides
// whether to prompt for another scan.
func (r *Resolver) Resolve(ctx context.Context, rawCode string) (*models.TableSession, error) {
	requestID := logger.GenerateRequestID()

	rawCode = strings.TrimSpace(rawCode)
	if rawCode == "" {
		return nil, fmt.Errorf("%w: empty code", ErrInvalidCode)
	}

	resp, err := r.client.ValidateTableCode(ctx, rawCode, requestID)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && (apiErr.Kind == api.KindRejected || apiErr.Kind == api.KindNotFound) {
			r.logger.Info("code_rejected", "Backend rejected table code", requestID, map[string]interface{}{
				"status": apiErr.Status,
			})
			if apiErr.Message != "" {
				return nil, fmt.Errorf("%w: %s", ErrInvalidCode, apiErr.Message)
			}
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to validate table code: %w", err)
	}

	session := &models.TableSession{
		RestaurantID:   resp.RestaurantID,
		TableNumber:    resp.TableNumber,
		RestaurantName: resp.Restaurant.Name,
	}

	if session.RestaurantName == "" {
		// Older backends omit the embedded restaurant; fetch the
		// public descriptor instead.
		restaurant, err := r.client.GetRestaurant(ctx, session.RestaurantID, requestID)
		if err == nil {
			session.RestaurantName = restaurant.Name
		}
	}

	r.logger.Info("session_resolved", "Resolved table session", requestID, map[string]interface{}{
		"restaurant_id": session.RestaurantID,
		"table_number":  session.TableNumber,
	})

	return session, nil
}

// Menu loads the public menu for the session's restaurant.
func (r *Resolver) Menu(ctx context.Context, session *models.TableSession) ([]models.MenuItem, error) {
	requestID := logger.GenerateRequestID()

	items, err := r.client.GetMenu(ctx, session.RestaurantID, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}
	return items, nil
}
