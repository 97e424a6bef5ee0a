// Package tracking polls the backend for order status and exposes it
// as a strictly forward-moving stream. The tracker never infers a
// transition itself; it only reflects what the server reports.
package tracking

import (
	"context"
	"time"

	"tableside/internal/logger"
	"tableside/internal/models"
)

// StatusUpdate is one observation delivered to a watcher.
type StatusUpdate struct {
	Order    *models.Order
	Status   models.OrderStatus
	Previous models.OrderStatus
	// Anomaly marks a server-reported status that violates the
	// forward-only lifecycle. The tracked status keeps its previous
	// value; the update is informational.
	Anomaly bool
}

// Tracker creates polling watches over orders.
type Tracker struct {
	fetcher  OrderFetcher
	logger   *logger.Logger
	interval time.Duration
}

// NewTracker creates a tracker that polls at the given interval.
func NewTracker(fetcher OrderFetcher, log *logger.Logger, interval time.Duration) *Tracker {
	return &Tracker{
		fetcher:  fetcher,
		logger:   log,
		interval: interval,
	}
}

// Track starts polling the order. The first fetch happens immediately,
// then once per interval while the status is non-terminal. The returned
// Watch must be stopped when the caller goes away; reaching a terminal
// status stops polling on its own.
func (t *Tracker) Track(ctx context.Context, orderID string) *Watch {
	w := newWatch()
	go t.run(ctx, orderID, w)
	return w
}

func (t *Tracker) run(ctx context.Context, orderID string, w *Watch) {
	defer close(w.updates)

	requestID := logger.GenerateRequestID()

	t.logger.Info("tracking_started", "Tracking order", requestID, map[string]interface{}{
		"order_id":      orderID,
		"poll_interval": t.interval.String(),
	})

	var last models.OrderStatus

	// Fires immediately for the first fetch, then is reset to the
	// interval. Only one fetch is ever outstanding: the next poll is
	// not scheduled until the current one resolves.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("tracking_stopped", "Tracking cancelled", requestID, map[string]interface{}{"order_id": orderID})
			return
		case <-w.stop:
			t.logger.Info("tracking_stopped", "Watch stopped", requestID, map[string]interface{}{"order_id": orderID})
			return
		case <-timer.C:
		}

		order, err := t.fetcher.GetOrder(ctx, orderID, requestID)
		if err != nil {
			// Transient poll failures keep the last known status; the
			// next scheduled tick retries. No immediate retry.
			t.logger.Warn("poll_failed", "Order status poll failed", requestID, map[string]interface{}{
				"order_id": orderID,
				"error":    err.Error(),
			})
			timer.Reset(t.interval)
			continue
		}

		update, terminal := t.apply(last, order, requestID)
		if update != nil {
			if !update.Anomaly {
				last = update.Status
			}
			if !w.send(ctx, *update) {
				return
			}
		}
		if terminal {
			t.logger.Info("tracking_finished", "Order reached terminal status", requestID, map[string]interface{}{
				"order_id": orderID,
				"status":   string(last),
			})
			return
		}

		timer.Reset(t.interval)
	}
}

// apply decides what the fetched order means relative to the last
// accepted status. It returns the update to deliver (nil when the
// status is unchanged) and whether polling should end.
func (t *Tracker) apply(last models.OrderStatus, order *models.Order, requestID string) (*StatusUpdate, bool) {
	status := order.Status

	if last == "" {
		if !status.Known() {
			t.logger.Warn("status_anomaly", "Server reported unknown status", requestID, map[string]interface{}{
				"order_id": order.ID,
				"status":   string(status),
			})
			return &StatusUpdate{Order: order, Status: status, Anomaly: true}, false
		}
		return &StatusUpdate{Order: order, Status: status}, status.Terminal()
	}

	if status == last {
		return nil, false
	}

	if !models.CanTransition(last, status) {
		t.logger.Warn("status_anomaly", "Server reported a backward status transition", requestID, map[string]interface{}{
			"order_id": order.ID,
			"from":     string(last),
			"to":       string(status),
		})
		return &StatusUpdate{Order: order, Status: status, Previous: last, Anomaly: true}, false
	}

	return &StatusUpdate{Order: order, Status: status, Previous: last}, status.Terminal()
}
