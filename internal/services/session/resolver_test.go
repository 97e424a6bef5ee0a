package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tableside/internal/api"
	"tableside/internal/logger"
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) *Resolver {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.New("session-test")
	return NewResolver(api.New(server.URL, 2*time.Second, log), log)
}

func TestResolve_Success(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tables/validate-qr" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body struct {
			QRData string `json:"qrData"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if body.QRData != "qr:r1:t4" {
			t.Errorf("unexpected payload: %s", body.QRData)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"restaurantId": "r1",
			"tableNumber":  4,
			"restaurant":   map[string]string{"name": "Mama Mia"},
		})
	})

	session, err := resolver.Resolve(context.Background(), "qr:r1:t4")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if session.RestaurantID != "r1" || session.TableNumber != 4 || session.RestaurantName != "Mama Mia" {
		t.Errorf("unexpected session: %+v", session)
	}
}

func TestResolve_FetchesRestaurantNameWhenOmitted(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tables/validate-qr":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"restaurantId": "r1",
				"tableNumber":  4,
			})
		case "/restaurants/public/r1":
			json.NewEncoder(w).Encode(map[string]string{"id": "r1", "name": "Mama Mia"})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	session, err := resolver.Resolve(context.Background(), "qr:r1:t4")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if session.RestaurantName != "Mama Mia" {
		t.Errorf("expected fallback restaurant name, got %q", session.RestaurantName)
	}
}

func TestResolve_InvalidCode(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "table code not recognized"})
	})

	session, err := resolver.Resolve(context.Background(), "garbage")
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if session != nil {
		t.Errorf("expected no session, got %+v", session)
	}
	if !strings.Contains(err.Error(), "table code not recognized") {
		t.Errorf("expected server message in error, got %q", err)
	}
}

func TestResolve_EmptyCode(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend should not be called for an empty code")
	})

	if _, err := resolver.Resolve(context.Background(), "   "); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
}

func TestResolve_TransientFailureIsNotInvalidCode(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := resolver.Resolve(context.Background(), "qr:r1:t4")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrInvalidCode) {
		t.Errorf("5xx must not surface as an invalid code: %v", err)
	}
}
