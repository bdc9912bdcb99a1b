package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	controller "github.com/m-mizutani/ghtask/pkg/controller/http"
	"github.com/m-mizutani/ghtask/pkg/domain/model"
	"github.com/m-mizutani/ghtask/pkg/infra/metrics"
	"github.com/m-mizutani/ghtask/pkg/usecase"
)

func TestHealthEndpoint(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewWebhook(nil)

	server, err := controller.NewServer(
		ctx,
		uc,
		controller.WithAddr("localhost:0"),
		controller.WithWebhookSecret("test-secret"),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusOK)
	}

	var status model.HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if status.Status != "healthy" {
		t.Errorf("Status = %v, want healthy", status.Status)
	}

	if status.Service != "ghtask" {
		t.Errorf("Service = %v, want ghtask", status.Service)
	}

	if status.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ctx := context.Background()

	withMetrics, err := controller.NewServer(ctx, usecase.NewWebhook(nil),
		controller.WithMetricsHandler(metrics.New().Handler()),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	w := httptest.NewRecorder()
	withMetrics.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusOK)
	}

	without, err := controller.NewServer(ctx, usecase.NewWebhook(nil))
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	w = httptest.NewRecorder()
	without.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusNotFound)
	}
}
