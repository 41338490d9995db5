package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphealth "3tcapital/ms_admision_facturas/internal/application/health"
	corehealth "3tcapital/ms_admision_facturas/internal/core/health"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestNewHandler(t *testing.T) {
	service := &apphealth.Service{}
	handler := NewHandler(service)

	if handler == nil {
		t.Fatal("expected handler to be created, got nil")
	}

	if handler.service != service {
		t.Error("expected handler to have the provided service")
	}
}

func TestHandler_Status(t *testing.T) {
	meta := apphealth.Metadata{
		Service:     "ms_admision_facturas",
		Version:     "1.0.0",
		Environment: "test",
	}

	tests := []struct {
		name             string
		pinger           apphealth.Pinger
		expectedStatus   string
		expectedDatabase string
	}{
		{
			name:             "database reachable",
			pinger:           pingerFunc(func(ctx context.Context) error { return nil }),
			expectedStatus:   "UP",
			expectedDatabase: "UP",
		},
		{
			name:             "database unreachable",
			pinger:           pingerFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
			expectedStatus:   "DEGRADED",
			expectedDatabase: "DOWN",
		},
		{
			name:             "database not configured",
			pinger:           nil,
			expectedStatus:   "DEGRADED",
			expectedDatabase: "NOT_CONFIGURED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(apphealth.NewService(meta, tt.pinger))

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()

			handler.Status(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("expected status code %d, got %d", http.StatusOK, w.Code)
			}

			contentType := w.Header().Get("Content-Type")
			if contentType != "application/json" {
				t.Errorf("expected Content-Type application/json, got %s", contentType)
			}

			var status corehealth.Status
			if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if status.Service != meta.Service {
				t.Errorf("expected service %s, got %s", meta.Service, status.Service)
			}
			if status.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, status.Status)
			}
			if status.Database != tt.expectedDatabase {
				t.Errorf("expected database %s, got %s", tt.expectedDatabase, status.Database)
			}
		})
	}
}
