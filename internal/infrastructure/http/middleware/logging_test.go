package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	ctxutil "3tcapital/ms_admision_facturas/internal/infrastructure/context"
	"3tcapital/ms_admision_facturas/internal/testutil"
)

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{name: "successful request", statusCode: http.StatusOK},
		{name: "client error", statusCode: http.StatusUnprocessableEntity},
		{name: "server error", statusCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := RequestLogger(testutil.NewNullLogger())
			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/facturas/siguiente-numero", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.statusCode {
				t.Errorf("expected status %d, got %d", tt.statusCode, w.Code)
			}
		})
	}
}

func TestRequestLogger_PropagatesCorrelationID(t *testing.T) {
	middleware := RequestLogger(testutil.NewNullLogger())

	var seen string
	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxutil.GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if seen == "" {
		t.Error("expected correlation id in request context")
	}
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	recorder := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: recorder}

	rw.WriteHeader(http.StatusNotFound)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("expected captured status 404, got %d", rw.statusCode)
	}
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected underlying status 404, got %d", recorder.Code)
	}
}

func TestResponseWriter_Write(t *testing.T) {
	recorder := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: recorder}

	n, err := rw.Write([]byte("hola"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 bytes written, got %d", n)
	}
	if rw.statusCode != http.StatusOK {
		t.Errorf("expected implicit status 200, got %d", rw.statusCode)
	}
	if rw.bytesWritten != 4 {
		t.Errorf("expected 4 bytes counted, got %d", rw.bytesWritten)
	}
}

func TestResponseWriter_Write_AfterWriteHeader(t *testing.T) {
	recorder := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: recorder}

	rw.WriteHeader(http.StatusCreated)
	if _, err := rw.Write([]byte("creado")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rw.statusCode != http.StatusCreated {
		t.Errorf("expected status 201 preserved, got %d", rw.statusCode)
	}
	if rw.bytesWritten != 6 {
		t.Errorf("expected 6 bytes counted, got %d", rw.bytesWritten)
	}
}
