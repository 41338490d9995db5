package fiscalyear

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	appsequence "3tcapital/ms_admision_facturas/internal/application/sequence"
	"3tcapital/ms_admision_facturas/internal/testutil"
)

func newTestHandler(activeYear string) (*Handler, *testutil.MockSettingsStore) {
	store := testutil.NewMockSettingsStore()
	store.FiscalYear = activeYear
	sequencer := appsequence.NewService(testutil.NewInMemoryCounter(), store, &testutil.MockInvoiceRepository{}, nil, testutil.NewNullLogger())
	return NewHandler(sequencer, testutil.NewNullLogger()), store
}

func TestHandler_Switch(t *testing.T) {
	year := time.Now().Year()
	currentYear := strconv.Itoa(year)
	nextYear := strconv.Itoa(year + 1)
	pastYear := strconv.Itoa(year - 1)

	tests := []struct {
		name           string
		activeYear     string
		body           switchRequest
		expectedStatus int
		expectSwitched bool
	}{
		{
			name:           "manual switch within the window",
			activeYear:     currentYear,
			body:           switchRequest{TargetYear: nextYear, Mode: "manual"},
			expectedStatus: http.StatusOK,
			expectSwitched: true,
		},
		{
			name:           "manual switch to a past year",
			activeYear:     currentYear,
			body:           switchRequest{TargetYear: pastYear, Mode: "manual"},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "auto with nothing to do",
			activeYear:     currentYear,
			body:           switchRequest{Mode: "auto"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown mode",
			activeYear:     currentYear,
			body:           switchRequest{Mode: "forzado"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, store := newTestHandler(tt.activeYear)

			w := httptest.NewRecorder()
			handler.Switch(w, testutil.CreateRequest(http.MethodPost, "/api/v1/ejercicio/cambio", tt.body, nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (body %s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusBadRequest {
				return
			}

			body := testutil.ReadErrorResponse(t, w)
			if body["success"] != tt.expectSwitched {
				t.Errorf("expected success=%v, got %v", tt.expectSwitched, body["success"])
			}
			if tt.expectSwitched && store.FiscalYear != tt.body.TargetYear {
				t.Errorf("expected active year %s, got %s", tt.body.TargetYear, store.FiscalYear)
			}
		})
	}
}

func TestHandler_Switch_MalformedBody(t *testing.T) {
	handler, _ := newTestHandler("2026")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ejercicio/cambio", nil)
	w := httptest.NewRecorder()
	handler.Switch(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
