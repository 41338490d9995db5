package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	appadmission "3tcapital/ms_admision_facturas/internal/application/admission"
	appsequence "3tcapital/ms_admision_facturas/internal/application/sequence"
	coresequence "3tcapital/ms_admision_facturas/internal/core/sequence"
	httperrors "3tcapital/ms_admision_facturas/internal/infrastructure/http"
	"3tcapital/ms_admision_facturas/internal/infrastructure/http/middleware"
)

// Handler bridges HTTP traffic with the admission and sequencing services.
type Handler struct {
	admission *appadmission.Service
	sequencer *appsequence.Service
	log       *slog.Logger
}

// NewHandler creates a new invoice HTTP handler.
func NewHandler(admission *appadmission.Service, sequencer *appsequence.Service, log *slog.Logger) *Handler {
	return &Handler{
		admission: admission,
		sequencer: sequencer,
		log:       log,
	}
}

// Submit handles POST /api/v1/facturas requests: it runs the admission
// pipeline and persists the invoice when every stage is clean.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload appadmission.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"el cuerpo debe ser JSON válido"}, h.log)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	result, err := h.admission.Admit(r.Context(), payload, actor)
	if err != nil {
		h.handleFatal(w, r, err)
		return
	}

	status := http.StatusCreated
	if !result.IsValid {
		status = http.StatusUnprocessableEntity
	}
	httperrors.WriteJSON(w, status, result, h.log)
}

// NextNumber handles GET /api/v1/facturas/siguiente-numero requests.
func (h *Handler) NextNumber(w http.ResponseWriter, r *http.Request) {
	next, err := h.sequencer.NextExpected(r.Context())
	if err != nil {
		if errors.Is(err, coresequence.ErrCapacityExhausted) {
			httperrors.WriteError(w, http.StatusConflict, "Capacidad Agotada",
				[]string{"la capacidad de numeracion del ejercicio fiscal esta agotada"}, h.log)
			return
		}
		h.handleFatal(w, r, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, next, h.log)
}

// Threshold handles GET /api/v1/facturas/alerta-umbral requests.
func (h *Handler) Threshold(w http.ResponseWriter, r *http.Request) {
	status, err := h.sequencer.ThresholdWarning(r.Context())
	if err != nil {
		h.handleFatal(w, r, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, status, h.log)
}

// handleFatal logs infrastructure failures with context and answers with a
// generic service-unavailable response. Nothing partial leaves on this path.
func (h *Handler) handleFatal(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("invoice operation failed",
		"path", r.URL.Path,
		"error", err,
	)
	httperrors.WriteError(w, http.StatusServiceUnavailable, "Servicio No Disponible",
		[]string{"Ha ocurrido un error interno, intente nuevamente"}, h.log)
}
