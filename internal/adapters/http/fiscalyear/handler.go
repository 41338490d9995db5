package fiscalyear

import (
	"encoding/json"
	"log/slog"
	"net/http"

	appsequence "3tcapital/ms_admision_facturas/internal/application/sequence"
	coresequence "3tcapital/ms_admision_facturas/internal/core/sequence"
	httperrors "3tcapital/ms_admision_facturas/internal/infrastructure/http"
	"3tcapital/ms_admision_facturas/internal/infrastructure/http/middleware"
)

// Handler bridges HTTP traffic with fiscal-year rollover.
type Handler struct {
	sequencer *appsequence.Service
	log       *slog.Logger
}

// NewHandler creates a new fiscal-year HTTP handler.
func NewHandler(sequencer *appsequence.Service, log *slog.Logger) *Handler {
	return &Handler{sequencer: sequencer, log: log}
}

type switchRequest struct {
	TargetYear string `json:"ejercicio"`
	Mode       string `json:"modo"`
}

// Switch handles POST /api/v1/ejercicio/cambio requests. Auto mode runs the
// system-year comparison; manual mode switches to the requested year within
// the allowed window.
func (h *Handler) Switch(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"el cuerpo debe ser JSON válido"}, h.log)
		return
	}

	var (
		result coresequence.RolloverResult
		err    error
	)
	switch coresequence.RolloverMode(req.Mode) {
	case coresequence.RolloverAuto:
		result, err = h.sequencer.AutoRollover(r.Context())
	case coresequence.RolloverManual:
		actor := middleware.ActorFromContext(r.Context())
		result, err = h.sequencer.ManualRollover(r.Context(), req.TargetYear, actor)
	default:
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"modo debe ser 'auto' o 'manual'"}, h.log)
		return
	}
	if err != nil {
		h.log.Error("fiscal year switch failed", "mode", req.Mode, "error", err)
		httperrors.WriteError(w, http.StatusServiceUnavailable, "Servicio No Disponible",
			[]string{"Ha ocurrido un error interno, intente nuevamente"}, h.log)
		return
	}

	status := http.StatusOK
	if !result.Switched && coresequence.RolloverMode(req.Mode) == coresequence.RolloverManual {
		status = http.StatusUnprocessableEntity
	}
	httperrors.WriteJSON(w, status, result, h.log)
}
