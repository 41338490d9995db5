package supplier

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	appsupplier "3tcapital/ms_admision_facturas/internal/application/supplier"
	coresupplier "3tcapital/ms_admision_facturas/internal/core/supplier"
	httperrors "3tcapital/ms_admision_facturas/internal/infrastructure/http"

	"github.com/go-chi/chi/v5"
)

// Handler bridges HTTP traffic with the supplier resolver and admin
// services.
type Handler struct {
	resolver *appsupplier.Resolver
	admin    *appsupplier.Admin
	log      *slog.Logger
}

// NewHandler creates a new supplier HTTP handler.
func NewHandler(resolver *appsupplier.Resolver, admin *appsupplier.Admin, log *slog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		admin:    admin,
		log:      log,
	}
}

type resolveRequest struct {
	Name          string `json:"nombre"`
	AccountNumber string `json:"numero_cuenta"`
	Phone         string `json:"telefono"`
}

// Resolve handles POST /api/v1/proveedores/resolver: the interactive,
// read-only conflict pre-check invoked while a user is completing a form, so
// conflicts surface before submission. It never creates a supplier.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"el cuerpo debe ser JSON válido"}, h.log)
		return
	}

	if _, err := coresupplier.ValidateAccountNumber(req.AccountNumber); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{err.Error()}, h.log)
		return
	}

	conflicts, err := h.resolver.FindConflicts(r.Context(), req.AccountNumber, req.Phone)
	if err != nil {
		h.log.Error("supplier pre-check failed", "error", err)
		httperrors.WriteError(w, http.StatusServiceUnavailable, "Servicio No Disponible",
			[]string{"Ha ocurrido un error interno, intente nuevamente"}, h.log)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, conflicts, h.log)
}

// Get handles GET /api/v1/proveedores/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	found, err := h.admin.Get(r.Context(), id)
	if err != nil {
		h.handleAdminError(w, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, found, h.log)
}

// Update handles PUT /api/v1/proveedores/{id}: the explicit admin correction
// path, the only way an existing supplier changes.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req appsupplier.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"el cuerpo debe ser JSON válido"}, h.log)
		return
	}

	if err := h.admin.Update(r.Context(), id, req); err != nil {
		h.handleAdminError(w, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, map[string]any{"success": true}, h.log)
}

// Delete handles DELETE /api/v1/proveedores/{id}: allowed only when no
// invoices reference the supplier.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.admin.Delete(r.Context(), id); err != nil {
		h.handleAdminError(w, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, map[string]any{"success": true}, h.log)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"id debe ser un entero positivo"}, h.log)
		return 0, false
	}
	return id, true
}

func (h *Handler) handleAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coresupplier.ErrNotFound):
		httperrors.WriteError(w, http.StatusNotFound, "No Encontrado", []string{err.Error()}, h.log)
	case errors.Is(err, coresupplier.ErrHasInvoices),
		errors.Is(err, coresupplier.ErrAccountNumberTaken),
		errors.Is(err, coresupplier.ErrPhoneTaken):
		httperrors.WriteError(w, http.StatusConflict, "Conflicto", []string{err.Error()}, h.log)
	default:
		h.log.Error("supplier admin operation failed", "error", err)
		httperrors.WriteError(w, http.StatusServiceUnavailable, "Servicio No Disponible",
			[]string{"Ha ocurrido un error interno, intente nuevamente"}, h.log)
	}
}
