package handlers

import (
	"net/http"

	"github.com/openmeet/eventhub/internal/domain"
	"github.com/openmeet/eventhub/pkg/logger"
)

// UpdateAccountRole is the only path by which an account's role changes.
// Live tokens keep their issued role until re-login.
func (h *Handlers) UpdateAccountRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req domain.UpdateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.accountService.UpdateRole(r.Context(), id, req.Role); err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger.InfoContext(r.Context(), "Account role updated", "target_account_id", id, "role", req.Role)
	writeJSON(w, http.StatusOK, map[string]string{"message": "role updated"})
}

// GetAccount returns an account's public profile (admin view).
func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	profile, err := h.accountService.GetAccountByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"account": profile})
}
