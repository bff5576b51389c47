package handlers

import (
	"net/http"

	"github.com/hgfsd/hgfsd/internal/shareregistry"
	"github.com/hgfsd/hgfsd/pkg/adminapi/response"
)

// HealthHandler answers liveness/readiness probes. Readiness additionally
// confirms the share registry loaded at least once successfully — there is
// no database or external store to probe here, unlike a stack that
// persists metadata.
type HealthHandler struct {
	shares *shareregistry.Registry
}

// NewHealthHandler builds a HealthHandler over the server's frozen share
// registry.
func NewHealthHandler(shares *shareregistry.Registry) *HealthHandler {
	return &HealthHandler{shares: shares}
}

// Liveness reports the process is up.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Healthy(nil))
}

// Readiness reports whether the server has a usable share registry.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.shares == nil {
		response.JSON(w, http.StatusServiceUnavailable, response.Unhealthy("share registry not initialized"))
		return
	}
	response.JSON(w, http.StatusOK, response.Healthy(map[string]int{
		"shares": len(h.shares.ListShares()),
	}))
}
