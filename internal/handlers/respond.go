package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/middleware"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/services"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
)

// responder is embedded by every handler for consistent JSON output.
type responder struct {
	logger *utils.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data any) {
	if err := utils.WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h responder) respondError(w http.ResponseWriter, err error) {
	status := utils.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request error", "status", status, "error", err)
	} else {
		h.logger.Warn("Request error", "status", status, "error", err)
	}
	utils.WriteError(w, err)
}

func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, utils.NewBadRequestError("Invalid JSON body"))
		return false
	}
	return true
}

// caller reads the identity set by the auth middleware.
func (h responder) caller(w http.ResponseWriter, r *http.Request) (services.Caller, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.respondError(w, utils.NewUnauthorizedError("Missing or invalid token"))
		return services.Caller{}, false
	}
	return services.Caller{UserID: identity.UserID, Role: identity.Role}, true
}
