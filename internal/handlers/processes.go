package handlers

import (
	"net/http"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/services"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
	"github.com/gorilla/mux"
)

type ProcessHandler struct {
	responder
	service services.ProcessService
}

func NewProcessHandler(service services.ProcessService, logger *utils.Logger) *ProcessHandler {
	return &ProcessHandler{
		responder: responder{logger: logger},
		service:   service,
	}
}

func (h *ProcessHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	processes, err := h.service.FindAll(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, processes)
}

func (h *ProcessHandler) FindMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	processes, err := h.service.FindByUser(r.Context(), caller.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, processes)
}

func (h *ProcessHandler) FindByUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if !utils.IsValidID(userID) {
		h.respondError(w, utils.NewBadRequestError("Invalid user ID"))
		return
	}

	processes, err := h.service.FindByUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, processes)
}

func (h *ProcessHandler) FindOne(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	process, err := h.service.FindOneWithPermission(r.Context(), mux.Vars(r)["id"], caller)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, process)
}
