package handlers

import (
	"net/http"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/models"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/services"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
	"github.com/gorilla/mux"
)

type UserHandler struct {
	responder
	service services.UserService
}

func NewUserHandler(service services.UserService, logger *utils.Logger) *UserHandler {
	return &UserHandler{
		responder: responder{logger: logger},
		service:   service,
	}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	user, err := h.service.Get(r.Context(), mux.Vars(r)["id"], caller)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}
