package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/models"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/services"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
	"github.com/gorilla/mux"
)

type AssistantHandler struct {
	responder
	service     services.AssistantService
	maxFileSize int64
}

func NewAssistantHandler(service services.AssistantService, maxFileSize int64, logger *utils.Logger) *AssistantHandler {
	return &AssistantHandler{
		responder:   responder{logger: logger},
		service:     service,
		maxFileSize: maxFileSize,
	}
}

// Analyze extracts, analyzes and stores an uploaded process document.
func (h *AssistantHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	req, err := h.readUpload(w, r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	req.UserID = caller.UserID
	req.Name = r.FormValue("name")
	req.Type = r.FormValue("type")

	h.logger.Info("Analyze request",
		"user_id", caller.UserID,
		"filename", req.Filename,
		"size", len(req.File))

	process, err := h.service.AnalyzeFileAndCreateProcess(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, process)
}

// Upload analyzes a document in the basic tier and returns the result without storing it.
func (h *AssistantHandler) Upload(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	req, err := h.readUpload(w, r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	req.UserID = caller.UserID

	outcome, err := h.service.ReadFile(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, outcome)
}

func (h *AssistantHandler) ListProcesses(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	processes, err := h.service.ListProcesses(r.Context(), caller.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, processes)
}

func (h *AssistantHandler) GetProcess(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	process, err := h.service.GetProcess(r.Context(), mux.Vars(r)["id"], caller)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, process)
}

func (h *AssistantHandler) readUpload(w http.ResponseWriter, r *http.Request) (*models.AnalyzeFileRequest, error) {
	tooLarge := utils.NewBadRequestError(fmt.Sprintf("File size exceeds %dMB limit", h.maxFileSize>>20))

	// Check Content-Length first to reject oversized requests early
	if r.ContentLength > h.maxFileSize+formOverhead {
		return nil, tooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+formOverhead)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLarge
		}
		return nil, utils.NewBadRequestError("Invalid form data")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, utils.NewBadRequestError("No file provided")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		return nil, utils.NewInternalError("Failed to read file").Wrap(err)
	}
	if int64(len(data)) > h.maxFileSize {
		return nil, tooLarge
	}
	if len(data) == 0 {
		return nil, utils.NewBadRequestError("Uploaded file is empty")
	}

	return &models.AnalyzeFileRequest{
		File:         data,
		Filename:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Instructions: r.FormValue("instructions"),
	}, nil
}

// formOverhead leaves room for multipart boundaries and the text fields.
const formOverhead = 1 << 20
