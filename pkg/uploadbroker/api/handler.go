// Package api exposes the broker over HTTP: request routing, input
// validation, CORS policy and response shaping. All bodies are JSON.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/cybergallery/upload-broker/pkg/uploadbroker"
	"github.com/cybergallery/upload-broker/pkg/uploadbroker/sigv4"
)

// Handler routes upload requests to the broker service.
type Handler struct {
	service uploadbroker.Service
	logger  *slog.Logger
}

// NewHandler creates an HTTP handler for the broker service.
func NewHandler(service uploadbroker.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Routes returns the router for the upload endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/upload/init", h.InitiateUpload)
	r.Post("/upload/complete", h.CompleteUpload)
	r.Get("/health", h.Health)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

// InitUploadRequest is the request body for initiating an upload.
type InitUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
}

// InitUploadResponse is the response body for a granted upload.
type InitUploadResponse struct {
	UploadURL   string `json:"uploadUrl"`
	ObjectKey   string `json:"objectKey"`
	FileURL     string `json:"fileUrl"`
	ContentType string `json:"contentType"`
}

// CompleteRequest is the request body for registering a finished upload.
type CompleteRequest struct {
	ObjectKey string `json:"objectKey"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Desc      string `json:"desc"`
}

// CompleteResponse confirms the ledger append.
type CompleteResponse struct {
	OK           bool   `json:"ok"`
	SubmissionID string `json:"submissionId"`
	FileURL      string `json:"fileUrl"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// InitiateUpload handles POST /upload/init.
func (h *Handler) InitiateUpload(w http.ResponseWriter, r *http.Request) {
	var req InitUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.service.InitiateUpload(r.Context(), uploadbroker.InitiateUploadRequest{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	render.JSON(w, r, InitUploadResponse{
		UploadURL:   resp.UploadURL,
		ObjectKey:   resp.ObjectKey,
		FileURL:     resp.FileURL,
		ContentType: resp.ContentType,
	})
}

// CompleteUpload handles POST /upload/complete.
func (h *Handler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp, err := h.service.CompleteUpload(r.Context(), uploadbroker.CompleteUploadRequest{
		ObjectKey:   req.ObjectKey,
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Desc,
	})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	render.JSON(w, r, CompleteResponse{
		OK:           resp.OK,
		SubmissionID: resp.SubmissionID,
		FileURL:      resp.FileURL,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "healthy"})
}

// renderServiceError maps broker errors onto the HTTP taxonomy: client input
// errors become 4xx with the message only, configuration and upstream
// failures become 5xx with internal detail logged, never leaked.
func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var configErr *uploadbroker.ConfigError
	var upstreamErr *uploadbroker.UpstreamError

	switch {
	case errors.Is(err, uploadbroker.ErrMissingFilename):
		renderError(w, r, http.StatusBadRequest, "Missing filename or size")
	case errors.Is(err, uploadbroker.ErrFileTooLarge):
		renderError(w, r, http.StatusRequestEntityTooLarge, "File too large")
	case errors.Is(err, uploadbroker.ErrMissingObjectKey):
		renderError(w, r, http.StatusBadRequest, "Missing objectKey")
	case errors.Is(err, uploadbroker.ErrObjectNotFound):
		renderError(w, r, http.StatusNotFound, "Object not found")
	case errors.Is(err, sigv4.ErrMissingCredentials):
		h.logger.Error("storage credentials unconfigured", "path", r.URL.Path)
		renderError(w, r, http.StatusInternalServerError, "Missing R2 credentials")
	case errors.As(err, &configErr):
		h.logger.Error("missing configuration", "key", configErr.Key, "path", r.URL.Path)
		renderError(w, r, http.StatusInternalServerError, "Missing "+configErr.Key)
	case errors.As(err, &upstreamErr):
		h.logger.Error("upstream dependency failed",
			"service", upstreamErr.Service, "status", upstreamErr.StatusCode, "path", r.URL.Path)
		renderError(w, r, http.StatusInternalServerError, "Upstream request failed")
	default:
		h.logger.Error("request failed", "error", err, "path", r.URL.Path)
		renderError(w, r, http.StatusInternalServerError, "Internal error")
	}
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: message})
}
