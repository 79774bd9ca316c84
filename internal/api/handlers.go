// Package api exposes HTTP handlers for the sign-up service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"example.com/signup/internal/domain"
	"example.com/signup/internal/logging"
	"example.com/signup/internal/web"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /activities", h.listActivities)
	mux.HandleFunc("POST /activities/{name}/signup", h.signUp)
	mux.HandleFunc("DELETE /activities/{name}/signup", h.cancelSignUp)
	mux.HandleFunc("GET /healthz", healthz)
	mux.Handle("GET /static/", web.Handler())
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, web.IndexPath, http.StatusTemporaryRedirect)
	})
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.ListActivities(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCatalog(activities))
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.SignUp(r.Context(), r.PathValue("name"), r.URL.Query().Get("email"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

func (h *Handler) cancelSignUp(w http.ResponseWriter, r *http.Request) {
	msg, err := h.service.Cancel(r.Context(), r.PathValue("name"), r.URL.Query().Get("email"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Activity not found")
	case errors.Is(err, domain.ErrParticipantNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Participant not found in this activity")
	case errors.Is(err, domain.ErrAlreadySignedUp):
		writeError(w, http.StatusConflict, "conflict", "Student already signed up for this activity")
	case errors.Is(err, domain.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, "validation_failed", "Email is required")
	default:
		logging.FromContext(r.Context()).Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
