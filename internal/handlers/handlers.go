// Package handlers provides HTTP request handlers for the copilot service.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/telhawk-systems/telhawk-copilot/common/httputil"
	"github.com/telhawk-systems/telhawk-copilot/common/logging"
	"github.com/telhawk-systems/telhawk-copilot/internal/alertstore"
	"github.com/telhawk-systems/telhawk-copilot/internal/models"
	"github.com/telhawk-systems/telhawk-copilot/internal/service"
)

// ServiceName is reported by the health endpoints.
const ServiceName = "copilot"

// ReadyCheck is a named dependency check used by /readyz.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler provides HTTP handlers for the copilot service
type Handler struct {
	svc          *service.Service
	logger       *logging.Logger
	templatesDir string
	checks       []ReadyCheck
}

// NewHandler creates a new Handler instance
func NewHandler(svc *service.Service, logger *logging.Logger, templatesDir string) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger, templatesDir: templatesDir}
}

// WithReadyChecks registers the checks run by ReadyCheck.
func (h *Handler) WithReadyChecks(checks ...ReadyCheck) *Handler {
	h.checks = append(h.checks, checks...)
	return h
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles GET /healthz
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: ServiceName})
}

// ReadyCheck handles GET /readyz
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Service: ServiceName}
	status := http.StatusOK

	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
		for _, c := range h.checks {
			if err := c.Check(r.Context()); err != nil {
				h.logger.WarnContext(r.Context(), "readiness check failed", "check", c.Name, logging.Error(err))
				resp.Checks[c.Name] = err.Error()
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.Name] = "ok"
		}
	}

	httputil.WriteJSON(w, status, resp)
}

// Dashboard handles GET /
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, "index.html")
}

// Investigation handles GET /investigation
func (h *Handler) Investigation(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, "investigation.html")
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request, name string) {
	body, err := os.ReadFile(filepath.Join(h.templatesDir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "template "+name+" not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to read template", logging.File(name), logging.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Alerts handles GET /api/alerts
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Alerts(r.Context())
	if err != nil {
		var malformed *alertstore.MalformedError
		switch {
		case errors.Is(err, alertstore.ErrNotFound):
			httputil.WriteError(w, http.StatusNotFound, fmt.Sprintf("%s not found", h.svc.StoreName()))
		case errors.As(err, &malformed):
			h.logger.WarnContext(r.Context(), "alert store has a malformed line",
				logging.File(malformed.Source), "line", malformed.Line, logging.Error(malformed.Err))
			httputil.WriteError(w, http.StatusNotFound, fmt.Sprintf("%s line %d: invalid JSON", malformed.Source, malformed.Line))
		default:
			h.logger.ErrorContext(r.Context(), "failed to read alerts", logging.Error(err))
			httputil.WriteError(w, http.StatusInternalServerError, "failed to read alerts")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Investigate handles POST /api/investigate
func (h *Handler) Investigate(w http.ResponseWriter, r *http.Request) {
	body, err := httputil.ReadBody(r, httputil.DefaultMaxBodyBytes)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	doc, err := models.ParseDocument(body)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.svc.Investigate(r.Context(), doc))
}

// Chat handles POST /api/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := httputil.DecodeJSON(r, &req, httputil.DefaultMaxBodyBytes); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.svc.Chat(r.Context(), req))
}
