package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"deal-search/models"
	"deal-search/normalize"
	"deal-search/services"
	"deal-search/utils"
)

const maxRequestBody = 1 << 20

// Searcher runs one search pipeline.
type Searcher interface {
	Search(ctx context.Context, query string) (*models.SearchResponse, error)
}

// LeadCapturer accepts one lead submission.
type LeadCapturer interface {
	Capture(ctx context.Context, req services.LeadRequest) error
}

// HealthReporter exposes the state of one upstream dependency.
type HealthReporter interface {
	Name() string
	Healthy() bool
}

type Handler struct {
	Search  Searcher
	Leads   LeadCapturer
	Health  []HealthReporter
	Metrics http.Handler
	Logger  *utils.Logger
}

// Routes registers every endpoint on a new ServeMux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ai-search", h.AISearch)
	mux.HandleFunc("POST /api/capture-lead", h.CaptureLead)
	mux.HandleFunc("GET /healthz", h.Healthz)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}
	return withRequestID(mux)
}

type searchRequest struct {
	Query any `json:"query"`
}

// AISearch serves GET ?query= and POST {"query": ...}; the body wins when both are present.
func (h *Handler) AISearch(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeJSONError(w, log, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	query := r.URL.Query().Get("query")
	if r.Method == http.MethodPost {
		var body searchRequest
		if err := decodeBody(r, &body); err == nil && body.Query != nil {
			query = normalize.String(body.Query)
		}
	}

	resp, err := h.Search.Search(r.Context(), query)
	if err != nil {
		writeJSONError(w, log, http.StatusInternalServerError, "ai-search failed", err)
		return
	}
	writeJSON(w, log, http.StatusOK, resp)
}

// CaptureLead validates a lead and forwards it to the sales inbox.
func (h *Handler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	var req services.LeadRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSONError(w, log, http.StatusBadRequest, "Missing required lead fields", err)
		return
	}

	err := h.Leads.Capture(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, log, http.StatusOK, map[string]string{"status": "saved"})
	case errors.Is(err, services.ErrMissingLeadFields):
		writeJSON(w, log, http.StatusBadRequest, map[string]string{"error": "Missing required lead fields"})
	default:
		log.Error("Lead email failed: %v", err)
		writeJSON(w, log, http.StatusInternalServerError, map[string]string{"error": "Failed to save lead"})
	}
}

// Healthz reports ok unless an upstream circuit is open.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	upstreams := make(map[string]string, len(h.Health))
	for _, hr := range h.Health {
		if hr.Healthy() {
			upstreams[hr.Name()] = "ok"
			continue
		}
		upstreams[hr.Name()] = "degraded"
		status = "degraded"
	}
	writeJSON(w, h.Logger, http.StatusOK, map[string]interface{}{"status": status, "upstreams": upstreams})
}

func (h *Handler) requestLogger(r *http.Request) *utils.Logger {
	return h.Logger.With("request_id", requestID(r))
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return io.EOF
	}
	return json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(v)
}

const requestIDHeader = "X-Request-ID"

// withRequestID makes sure every request and response carries a request id.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}
