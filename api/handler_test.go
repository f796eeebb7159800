package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deal-search/metrics"
	"deal-search/models"
	"deal-search/services"
	"deal-search/utils"
)

type stubSearcher struct {
	gotQuery string
	resp     *models.SearchResponse
	err      error
}

func (s *stubSearcher) Search(_ context.Context, query string) (*models.SearchResponse, error) {
	s.gotQuery = query
	return s.resp, s.err
}

type stubLeads struct {
	got services.LeadRequest
	err error
}

func (s *stubLeads) Capture(_ context.Context, req services.LeadRequest) error {
	s.got = req
	return s.err
}

type stubHealth struct {
	name    string
	healthy bool
}

func (s stubHealth) Name() string  { return s.name }
func (s stubHealth) Healthy() bool { return s.healthy }

func newTestHandler(s Searcher, l LeadCapturer, health ...HealthReporter) http.Handler {
	h := &Handler{
		Search:  s,
		Leads:   l,
		Health:  health,
		Metrics: metrics.NewRegistry().Handler(),
		Logger:  utils.NewNopLogger(),
	}
	return h.Routes()
}

func oneResult() *models.SearchResponse {
	return &models.SearchResponse{Results: []models.Result{{
		Title: "Panel A", Price: 100, Location: "Austin, TX", Seller: "Acme",
		Link: "https://www.sunhub.com/listing/1", Source: models.SourceDeal,
	}}}
}

func TestAISearchGet(t *testing.T) {
	s := &stubSearcher{resp: oneResult()}
	rec := httptest.NewRecorder()
	newTestHandler(s, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ai-search?query=panel", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "panel", s.gotQuery)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"results":[{"title":"Panel A","price":100,"location":"Austin, TX",
		"seller":"Acme","link":"https://www.sunhub.com/listing/1","source":"deal"}]}`, rec.Body.String())
}

func TestAISearchPostBodyWins(t *testing.T) {
	s := &stubSearcher{resp: &models.SearchResponse{Results: []models.Result{}}}
	req := httptest.NewRequest(http.MethodPost, "/api/ai-search?query=ignored", strings.NewReader(`{"query":"battery"}`))
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	newTestHandler(s, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "battery", s.gotQuery)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestAISearchPostWithoutQueryFallsBack(t *testing.T) {
	s := &stubSearcher{resp: &models.SearchResponse{Results: []models.Result{}}}
	req := httptest.NewRequest(http.MethodPost, "/api/ai-search?query=solar", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	newTestHandler(s, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "solar", s.gotQuery)
}

func TestAISearchPostNumericQuery(t *testing.T) {
	s := &stubSearcher{resp: &models.SearchResponse{Results: []models.Result{}}}
	req := httptest.NewRequest(http.MethodPost, "/api/ai-search?query=solar", strings.NewReader(`{"query": 400}`))
	rec := httptest.NewRecorder()
	newTestHandler(s, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "400", s.gotQuery)
}

func TestAISearchFailure(t *testing.T) {
	s := &stubSearcher{err: fmt.Errorf("load feed listings: %w", errors.New("feed source: GET x: unexpected status 502"))}
	rec := httptest.NewRecorder()
	newTestHandler(s, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ai-search", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"ai-search failed","details":"load feed listings: feed source: GET x: unexpected status 502"}`,
		rec.Body.String())
}

func TestAISearchRejectsOtherMethods(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(&stubSearcher{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/ai-search", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCaptureLead(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantBody string
	}{
		{"saved", `{"name":"Ada","quantity":40}`, nil, http.StatusOK, `{"status":"saved"}`},
		{"missing fields", `{"name":"Ada"}`, services.ErrMissingLeadFields, http.StatusBadRequest, `{"error":"Missing required lead fields"}`},
		{"mail failure", `{"name":"Ada"}`, errors.New("smtp down"), http.StatusInternalServerError, `{"error":"Failed to save lead"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leads := &stubLeads{err: tt.err}
			rec := httptest.NewRecorder()
			newTestHandler(nil, leads).ServeHTTP(rec,
				httptest.NewRequest(http.MethodPost, "/api/capture-lead", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "Ada", leads.got.Name)
		})
	}
}

func TestCaptureLeadBadJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(nil, &stubLeads{}).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/capture-lead", strings.NewReader(`{"name":`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCaptureLeadNumericFields(t *testing.T) {
	leads := &stubLeads{}
	body := `{"name":"Ada","email":"ada@example.com","company":"Grid Co","phone":5550100,
		"role":"Buyer","timeline":30,"quantity":250}`
	rec := httptest.NewRecorder()
	newTestHandler(nil, leads).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/capture-lead", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 5550100, leads.got.Phone)
	assert.EqualValues(t, 30, leads.got.Timeline)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(nil, nil, stubHealth{"deal", true}, stubHealth{"feed", false}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","upstreams":{"deal":"ok","feed":"degraded"}}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
