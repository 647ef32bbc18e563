package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"costcurve/aggregator"
	"costcurve/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	agg := aggregator.New(nil, 1, time.Second)
	h := NewHandlers(agg, []string{"Amazon", "Flipkart"}, 1)
	t.Cleanup(h.Close)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/search", h.SearchProducts).Methods("GET")
	api.HandleFunc("/search", h.SearchProductsPost).Methods("POST")
	api.HandleFunc("/search/suggestions", h.Suggestions).Methods("GET")
	api.HandleFunc("/search/async", h.SubmitSearchTask).Methods("POST")
	api.HandleFunc("/search/tasks/stats", h.GetTaskStats).Methods("GET")
	api.HandleFunc("/search/tasks/{taskId}", h.GetTaskStatus).Methods("GET")
	api.HandleFunc("/sources", h.Sources).Methods("GET")
	return r
}

func doRequest(t *testing.T, r *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t)
	rec := doRequest(t, r, "GET", "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestSearchRequiresQuery(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, "GET", "/api/v1/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, r, "GET", "/api/v1/search?q=%20%20", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, r, "POST", "/api/v1/search", `{"query":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchRejectsBadParams(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, "GET", "/api/v1/search?q=iphone&budget=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, r, "GET", "/api/v1/search?q=iphone&budget=-5", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, r, "GET", "/api/v1/search?q=iphone&render=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, r, "POST", "/api/v1/search", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchEnvelope(t *testing.T) {
	r := newTestRouter(t)
	rec := doRequest(t, r, "GET", "/api/v1/search?q=iphone+14", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "iphone 14", resp.Query)
	assert.Equal(t, len(resp.Products), resp.ResultsCount)
	assert.NotNil(t, resp.Products)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestSearchPostEnvelope(t *testing.T) {
	r := newTestRouter(t)
	rec := doRequest(t, r, "POST", "/api/v1/search", `{"query":"iphone 14","filters":{"budget":30000}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "iphone 14", resp.Query)
}

func TestSuggestionsWithQuery(t *testing.T) {
	r := newTestRouter(t)
	rec := doRequest(t, r, "GET", "/api/v1/search/suggestions?q=iphone", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success     bool     `json:"success"`
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.True(t, body.Success)
	require.Len(t, body.Suggestions, 5)
	assert.Equal(t, "iphone deals", body.Suggestions[0])
	assert.Contains(t, body.Suggestions, "cheap iphone")
}

func TestSuggestionsDefault(t *testing.T) {
	r := newTestRouter(t)
	rec := doRequest(t, r, "GET", "/api/v1/search/suggestions", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Suggestions, 5)
	assert.Contains(t, body.Suggestions, "smartphones")
}

func TestSources(t *testing.T) {
	r := newTestRouter(t)
	rec := doRequest(t, r, "GET", "/api/v1/sources", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool     `json:"success"`
		Sources []string `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, []string{"Amazon", "Flipkart"}, body.Sources)
}

func TestAsyncSearchLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := doRequest(t, r, "POST", "/api/v1/search/async", `{"query":"iphone 14"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var task models.SearchTask
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	require.NotEmpty(t, task.ID)

	// Status endpoint serves the submitted task.
	rec = doRequest(t, r, "GET", "/api/v1/search/tasks/"+task.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, r, "GET", "/api/v1/search/tasks/unknown_task", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, r, "GET", "/api/v1/search/tasks/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Contains(t, stats, "total_tasks")
}

func TestAsyncSearchRequiresQuery(t *testing.T) {
	r := newTestRouter(t)
	rec := doRequest(t, r, "POST", "/api/v1/search/async", `{"query":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
