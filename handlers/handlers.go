package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"costcurve/aggregator"
	"costcurve/models"
	"costcurve/scheduler"

	"github.com/gorilla/mux"
)

// defaultSuggestions backs the suggestions endpoint when no query is given.
var defaultSuggestions = []string{
	"smartphones",
	"laptops",
	"headphones",
	"watches",
	"shoes",
}

type Handlers struct {
	agg         *aggregator.Aggregator
	taskManager *scheduler.TaskManager
	sources     []string
}

// NewHandlers wires the HTTP surface to the aggregator and starts the async
// task manager.
func NewHandlers(agg *aggregator.Aggregator, sources []string, maxWorkers int) *Handlers {
	h := &Handlers{
		agg:     agg,
		sources: sources,
	}
	h.taskManager = scheduler.NewTaskManager(h.performSearch, maxWorkers)
	return h
}

// Close closes the handlers and stops background workers
func (h *Handlers) Close() {
	if h.taskManager != nil {
		h.taskManager.Stop()
	}
}

// performSearch runs one aggregation (used by TaskManager)
func (h *Handlers) performSearch(query string, filters models.SearchFilters) ([]models.Product, error) {
	products := h.agg.Search(context.Background(), aggregator.Query{
		Text:   query,
		Budget: filters.Budget,
		Render: filters.Render,
	})
	return products, nil
}

// HealthCheck returns a simple health check response
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "costcurve",
		"version":   "1.0.0",
	}
	writeJSON(w, http.StatusOK, response)
}

// SearchProducts handles GET /api/v1/search?q=...&budget=...&render=...
func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	filters := models.SearchFilters{}
	if budget := r.URL.Query().Get("budget"); budget != "" {
		v, err := strconv.Atoi(budget)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "Budget must be a non-negative number")
			return
		}
		filters.Budget = v
	}
	if render := r.URL.Query().Get("render"); render != "" {
		v, err := strconv.ParseBool(render)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Render must be a boolean")
			return
		}
		filters.Render = v
	}

	h.respondWithSearch(w, r, query, filters)
}

// SearchProductsPost handles POST /api/v1/search with a JSON body
func (h *Handlers) SearchProductsPost(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}
	if req.Filters.Budget < 0 {
		writeError(w, http.StatusBadRequest, "Budget must be a non-negative number")
		return
	}

	h.respondWithSearch(w, r, req.Query, req.Filters)
}

func (h *Handlers) respondWithSearch(w http.ResponseWriter, r *http.Request, query string, filters models.SearchFilters) {
	products := h.agg.Search(r.Context(), aggregator.Query{
		Text:   query,
		Budget: filters.Budget,
		Render: filters.Render,
	})
	if products == nil {
		products = []models.Product{}
	}

	writeJSON(w, http.StatusOK, models.SearchResponse{
		Success:      true,
		Query:        query,
		ResultsCount: len(products),
		Products:     products,
		Timestamp:    time.Now(),
	})
}

// Suggestions handles GET /api/v1/search/suggestions?q=...
func (h *Handlers) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	suggestions := defaultSuggestions
	if q != "" {
		suggestions = []string{
			fmt.Sprintf("%s deals", q),
			fmt.Sprintf("%s best price", q),
			fmt.Sprintf("%s discount", q),
			fmt.Sprintf("cheap %s", q),
			fmt.Sprintf("%s reviews", q),
		}
	}
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"suggestions": suggestions,
	})
}

// Sources handles GET /api/v1/sources
func (h *Handlers) Sources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"sources": h.sources,
	})
}

// SubmitSearchTask handles POST /api/v1/search/async
func (h *Handlers) SubmitSearchTask(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	task := h.taskManager.SubmitTask(req.Query, req.Filters)
	writeJSON(w, http.StatusAccepted, task)
}

// GetTaskStatus handles GET /api/v1/search/tasks/{taskId}
func (h *Handlers) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	taskID := vars["taskId"]

	task, exists := h.taskManager.GetTask(taskID)
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// GetTaskStats handles GET /api/v1/search/tasks/stats
func (h *Handlers) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.taskManager.GetStats())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": message})
}
