package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/loopline-labs/sovscope/internal/adapter/exporter"
	"github.com/loopline-labs/sovscope/internal/core/ports"
)

type RestHandler struct {
	repo         ports.InvestigationRepository
	csvExporter  *exporter.CSVExporter
	jsonExporter *exporter.JSONExporter
}

func NewRestHandler(repo ports.InvestigationRepository) *RestHandler {
	return &RestHandler{
		repo:         repo,
		csvExporter:  exporter.NewCSVExporter(repo),
		jsonExporter: exporter.NewJSONExporter(repo),
	}
}

// Health check endpoint
func (h *RestHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "sovscope-api",
	}
	writeJSON(w, http.StatusOK, response)
}

// GetInvestigation returns one investigation with its full analysis result.
func (h *RestHandler) GetInvestigation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing investigation id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inv, err := h.repo.FindInvestigation(ctx, id)
	if err != nil {
		writeError(w, http.StatusNotFound, "investigation not found")
		return
	}

	writeJSON(w, http.StatusOK, inv)
}

// ListInvestigations returns recent investigations, optionally filtered by
// the exact search query that drove them.
func (h *RestHandler) ListInvestigations(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	since := time.Now().Add(-30 * 24 * time.Hour)
	if s := r.URL.Query().Get("since"); s != "" {
		duration, err := time.ParseDuration(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'since' parameter (use format like '24h', '168h')")
			return
		}
		since = time.Now().Add(-duration)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var err error
	investigations := []interface{}{}
	if q := r.URL.Query().Get("query"); q != "" {
		found, ferr := h.repo.FindByQuery(ctx, q, limit)
		err = ferr
		for _, inv := range found {
			investigations = append(investigations, inv)
		}
	} else {
		found, ferr := h.repo.FindRecent(ctx, since, limit)
		err = ferr
		for _, inv := range found {
			investigations = append(investigations, inv)
		}
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query investigations")
		return
	}

	response := map[string]interface{}{
		"count":          len(investigations),
		"investigations": investigations,
	}
	writeJSON(w, http.StatusOK, response)
}

// GetBrandSoV returns one brand's SoV metrics and competitive score from an
// investigation.
func (h *RestHandler) GetBrandSoV(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, brand := vars["id"], vars["brand"]

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inv, err := h.repo.FindInvestigation(ctx, id)
	if err != nil {
		writeError(w, http.StatusNotFound, "investigation not found")
		return
	}

	if inv.Result == nil || inv.Result.SoV == nil || !inv.Result.SoV.Stage.OK() {
		writeError(w, http.StatusNotFound, "investigation has no SoV metrics")
		return
	}

	metrics, ok := inv.Result.SoV.Metrics[brand]
	if !ok {
		response := map[string]interface{}{
			"exists":           false,
			"investigation_id": id,
			"brand":            brand,
		}
		writeJSON(w, http.StatusOK, response)
		return
	}

	response := map[string]interface{}{
		"exists":           true,
		"investigation_id": id,
		"brand":            brand,
		"sov_metrics":      metrics,
	}
	if comp := inv.Result.Competitive; comp != nil && comp.Stage.OK() {
		if score, ok := comp.Scores[brand]; ok {
			response["competitive_score"] = score
		}
		if pos, ok := comp.Positioning[brand]; ok {
			response["market_position"] = pos
		}
	}
	writeJSON(w, http.StatusOK, response)
}

// GetReportFeed exports recent investigation reports for downstream tooling.
func (h *RestHandler) GetReportFeed(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	since := r.URL.Query().Get("since") // e.g., "24h", "168h"

	var sinceTime time.Time
	if since != "" {
		duration, err := time.ParseDuration(since)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'since' parameter (use format like '24h', '168h')")
			return
		}
		sinceTime = time.Now().Add(-duration)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	switch format {
	case "csv":
		data, err := h.csvExporter.Export(ctx, sinceTime)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to export CSV feed")
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(data)); err != nil {
			log.Printf("Error writing CSV feed response: %v", err)
		}

	case "json", "":
		data, err := h.jsonExporter.Export(ctx, sinceTime)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to export JSON feed")
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(data)); err != nil {
			log.Printf("Error writing JSON feed response: %v", err)
		}

	default:
		writeError(w, http.StatusBadRequest, "unsupported format (use 'csv' or 'json')")
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
