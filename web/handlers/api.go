// Package handlers provides HTTP handlers and middleware for the Kindred
// web API.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kindredgraph/kindred/internal/config"
	"github.com/kindredgraph/kindred/internal/datasets"
	"github.com/kindredgraph/kindred/internal/geocode"
	"github.com/kindredgraph/kindred/internal/storage"
)

// APIHandlers contains HTTP handlers for the REST API.
type APIHandlers struct {
	store          storage.RecordStore
	config         *config.Config
	datasetManager *datasets.Manager
	hub            *WebSocketHub
	geocoder       *geocode.Client
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(store storage.RecordStore, cfg *config.Config) *APIHandlers {
	return &APIHandlers{
		store:  store,
		config: cfg,
	}
}

// SetDatasetManager enables multi-dataset support.
func (h *APIHandlers) SetDatasetManager(manager *datasets.Manager) {
	h.datasetManager = manager
}

// SetHub wires the websocket change feed. Writes broadcast change events
// when a hub is set.
func (h *APIHandlers) SetHub(hub *WebSocketHub) {
	h.hub = hub
}

// SetGeocoder enables birthplace geocoding on the statistics endpoint.
func (h *APIHandlers) SetGeocoder(client *geocode.Client) {
	h.geocoder = client
}

// resolveStore picks the store for the request. Dataset switching happens
// via the "dataset" query parameter or the X-Dataset-ID header; without
// either the default store is used.
func (h *APIHandlers) resolveStore(r *http.Request) (storage.RecordStore, string, error) {
	name := r.URL.Query().Get("dataset")
	if name == "" {
		name = r.Header.Get("X-Dataset-ID")
	}
	if name == "" || h.datasetManager == nil {
		return h.store, name, nil
	}
	store, err := h.datasetManager.GetStore(name)
	if err != nil {
		return nil, name, err
	}
	return store, name, nil
}

// notifyChange broadcasts a change event when the websocket hub is wired.
func (h *APIHandlers) notifyChange(eventType, id, dataset string) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(ChangeEvent{
		Type:      eventType,
		ID:        id,
		Dataset:   dataset,
		Timestamp: time.Now().UnixMilli(),
	})
}

// extractID extracts a path parameter from the request.
func extractID(r *http.Request, key string) string {
	return r.PathValue(key)
}

// parseInt parses an integer from a string, returning defaultValue if parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; log and move on.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}

// decodeJSON decodes a JSON request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// parseDate accepts full dates (2006-01-02), year-month (2006-01) and bare
// years (2006).
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
