package handlers

import (
	"net/http"
	"time"

	"github.com/kindredgraph/kindred/internal/datasets"
)

// ListDatasets handles GET /api/datasets.
func (h *APIHandlers) ListDatasets(w http.ResponseWriter, r *http.Request) {
	if h.datasetManager == nil {
		respondError(w, http.StatusNotImplemented, "dataset management not enabled", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"datasets": h.datasetManager.ListDatasets(),
		"default":  h.datasetManager.GetDefaultDataset(),
	})
}

// CreateDataset handles POST /api/datasets.
func (h *APIHandlers) CreateDataset(w http.ResponseWriter, r *http.Request) {
	if h.datasetManager == nil {
		respondError(w, http.StatusNotImplemented, "dataset management not enabled", nil)
		return
	}

	var req DatasetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ds := req.toDataset()
	ds.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := h.datasetManager.AddDataset(r.Context(), ds); err != nil {
		respondError(w, http.StatusBadRequest, "failed to add dataset", err)
		return
	}

	respondJSON(w, http.StatusCreated, ds)
}

// UpdateDataset handles PUT /api/datasets/{name}.
func (h *APIHandlers) UpdateDataset(w http.ResponseWriter, r *http.Request) {
	if h.datasetManager == nil {
		respondError(w, http.StatusNotImplemented, "dataset management not enabled", nil)
		return
	}

	var req DatasetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	name := extractID(r, "name")
	if err := h.datasetManager.UpdateDataset(r.Context(), name, req.toDataset()); err != nil {
		respondError(w, http.StatusBadRequest, "failed to update dataset", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteDataset handles DELETE /api/datasets/{name}.
func (h *APIHandlers) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	if h.datasetManager == nil {
		respondError(w, http.StatusNotImplemented, "dataset management not enabled", nil)
		return
	}

	name := extractID(r, "name")
	if err := h.datasetManager.DeleteDataset(r.Context(), name); err != nil {
		respondError(w, http.StatusBadRequest, "failed to delete dataset", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetDefaultDataset handles POST /api/datasets/{name}/default.
func (h *APIHandlers) SetDefaultDataset(w http.ResponseWriter, r *http.Request) {
	if h.datasetManager == nil {
		respondError(w, http.StatusNotImplemented, "dataset management not enabled", nil)
		return
	}

	name := extractID(r, "name")
	if err := h.datasetManager.SetDefaultDataset(r.Context(), name); err != nil {
		respondError(w, http.StatusBadRequest, "failed to set default dataset", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"default": name})
}

// TestDataset handles POST /api/datasets/test - verifies a dataset
// configuration without saving it.
func (h *APIHandlers) TestDataset(w http.ResponseWriter, r *http.Request) {
	if h.datasetManager == nil {
		respondError(w, http.StatusNotImplemented, "dataset management not enabled", nil)
		return
	}

	var req DatasetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.datasetManager.TestDataset(r.Context(), req.toDataset()); err != nil {
		respondError(w, http.StatusBadRequest, "dataset check failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (req *DatasetRequest) toDataset() datasets.Dataset {
	return datasets.Dataset{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Enabled:     req.Enabled,
		Database: datasets.DatabaseConfig{
			Type:     req.Database.Type,
			Path:     req.Database.Path,
			Host:     req.Database.Host,
			Port:     req.Database.Port,
			Username: req.Database.Username,
			Password: req.Database.Password,
			Database: req.Database.Database,
			SSLMode:  req.Database.SSLMode,
		},
	}
}
