package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kindredgraph/kindred/internal/engine"
	"github.com/kindredgraph/kindred/internal/geocode"
	"github.com/kindredgraph/kindred/internal/storage"
)

// buildEngine batch-loads the full person and relationship sets from the
// request's store and constructs a chart engine over them. This is the only
// point where the engine touches storage.
func (h *APIHandlers) buildEngine(ctx context.Context, store storage.RecordStore) (*engine.Engine, error) {
	persons, err := store.ListAllPersons(ctx)
	if err != nil {
		return nil, err
	}
	rels, err := store.ListAllRelationships(ctx)
	if err != nil {
		return nil, err
	}
	return engine.New(persons, rels), nil
}

// clampDepth applies the configured default and cap to a requested depth.
func (h *APIHandlers) clampDepth(raw string) int {
	depth := parseInt(raw, h.config.Charts.DefaultDepth)
	if depth < 0 {
		depth = h.config.Charts.DefaultDepth
	}
	if depth > h.config.Charts.MaxDepth {
		depth = h.config.Charts.MaxDepth
	}
	return depth
}

// Chart handles GET /api/charts/{type}?root=&depth= for the graph chart
// layouts (ancestors, descendants, hourglass, tree, bowtie, fan).
func (h *APIHandlers) Chart(w http.ResponseWriter, r *http.Request) {
	store, _, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	rootID := r.URL.Query().Get("root")
	if rootID == "" {
		respondError(w, http.StatusBadRequest, "root parameter is required", nil)
		return
	}
	depth := h.clampDepth(r.URL.Query().Get("depth"))

	eng, err := h.buildEngine(r.Context(), store)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load records", err)
		return
	}

	chartType := engine.ChartType(extractID(r, "type"))
	var result *engine.ChartResult

	switch chartType {
	case engine.ChartAncestors:
		result, err = eng.AncestorChart(rootID, depth)
	case engine.ChartDescendants:
		result, err = eng.DescendantChart(rootID, depth)
	case engine.ChartHourglass:
		ancestorDepth := h.clampDepth(r.URL.Query().Get("ancestor_depth"))
		descendantDepth := h.clampDepth(r.URL.Query().Get("descendant_depth"))
		if r.URL.Query().Get("ancestor_depth") == "" && r.URL.Query().Get("descendant_depth") == "" {
			ancestorDepth, descendantDepth = depth, depth
		}
		result, err = eng.HourglassChart(rootID, ancestorDepth, descendantDepth)
	case engine.ChartFullTree:
		result, err = eng.FullTreeChart(rootID, depth)
	case engine.ChartBowtie:
		result, err = eng.BowtieChart(rootID, depth)
	case engine.ChartFan:
		result, err = eng.FanChart(rootID, depth)
	default:
		respondError(w, http.StatusBadRequest, "unknown chart type "+string(chartType), nil)
		return
	}

	if errors.Is(err, engine.ErrRootNotFound) {
		respondError(w, http.StatusNotFound, "root person not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build chart", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CompactTree handles GET /api/charts/compact?root=&depth= - the
// descendant-only nested layout with embedded spouse summaries.
func (h *APIHandlers) CompactTree(w http.ResponseWriter, r *http.Request) {
	store, _, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	rootID := r.URL.Query().Get("root")
	if rootID == "" {
		respondError(w, http.StatusBadRequest, "root parameter is required", nil)
		return
	}
	depth := h.clampDepth(r.URL.Query().Get("depth"))

	eng, err := h.buildEngine(r.Context(), store)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load records", err)
		return
	}

	result, err := eng.CompactTree(rootID, depth)
	if errors.Is(err, engine.ErrRootNotFound) {
		respondError(w, http.StatusNotFound, "root person not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build compact tree", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Matrix handles GET /api/matrix?ids=a,b,c or GET /api/matrix?limit=n.
func (h *APIHandlers) Matrix(w http.ResponseWriter, r *http.Request) {
	store, _, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	var ids []string
	if raw := r.URL.Query().Get("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	limit := parseInt(r.URL.Query().Get("limit"), h.config.Charts.MatrixLimit)

	eng, err := h.buildEngine(r.Context(), store)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load records", err)
		return
	}

	result, err := eng.RelationshipMatrix(ids, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build matrix", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Timeline handles GET /api/timeline?sort=&start=&end=.
func (h *APIHandlers) Timeline(w http.ResponseWriter, r *http.Request) {
	store, _, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	eng, err := h.buildEngine(r.Context(), store)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load records", err)
		return
	}

	entries := eng.Timeline(engine.TimelineOptions{
		Sort:      engine.TimelineSort(r.URL.Query().Get("sort")),
		StartYear: parseInt(r.URL.Query().Get("start"), 0),
		EndYear:   parseInt(r.URL.Query().Get("end"), 0),
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

// StatsResponse wraps the engine statistics with optional geocoded
// birthplace locations.
type StatsResponse struct {
	*engine.Statistics
	BirthPlaceLocations []geocode.Location `json:"birth_place_locations,omitempty"`
}

// Stats handles GET /api/stats?living=true.
func (h *APIHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	store, _, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	eng, err := h.buildEngine(r.Context(), store)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load records", err)
		return
	}

	stats := eng.Statistics(engine.StatsOptions{
		LivingOnly: r.URL.Query().Get("living") == "true",
	})

	resp := StatsResponse{Statistics: stats}
	if h.geocoder != nil && h.config.Geocode.GeocodeEnabled {
		resp.BirthPlaceLocations = h.geocodeBirthPlaces(r.Context(), stats.TopBirthPlaces)
	}

	respondJSON(w, http.StatusOK, resp)
}

// geocodeBirthPlaces resolves the top birthplace buckets best-effort. A
// tripped breaker or a miss just drops that place from the list.
func (h *APIHandlers) geocodeBirthPlaces(ctx context.Context, places []engine.Bucket) []geocode.Location {
	var locations []geocode.Location
	for _, bucket := range places {
		lookupCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		loc, err := h.geocoder.Lookup(lookupCtx, bucket.Label)
		cancel()
		if errors.Is(err, geocode.ErrCircuitOpen) {
			break
		}
		if err != nil {
			continue
		}
		locations = append(locations, *loc)
	}
	return locations
}
