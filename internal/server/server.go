// Package server provides HTTP server initialization and lifecycle management
// for the Kindred web UI and API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/kindredgraph/kindred/internal/config"
	"github.com/kindredgraph/kindred/internal/datasets"
	"github.com/kindredgraph/kindred/internal/geocode"
	"github.com/kindredgraph/kindred/internal/storage"
	"github.com/kindredgraph/kindred/web/handlers"
)

// Start initializes and starts the HTTP server.
// Returns the actual address being listened on (useful for testing with port 0)
// and the WebSocketHub for wiring record change broadcasts (nil when the
// change feed is disabled).
// The optional datasetsConfigPath points to a datasets.json file for serving
// multiple record sets; when empty, only the given store is available.
func Start(ctx context.Context, cfg *config.Config, store storage.RecordStore, datasetsConfigPath ...string) (string, *handlers.WebSocketHub) {
	configPath := ""
	if len(datasetsConfigPath) > 0 {
		configPath = datasetsConfigPath[0]
	}

	mux := http.NewServeMux()

	// Rate limiter (10 req/sec, burst of 20)
	rateLimiter := handlers.NewRateLimiter(10.0, 20)

	// Build a dataset manager. With a config path, load it; otherwise wrap
	// the given store as the sole dataset so handlers can resolve datasets
	// by name (or use the default).
	var dsManager *datasets.Manager
	if configPath != "" {
		var err error
		dsManager, err = datasets.NewManager(configPath)
		if err != nil {
			log.Printf("Warning: failed to load datasets config: %v, falling back to default", err)
			dsManager = datasets.NewManagerWithStore(store, "default")
		}
	} else {
		dsManager = datasets.NewManagerWithStore(store, "default")
	}

	api := handlers.NewAPIHandlers(store, cfg)
	api.SetDatasetManager(dsManager)

	var wsHub *handlers.WebSocketHub
	if cfg.Features.EnableChangeFeed {
		wsHub = handlers.NewWebSocketHub(cfg.Server.Port)
		go wsHub.Run()
		api.SetHub(wsHub)
	}

	if cfg.Geocode.GeocodeEnabled {
		api.SetGeocoder(geocode.NewClient(geocode.Config{
			BaseURL: cfg.Geocode.GeocodeURL,
		}))
	}

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/persons", api.ListPersons)
	apiMux.HandleFunc("POST /api/persons", api.CreatePerson)
	apiMux.HandleFunc("GET /api/persons/{id}", api.GetPerson)
	apiMux.HandleFunc("PUT /api/persons/{id}", api.UpdatePerson)
	apiMux.HandleFunc("DELETE /api/persons/{id}", api.DeletePerson)
	apiMux.HandleFunc("GET /api/persons/{id}/relationships", api.ListPersonRelationships)

	apiMux.HandleFunc("POST /api/relationships", api.CreateRelationship)
	apiMux.HandleFunc("DELETE /api/relationships/{id}", api.DeleteRelationship)

	// Chart routes. The compact route must be registered before the {type}
	// wildcard would otherwise match it.
	apiMux.HandleFunc("GET /api/charts/compact", api.CompactTree)
	apiMux.HandleFunc("GET /api/charts/{type}", api.Chart)
	apiMux.HandleFunc("GET /api/matrix", api.Matrix)
	apiMux.HandleFunc("GET /api/timeline", api.Timeline)
	apiMux.HandleFunc("GET /api/stats", api.Stats)

	// Dataset management routes
	apiMux.HandleFunc("GET /api/datasets", api.ListDatasets)
	apiMux.HandleFunc("POST /api/datasets", api.CreateDataset)
	apiMux.HandleFunc("POST /api/datasets/test", api.TestDataset)
	apiMux.HandleFunc("PUT /api/datasets/{name}", api.UpdateDataset)
	apiMux.HandleFunc("DELETE /api/datasets/{name}", api.DeleteDataset)
	apiMux.HandleFunc("POST /api/datasets/{name}/default", api.SetDefaultDataset)

	// Health endpoint - no auth required, used by monitoring
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","version":"1.0.0"}`))
	})

	// Wrap API routes with auth middleware
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// WebSocket endpoint (no auth required - origin validation handles security)
	if wsHub != nil {
		mux.Handle("/ws", wsHub)
	}

	if cfg.Features.EnableWebUI {
		basePath := findBasePath()

		fs := http.FileServer(http.Dir(basePath + "/web/static"))
		mux.Handle("/static/", http.StripPrefix("/static/", fs))

		indexPath := basePath + "/web/templates/index.html"
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			http.ServeFile(w, r, indexPath)
		})
	}

	// Wrap entire server with rate limiting, then security headers
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = handlers.SecurityHeaders(handler)

	// Create server with security timeouts
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if wsHub != nil {
			wsHub.Stop()
		}
	}()

	return actualAddr, wsHub
}

// findBasePath returns the base path for static assets and templates.
// When running from cmd/kindred-web, we need to go up two directories.
// When running tests, we may already be in the project root.
func findBasePath() string {
	if _, err := os.Stat("web/templates/index.html"); err == nil {
		return "."
	}
	if _, err := os.Stat("../web/templates/index.html"); err == nil {
		return ".."
	}
	if _, err := os.Stat("../../web/templates/index.html"); err == nil {
		return "../.."
	}
	return "."
}
