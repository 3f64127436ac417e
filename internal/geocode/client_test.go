package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLookup_ResolvesAndCaches(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("q") != "Dublin" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"53.3498","lon":"-6.2603"}]`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	ctx := context.Background()

	loc, err := client.Lookup(ctx, "Dublin")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if loc.Latitude != 53.3498 || loc.Longitude != -6.2603 {
		t.Errorf("unexpected location: %+v", loc)
	}

	// Second lookup must be served from cache.
	if _, err := client.Lookup(ctx, "Dublin"); err != nil {
		t.Fatalf("cached Lookup() failed: %v", err)
	}
	if requests != 1 {
		t.Errorf("expected 1 upstream request, got %d", requests)
	}
}

func TestLookup_NoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Lookup(context.Background(), "Nowhereville")
	if !errors.Is(err, ErrNoResult) {
		t.Errorf("got %v, want ErrNoResult", err)
	}
}

func TestLookup_EmptyPlace(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://unused"})

	_, err := client.Lookup(context.Background(), "")
	if !errors.Is(err, ErrNoResult) {
		t.Errorf("got %v, want ErrNoResult", err)
	}
}

func TestLookup_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{
		BaseURL:        srv.URL,
		MaxFailures:    3,
		CooldownPeriod: time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := client.Lookup(ctx, "Dublin"); err == nil {
			t.Fatalf("request %d: expected failure", i)
		}
	}

	if client.State() != "open" {
		t.Fatalf("breaker state = %q, want open", client.State())
	}

	_, err := client.Lookup(ctx, "Dublin")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("got %v, want ErrCircuitOpen", err)
	}
}
