package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kindredgraph/kindred/internal/config"
	"github.com/kindredgraph/kindred/internal/storage/sqlite"
	"github.com/kindredgraph/kindred/pkg/types"
)

// newTestAPI wires APIHandlers over an in-memory SQLite store and a mux
// using the same route patterns as the server.
func newTestAPI(t *testing.T) (*APIHandlers, *http.ServeMux, *sqlite.RecordStore) {
	t.Helper()

	store, err := sqlite.NewRecordStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	api := NewAPIHandlers(store, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/persons", api.ListPersons)
	mux.HandleFunc("POST /api/persons", api.CreatePerson)
	mux.HandleFunc("GET /api/persons/{id}", api.GetPerson)
	mux.HandleFunc("PUT /api/persons/{id}", api.UpdatePerson)
	mux.HandleFunc("DELETE /api/persons/{id}", api.DeletePerson)
	mux.HandleFunc("GET /api/persons/{id}/relationships", api.ListPersonRelationships)
	mux.HandleFunc("POST /api/relationships", api.CreateRelationship)
	mux.HandleFunc("DELETE /api/relationships/{id}", api.DeleteRelationship)
	mux.HandleFunc("GET /api/charts/compact", api.CompactTree)
	mux.HandleFunc("GET /api/charts/{type}", api.Chart)
	mux.HandleFunc("GET /api/matrix", api.Matrix)
	mux.HandleFunc("GET /api/timeline", api.Timeline)
	mux.HandleFunc("GET /api/stats", api.Stats)

	return api, mux, store
}

// doJSON performs a request with an optional JSON body and decodes the JSON
// response into out (when out is non-nil).
func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

// seedPerson writes a person directly through the store.
func seedPerson(t *testing.T, store *sqlite.RecordStore, id, first, last string, gender types.Gender, birthYear int) {
	t.Helper()

	person := &types.Person{
		ID:        id,
		FirstName: first,
		LastName:  last,
		Gender:    gender,
		IsLiving:  true,
	}
	if birthYear > 0 {
		born := timeDate(birthYear)
		person.DateOfBirth = &born
	}
	require.NoError(t, store.StorePerson(context.Background(), person))
}

// seedParent records related as person's parent.
func seedParent(t *testing.T, store *sqlite.RecordStore, personID, parentID string) {
	t.Helper()
	require.NoError(t, store.CreateRelationship(context.Background(), &types.Relationship{
		PersonID:        personID,
		RelatedPersonID: parentID,
		Type:            types.RelationParent,
	}))
}
