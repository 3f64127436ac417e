package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kindredgraph/kindred/internal/storage"
	"github.com/kindredgraph/kindred/pkg/types"
)

// ListPersons handles GET /api/persons - list persons with pagination,
// search and filtering.
func (h *APIHandlers) ListPersons(w http.ResponseWriter, r *http.Request) {
	store, _, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	opts := storage.ListOptions{
		Page:       parseInt(r.URL.Query().Get("page"), 1),
		Limit:      parseInt(r.URL.Query().Get("limit"), 25),
		SortBy:     r.URL.Query().Get("sort_by"),
		SortOrder:  r.URL.Query().Get("sort_order"),
		Search:     r.URL.Query().Get("search"),
		LivingOnly: r.URL.Query().Get("living") == "true",
	}

	result, err := store.ListPersons(r.Context(), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list persons", err)
		return
	}

	respondJSON(w, http.StatusOK, PersonListResponse{
		Persons:  result.Items,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
		HasMore:  result.HasMore,
	})
}

// GetPerson handles GET /api/persons/{id}.
func (h *APIHandlers) GetPerson(w http.ResponseWriter, r *http.Request) {
	store, _, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	id := extractID(r, "id")
	person, err := store.GetPerson(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "person not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get person", err)
		return
	}

	respondJSON(w, http.StatusOK, person)
}

// CreatePerson handles POST /api/persons.
func (h *APIHandlers) CreatePerson(w http.ResponseWriter, r *http.Request) {
	store, dataset, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	var req PersonRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	person, err := req.toPerson("per:" + uuid.NewString())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid person", err)
		return
	}

	if err := store.StorePerson(r.Context(), person); err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid person", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to store person", err)
		return
	}

	h.notifyChange("person.created", person.ID, dataset)
	respondJSON(w, http.StatusCreated, person)
}

// UpdatePerson handles PUT /api/persons/{id}.
func (h *APIHandlers) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	store, dataset, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	id := extractID(r, "id")
	existing, err := store.GetPerson(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "person not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get person", err)
		return
	}

	var req PersonRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	person, err := req.toPerson(id)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid person", err)
		return
	}
	person.CreatedAt = existing.CreatedAt

	if err := store.StorePerson(r.Context(), person); err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid person", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to store person", err)
		return
	}

	h.notifyChange("person.updated", person.ID, dataset)
	respondJSON(w, http.StatusOK, person)
}

// DeletePerson handles DELETE /api/persons/{id}. The person's relationship
// rows go with it.
func (h *APIHandlers) DeletePerson(w http.ResponseWriter, r *http.Request) {
	store, dataset, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	id := extractID(r, "id")
	if err := store.DeletePerson(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "person not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete person", err)
		return
	}

	h.notifyChange("person.deleted", id, dataset)
	w.WriteHeader(http.StatusNoContent)
}

// ListPersonRelationships handles GET /api/persons/{id}/relationships.
func (h *APIHandlers) ListPersonRelationships(w http.ResponseWriter, r *http.Request) {
	store, _, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	id := extractID(r, "id")
	if _, err := store.GetPerson(r.Context(), id); errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "person not found", nil)
		return
	} else if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get person", err)
		return
	}

	rels, err := store.GetRelationshipsForPerson(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list relationships", err)
		return
	}

	respondJSON(w, http.StatusOK, RelationshipListResponse{
		Relationships: rels,
		Total:         len(rels),
	})
}

// CreateRelationship handles POST /api/relationships. The store writes the
// mirrored directional pair.
func (h *APIHandlers) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	store, dataset, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	var req RelationshipRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	rel, err := req.toRelationship()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid relationship", err)
		return
	}

	// Both endpoints must exist; dangling rows would poison chart builds.
	for _, pid := range []string{rel.PersonID, rel.RelatedPersonID} {
		if _, err := store.GetPerson(r.Context(), pid); errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusBadRequest, "unknown person "+pid, nil)
			return
		} else if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to check person", err)
			return
		}
	}

	if err := store.CreateRelationship(r.Context(), rel); err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid relationship", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to store relationship", err)
		return
	}

	h.notifyChange("relationship.created", rel.ID, dataset)
	respondJSON(w, http.StatusCreated, rel)
}

// DeleteRelationship handles DELETE /api/relationships/{id}. Both rows of
// the pair are removed.
func (h *APIHandlers) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	store, dataset, err := h.resolveStore(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid dataset", err)
		return
	}

	id := extractID(r, "id")
	if err := store.DeleteRelationship(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "relationship not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete relationship", err)
		return
	}

	h.notifyChange("relationship.deleted", id, dataset)
	w.WriteHeader(http.StatusNoContent)
}

func (req *PersonRequest) toPerson(id string) (*types.Person, error) {
	person := &types.Person{
		ID:         id,
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		PhotoURL:   req.PhotoURL,
		BirthPlace: req.BirthPlace,
	}

	switch strings.ToUpper(req.Gender) {
	case "MALE":
		person.Gender = types.GenderMale
	case "FEMALE":
		person.Gender = types.GenderFemale
	case "OTHER":
		person.Gender = types.GenderOther
	case "":
		person.Gender = types.GenderUnknown
	default:
		return nil, errors.New("unknown gender " + req.Gender)
	}

	if req.Born != "" {
		born, err := parseDate(req.Born)
		if err != nil {
			return nil, err
		}
		person.DateOfBirth = &born
	}
	if req.Died != "" {
		died, err := parseDate(req.Died)
		if err != nil {
			return nil, err
		}
		person.DateOfPassing = &died
	}

	if req.IsLiving != nil {
		person.IsLiving = *req.IsLiving
	} else {
		person.IsLiving = person.DateOfPassing == nil
	}

	return person, nil
}

func (req *RelationshipRequest) toRelationship() (*types.Relationship, error) {
	relType := types.RelationType(strings.ToUpper(req.Type))
	if !relType.Valid() {
		return nil, errors.New("unknown relationship type " + req.Type)
	}

	rel := &types.Relationship{
		PersonID:        req.PersonID,
		RelatedPersonID: req.RelatedPersonID,
		Type:            relType,
	}

	if req.MarriageDate != "" {
		married, err := parseDate(req.MarriageDate)
		if err != nil {
			return nil, err
		}
		rel.MarriageDate = &married
	}
	if req.DivorceDate != "" {
		divorced, err := parseDate(req.DivorceDate)
		if err != nil {
			return nil, err
		}
		rel.DivorceDate = &divorced
	}

	if req.IsActive != nil {
		rel.IsActive = *req.IsActive
	} else {
		rel.IsActive = rel.DivorceDate == nil
	}

	return rel, nil
}
