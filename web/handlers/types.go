package handlers

import "github.com/kindredgraph/kindred/pkg/types"

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PersonRequest is the request body for creating or updating a person.
// Dates accept "2006-01-02", "2006-01" or "2006".
type PersonRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Gender     string `json:"gender,omitempty"`
	Born       string `json:"born,omitempty"`
	Died       string `json:"died,omitempty"`
	IsLiving   *bool  `json:"is_living,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
	BirthPlace string `json:"birth_place,omitempty"`
}

// RelationshipRequest is the request body for creating a kinship fact.
// Type states what RelatedPersonID is to PersonID.
type RelationshipRequest struct {
	PersonID        string `json:"person_id"`
	RelatedPersonID string `json:"related_person_id"`
	Type            string `json:"type"`
	MarriageDate    string `json:"marriage_date,omitempty"`
	DivorceDate     string `json:"divorce_date,omitempty"`
	IsActive        *bool  `json:"is_active,omitempty"`
}

// PersonListResponse is the response format for GET /api/persons.
type PersonListResponse struct {
	Persons  []types.Person `json:"persons"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasMore  bool           `json:"has_more"`
}

// RelationshipListResponse is the response format for the per-person
// relationship listing. Rows are the person's own directional rows.
type RelationshipListResponse struct {
	Relationships []types.Relationship `json:"relationships"`
	Total         int                  `json:"total"`
}

// DatasetRequest is the request body for creating or updating a dataset.
type DatasetRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	Database    struct {
		Type     string `json:"type"`
		Path     string `json:"path,omitempty"`
		Host     string `json:"host,omitempty"`
		Port     int    `json:"port,omitempty"`
		Username string `json:"username,omitempty"`
		Password string `json:"password,omitempty"`
		Database string `json:"database,omitempty"`
		SSLMode  string `json:"sslmode,omitempty"`
	} `json:"database"`
}

// ChangeEvent is the message broadcast on the websocket change feed when a
// record is written or removed.
type ChangeEvent struct {
	Type      string `json:"type"` // e.g. "person.created", "relationship.deleted"
	ID        string `json:"id"`
	Dataset   string `json:"dataset,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
