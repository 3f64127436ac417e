package types

import "time"

// RelationType classifies what RelatedPersonID is relative to PersonID.
// A row with Type=RelationParent means the related person is the person's
// parent.
type RelationType string

// Relationship types.
const (
	RelationParent  RelationType = "PARENT"
	RelationChild   RelationType = "CHILD"
	RelationSpouse  RelationType = "SPOUSE"
	RelationSibling RelationType = "SIBLING"
)

// Valid reports whether t is one of the known relationship types.
func (t RelationType) Valid() bool {
	switch t {
	case RelationParent, RelationChild, RelationSpouse, RelationSibling:
		return true
	}
	return false
}

// Inverse returns the relationship type of the mirrored directional row.
// PARENT and CHILD invert into each other; SPOUSE and SIBLING are symmetric.
func (t RelationType) Inverse() RelationType {
	switch t {
	case RelationParent:
		return RelationChild
	case RelationChild:
		return RelationParent
	default:
		return t
	}
}

// Relationship is one directional row of a kinship fact.
//
// Every kinship fact between two people is stored as two rows, one per
// direction, with inverse types for PARENT/CHILD and identical types for
// SPOUSE/SIBLING. The storage layer maintains this invariant at write time;
// readers (the chart engine in particular) must collapse the duplication
// rather than trusting row count as edge count.
type Relationship struct {
	ID string `json:"id"` // Unique identifier (format: rel:uuid)

	// PairID groups the two directional rows of one kinship fact. Both
	// rows carry the same PairID so they can be deleted together.
	PairID string `json:"pair_id,omitempty"`

	PersonID        string       `json:"person_id"`
	RelatedPersonID string       `json:"related_person_id"`
	Type            RelationType `json:"type"`

	// Marriage-specific fields, only meaningful for SPOUSE rows.
	MarriageDate *time.Time `json:"marriage_date,omitempty"`
	DivorceDate  *time.Time `json:"divorce_date,omitempty"`
	IsActive     bool       `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Mirror builds the inverse directional row for the same kinship fact.
// The caller is responsible for assigning the new row's ID.
func (r *Relationship) Mirror() Relationship {
	return Relationship{
		PairID:          r.PairID,
		PersonID:        r.RelatedPersonID,
		RelatedPersonID: r.PersonID,
		Type:            r.Type.Inverse(),
		MarriageDate:    r.MarriageDate,
		DivorceDate:     r.DivorceDate,
		IsActive:        r.IsActive,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
