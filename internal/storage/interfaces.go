// Package storage provides composable storage interfaces for the Kindred
// system.
//
// The storage layer is designed with small, focused interfaces that can be
// implemented independently and composed as needed. The chart engine never
// touches these interfaces directly: the request path batch-loads the full
// person and relationship sets via ListAllPersons/ListAllRelationships and
// hands the in-memory collections to the engine.
package storage

import (
	"context"

	"github.com/kindredgraph/kindred/pkg/types"
)

// PersonStore provides CRUD operations and pagination for person records.
type PersonStore interface {
	// StorePerson creates or updates a person (upsert semantics).
	StorePerson(ctx context.Context, person *types.Person) error

	// GetPerson retrieves a person by ID.
	// Returns ErrNotFound if the person doesn't exist.
	GetPerson(ctx context.Context, id string) (*types.Person, error)

	// ListPersons retrieves persons with pagination and filtering.
	ListPersons(ctx context.Context, opts ListOptions) (*PaginatedResult[types.Person], error)

	// ListAllPersons returns the full person set, unpaginated.
	// This is the batch load used once per chart request.
	ListAllPersons(ctx context.Context) ([]types.Person, error)

	// DeletePerson removes a person by ID along with all relationship rows
	// that reference it. Returns ErrNotFound if the person doesn't exist.
	DeletePerson(ctx context.Context, id string) error
}

// RelationshipStore manages kinship relationship rows.
//
// Implementations must maintain the bidirectional-storage invariant: every
// kinship fact is persisted as two directional rows (inverse types for
// PARENT/CHILD, identical types for SPOUSE/SIBLING), created and deleted
// together.
type RelationshipStore interface {
	// CreateRelationship stores a kinship fact as a pair of directional
	// rows in one transaction. The passed relationship is the forward row;
	// its mirror is derived and stored alongside it.
	CreateRelationship(ctx context.Context, rel *types.Relationship) error

	// GetRelationshipsForPerson returns all relationship rows where the
	// given person is the PersonID endpoint.
	GetRelationshipsForPerson(ctx context.Context, personID string) ([]types.Relationship, error)

	// ListAllRelationships returns the full relationship row set.
	// This is the batch load used once per chart request.
	ListAllRelationships(ctx context.Context) ([]types.Relationship, error)

	// DeleteRelationship removes both directional rows of the kinship fact
	// the given row ID belongs to. Returns ErrNotFound if the row doesn't
	// exist.
	DeleteRelationship(ctx context.Context, id string) error
}

// RecordStore combines person and relationship storage with lifecycle
// management. Both backend implementations (sqlite, postgres) satisfy it.
type RecordStore interface {
	PersonStore
	RelationshipStore

	// Close releases any resources held by the store.
	Close() error
}
