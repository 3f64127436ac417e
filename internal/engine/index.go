package engine

import (
	"sort"

	"github.com/kindredgraph/kindred/pkg/types"
)

// RelationshipIndex holds the three adjacency structures derived from the
// full relationship row set: child→parents, parent→children, and the
// symmetric spouse map.
//
// The relationship set is bidirectionally stored (each kinship fact appears
// once per direction with the directionally-appropriate type), so each map
// is populated from the row direction that names it: PARENT rows fill
// childToParents keyed by the child, CHILD rows fill parentToChildren keyed
// by the parent, and SPOUSE rows fill both directions of the spouse map.
// SIBLING rows carry no generation information and are not indexed.
// The map-of-set representation collapses the duplication, so row count is
// never trusted as edge count.
type RelationshipIndex struct {
	childToParents   map[string]map[string]bool
	parentToChildren map[string]map[string]bool
	spouses          map[string]map[string]bool
}

// BuildRelationshipIndex routes every relationship row into the adjacency
// map implied by its type. Missing or empty input yields empty maps; there
// are no error conditions.
func BuildRelationshipIndex(rels []types.Relationship) *RelationshipIndex {
	ix := &RelationshipIndex{
		childToParents:   make(map[string]map[string]bool),
		parentToChildren: make(map[string]map[string]bool),
		spouses:          make(map[string]map[string]bool),
	}

	for _, rel := range rels {
		if rel.PersonID == "" || rel.RelatedPersonID == "" || rel.PersonID == rel.RelatedPersonID {
			continue
		}

		switch rel.Type {
		case types.RelationParent:
			// Related person is the person's parent.
			addAdjacency(ix.childToParents, rel.PersonID, rel.RelatedPersonID)
		case types.RelationChild:
			// Related person is the person's child.
			addAdjacency(ix.parentToChildren, rel.PersonID, rel.RelatedPersonID)
		case types.RelationSpouse:
			addAdjacency(ix.spouses, rel.PersonID, rel.RelatedPersonID)
			addAdjacency(ix.spouses, rel.RelatedPersonID, rel.PersonID)
		case types.RelationSibling:
			// Siblings are derivable from shared parents and do not drive
			// generation traversal.
		}
	}

	return ix
}

func addAdjacency(m map[string]map[string]bool, key, value string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]bool)
		m[key] = set
	}
	set[value] = true
}

// ParentsOf returns the parents of the given person in sorted order.
// Sorted iteration keeps traversal deterministic so that first-write-wins
// generation assignment is stable across calls.
func (ix *RelationshipIndex) ParentsOf(id string) []string {
	return sortedKeys(ix.childToParents[id])
}

// ChildrenOf returns the children of the given person in sorted order.
func (ix *RelationshipIndex) ChildrenOf(id string) []string {
	return sortedKeys(ix.parentToChildren[id])
}

// SpousesOf returns the spouses of the given person in sorted order.
func (ix *RelationshipIndex) SpousesOf(id string) []string {
	return sortedKeys(ix.spouses[id])
}

// HasParents reports whether the person has at least one recorded parent.
// Persons without recorded parents act as roots for generation layering.
func (ix *RelationshipIndex) HasParents(id string) bool {
	return len(ix.childToParents[id]) > 0
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
