package engine

import (
	"sort"

	"github.com/kindredgraph/kindred/pkg/types"
)

// SelfRelation marks diagonal matrix cells.
const SelfRelation = "SELF"

// MatrixPerson is one axis entry of the relationship matrix.
type MatrixPerson struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// MatrixCell is one ordered-pair cell. Relation is empty when no
// relationship row links the pair, SELF on the diagonal, and the recorded
// relationship type otherwise (what the column person is relative to the
// row person).
type MatrixCell struct {
	RowID    string `json:"row_id"`
	ColumnID string `json:"column_id"`
	Relation string `json:"relation,omitempty"`
}

// MatrixResult is the complete pairwise grid for the selected person set.
type MatrixResult struct {
	Persons []MatrixPerson `json:"persons"`
	Cells   [][]MatrixCell `json:"cells"` // Cells[row][col], axes follow Persons order

	// TotalRelationships counts kinship facts, not directional rows: the
	// off-diagonal matched cell count divided by two, since every fact is
	// stored once per direction.
	TotalRelationships int `json:"total_relationships"`
}

// RelationshipMatrix produces one cell per ordered pair over the selected
// people. With an explicit non-empty personIDs list, unknown IDs are
// skipped and input order is preserved; otherwise the first limit persons
// sorted by last name (then first name, then ID) are selected.
func (e *Engine) RelationshipMatrix(personIDs []string, limit int) (*MatrixResult, error) {
	var selected []string
	if len(personIDs) > 0 {
		seen := make(map[string]bool, len(personIDs))
		for _, id := range personIDs {
			if _, ok := e.persons[id]; !ok || seen[id] {
				continue
			}
			seen[id] = true
			selected = append(selected, id)
		}
	} else {
		selected = append(selected, e.ordered...)
		sort.SliceStable(selected, func(i, j int) bool {
			a, b := e.persons[selected[i]], e.persons[selected[j]]
			if a.LastName != b.LastName {
				return a.LastName < b.LastName
			}
			if a.FirstName != b.FirstName {
				return a.FirstName < b.FirstName
			}
			return a.ID < b.ID
		})
		if limit > 0 && len(selected) > limit {
			selected = selected[:limit]
		}
	}

	inSet := make(map[string]bool, len(selected))
	for _, id := range selected {
		inSet[id] = true
	}

	// Directional lookup limited to pairs inside the selected set.
	type pair struct{ from, to string }
	lookup := make(map[pair]types.RelationType)
	for _, rel := range e.rels {
		if !inSet[rel.PersonID] || !inSet[rel.RelatedPersonID] {
			continue
		}
		if rel.PersonID == rel.RelatedPersonID {
			continue
		}
		lookup[pair{rel.PersonID, rel.RelatedPersonID}] = rel.Type
	}

	res := &MatrixResult{
		Persons: make([]MatrixPerson, 0, len(selected)),
		Cells:   make([][]MatrixCell, len(selected)),
	}
	for _, id := range selected {
		res.Persons = append(res.Persons, MatrixPerson{
			ID:       id,
			FullName: e.persons[id].FullName(),
		})
	}

	matched := 0
	for i, rowID := range selected {
		res.Cells[i] = make([]MatrixCell, len(selected))
		for j, colID := range selected {
			cell := MatrixCell{RowID: rowID, ColumnID: colID}
			if rowID == colID {
				cell.Relation = SelfRelation
			} else if typ, ok := lookup[pair{rowID, colID}]; ok {
				cell.Relation = string(typ)
				matched++
			}
			res.Cells[i][j] = cell
		}
	}

	// Each kinship fact is a pair of directional rows.
	res.TotalRelationships = matched / 2
	return res, nil
}
