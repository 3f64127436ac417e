package engine

import (
	"fmt"
	"time"

	"github.com/kindredgraph/kindred/pkg/types"
)

// fixture accumulates persons and relationship rows for engine tests.
// addFact stores every kinship fact as the pair of directional rows the
// storage layer would write, so tests exercise the same bidirectional
// duplication the engine sees in production.
type fixture struct {
	persons []types.Person
	rels    []types.Relationship
	relSeq  int
}

func newFixture() *fixture {
	return &fixture{}
}

func (f *fixture) addPerson(id, firstName, lastName string, gender types.Gender, birthYear int) {
	p := types.Person{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Gender:    gender,
		IsLiving:  true,
	}
	if birthYear > 0 {
		born := time.Date(birthYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		p.DateOfBirth = &born
	}
	f.persons = append(f.persons, p)
}

func (f *fixture) addRow(personID, relatedID string, typ types.RelationType) {
	f.relSeq++
	f.rels = append(f.rels, types.Relationship{
		ID:              fmt.Sprintf("rel:%03d", f.relSeq),
		PersonID:        personID,
		RelatedPersonID: relatedID,
		Type:            typ,
		IsActive:        true,
	})
}

// addParent records that parentID is a parent of childID, as both
// directional rows.
func (f *fixture) addParent(childID, parentID string) {
	f.addRow(childID, parentID, types.RelationParent)
	f.addRow(parentID, childID, types.RelationChild)
}

// addSpouses records a marriage as both directional rows.
func (f *fixture) addSpouses(a, b string) {
	f.addRow(a, b, types.RelationSpouse)
	f.addRow(b, a, types.RelationSpouse)
}

func (f *fixture) engine() *Engine {
	return New(f.persons, f.rels)
}

// threeGenerations builds a root with two generations of ancestors and one
// generation of descendants:
//
//	pgf --- pgm        mgf --- mgm        (generation -2)
//	     |                  |
//	   father ---------- mother           (generation -1)
//	              |
//	            root --- spouse           (generation 0)
//	              |
//	        child1, child2                (generation +1)
func threeGenerations() *fixture {
	f := newFixture()
	f.addPerson("per:root", "Root", "Family", types.GenderMale, 1970)
	f.addPerson("per:spouse", "Spouse", "Family", types.GenderFemale, 1972)
	f.addPerson("per:father", "Father", "Family", types.GenderMale, 1940)
	f.addPerson("per:mother", "Mother", "Family", types.GenderFemale, 1945)
	f.addPerson("per:pgf", "PatGrandpa", "Family", types.GenderMale, 1910)
	f.addPerson("per:pgm", "PatGrandma", "Family", types.GenderFemale, 1915)
	f.addPerson("per:mgf", "MatGrandpa", "Family", types.GenderMale, 1912)
	f.addPerson("per:mgm", "MatGrandma", "Family", types.GenderFemale, 1918)
	f.addPerson("per:child1", "Elder", "Family", types.GenderFemale, 1995)
	f.addPerson("per:child2", "Younger", "Family", types.GenderMale, 1998)

	f.addSpouses("per:root", "per:spouse")
	f.addSpouses("per:father", "per:mother")
	f.addSpouses("per:pgf", "per:pgm")
	f.addSpouses("per:mgf", "per:mgm")

	f.addParent("per:root", "per:father")
	f.addParent("per:root", "per:mother")
	f.addParent("per:father", "per:pgf")
	f.addParent("per:father", "per:pgm")
	f.addParent("per:mother", "per:mgf")
	f.addParent("per:mother", "per:mgm")
	f.addParent("per:child1", "per:root")
	f.addParent("per:child1", "per:spouse")
	f.addParent("per:child2", "per:root")
	f.addParent("per:child2", "per:spouse")

	return f
}

func nodeByID(res *ChartResult, id string) *ChartNode {
	for i := range res.Nodes {
		if res.Nodes[i].ID == id {
			return &res.Nodes[i]
		}
	}
	return nil
}

func countEdges(res *ChartResult, typ EdgeType) int {
	n := 0
	for _, edge := range res.Edges {
		if edge.Type == typ {
			n++
		}
	}
	return n
}
