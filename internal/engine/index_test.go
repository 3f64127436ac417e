package engine

import (
	"testing"

	"github.com/kindredgraph/kindred/pkg/types"
)

func TestBuildRelationshipIndex_EmptyInput(t *testing.T) {
	ix := BuildRelationshipIndex(nil)

	if got := ix.ParentsOf("per:any"); len(got) != 0 {
		t.Errorf("expected no parents, got %v", got)
	}
	if got := ix.ChildrenOf("per:any"); len(got) != 0 {
		t.Errorf("expected no children, got %v", got)
	}
	if got := ix.SpousesOf("per:any"); len(got) != 0 {
		t.Errorf("expected no spouses, got %v", got)
	}
}

func TestBuildRelationshipIndex_Routing(t *testing.T) {
	f := newFixture()
	f.addParent("per:child", "per:parent")
	f.addSpouses("per:a", "per:b")

	ix := BuildRelationshipIndex(f.rels)

	parents := ix.ParentsOf("per:child")
	if len(parents) != 1 || parents[0] != "per:parent" {
		t.Errorf("expected [per:parent], got %v", parents)
	}

	children := ix.ChildrenOf("per:parent")
	if len(children) != 1 || children[0] != "per:child" {
		t.Errorf("expected [per:child], got %v", children)
	}

	// SPOUSE rows populate both directions.
	if got := ix.SpousesOf("per:a"); len(got) != 1 || got[0] != "per:b" {
		t.Errorf("expected [per:b], got %v", got)
	}
	if got := ix.SpousesOf("per:b"); len(got) != 1 || got[0] != "per:a" {
		t.Errorf("expected [per:a], got %v", got)
	}
}

func TestBuildRelationshipIndex_CollapsesBidirectionalDuplication(t *testing.T) {
	f := newFixture()
	// The same marriage recorded twice, once per direction; the map-of-set
	// representation must not double-count.
	f.addSpouses("per:a", "per:b")

	ix := BuildRelationshipIndex(f.rels)
	if got := ix.SpousesOf("per:a"); len(got) != 1 {
		t.Errorf("expected 1 spouse after dedup, got %v", got)
	}
}

func TestBuildRelationshipIndex_SiblingRowsNotIndexed(t *testing.T) {
	rels := []types.Relationship{
		{ID: "rel:1", PersonID: "per:a", RelatedPersonID: "per:b", Type: types.RelationSibling},
		{ID: "rel:2", PersonID: "per:b", RelatedPersonID: "per:a", Type: types.RelationSibling},
	}

	ix := BuildRelationshipIndex(rels)
	if len(ix.ParentsOf("per:a"))+len(ix.ChildrenOf("per:a"))+len(ix.SpousesOf("per:a")) != 0 {
		t.Errorf("sibling rows must not contribute to traversal maps")
	}
}

func TestBuildRelationshipIndex_SkipsDegenerateRows(t *testing.T) {
	rels := []types.Relationship{
		{ID: "rel:1", PersonID: "per:a", RelatedPersonID: "per:a", Type: types.RelationSpouse},
		{ID: "rel:2", PersonID: "", RelatedPersonID: "per:b", Type: types.RelationParent},
	}

	ix := BuildRelationshipIndex(rels)
	if len(ix.SpousesOf("per:a")) != 0 {
		t.Errorf("self-referencing row must be ignored")
	}
	if len(ix.ParentsOf("")) != 0 {
		t.Errorf("row with empty endpoint must be ignored")
	}
}

func TestParentsOf_SortedOrder(t *testing.T) {
	f := newFixture()
	f.addParent("per:child", "per:z-parent")
	f.addParent("per:child", "per:a-parent")

	ix := BuildRelationshipIndex(f.rels)
	parents := ix.ParentsOf("per:child")
	if len(parents) != 2 || parents[0] != "per:a-parent" || parents[1] != "per:z-parent" {
		t.Errorf("expected sorted parents, got %v", parents)
	}
}
