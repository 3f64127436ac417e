package engine

import (
	"testing"

	"github.com/kindredgraph/kindred/pkg/types"
)

func TestBowtieChart_SidesPartitionNodes(t *testing.T) {
	eng := threeGenerations().engine()

	res, err := eng.BowtieChart("per:root", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := map[Side]int{}
	for _, node := range res.Nodes {
		if node.Side == "" {
			t.Errorf("node %s has no side tag", node.ID)
			continue
		}
		counts[node.Side]++
	}

	// Paternal + maternal + center must sum to the total node count.
	total := counts[SidePaternal] + counts[SideMaternal] + counts[SideCenter]
	if total != res.Meta.NodeCount {
		t.Errorf("side counts %v sum to %d, want %d", counts, total, res.Meta.NodeCount)
	}

	if res.Meta.PaternalCount != counts[SidePaternal] {
		t.Errorf("meta paternal count %d != tagged count %d", res.Meta.PaternalCount, counts[SidePaternal])
	}
	if res.Meta.MaternalCount != counts[SideMaternal] {
		t.Errorf("meta maternal count %d != tagged count %d", res.Meta.MaternalCount, counts[SideMaternal])
	}
}

func TestBowtieChart_SideAssignment(t *testing.T) {
	eng := threeGenerations().engine()

	res, err := eng.BowtieChart("per:root", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expect := map[string]Side{
		"per:root":   SideCenter,
		"per:spouse": SideCenter,
		"per:father": SidePaternal,
		"per:mother": SideMaternal,
		"per:pgf":    SidePaternal,
		"per:pgm":    SidePaternal,
		"per:mgf":    SideMaternal,
		"per:mgm":    SideMaternal,
	}
	for id, want := range expect {
		node := nodeByID(res, id)
		if node == nil {
			t.Errorf("expected %s in bowtie chart", id)
			continue
		}
		if node.Side != want {
			t.Errorf("%s: side = %s, want %s", id, node.Side, want)
		}
	}
}

func TestBowtieChart_FemaleFatherlessRootIsAllMaternal(t *testing.T) {
	f := newFixture()
	f.addPerson("per:root", "Only", "Child", types.GenderFemale, 1990)
	f.addPerson("per:mom", "Mom", "Child", types.GenderFemale, 1960)
	f.addParent("per:root", "per:mom")

	eng := f.engine()
	res, err := eng.BowtieChart("per:root", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Meta.PaternalCount != 0 {
		t.Errorf("expected no paternal nodes, got %d", res.Meta.PaternalCount)
	}
	if res.Meta.MaternalCount != 1 {
		t.Errorf("expected 1 maternal node, got %d", res.Meta.MaternalCount)
	}
}

func TestBowtieChart_DepthZero(t *testing.T) {
	eng := threeGenerations().engine()

	res, err := eng.BowtieChart("per:root", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, node := range res.Nodes {
		if node.Side != SideCenter {
			t.Errorf("depth 0 must only contain center nodes, %s is %s", node.ID, node.Side)
		}
	}
}
