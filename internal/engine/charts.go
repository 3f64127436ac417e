package engine

import (
	"fmt"
	"sort"

	"github.com/kindredgraph/kindred/pkg/types"
)

// Engine is the chart engine built once per request from the two
// batch-loaded collections. It holds the person index, the relationship
// adjacency index, and the raw relationship rows (used by the matrix
// builder, which also needs SIBLING rows).
type Engine struct {
	persons map[string]*types.Person
	ordered []string // person IDs sorted for deterministic whole-set passes
	rels    []types.Relationship
	index   *RelationshipIndex
}

// New builds a chart engine over the given person and relationship
// collections. The collections are not copied; the caller must not mutate
// them while the engine is in use.
func New(persons []types.Person, rels []types.Relationship) *Engine {
	eng := &Engine{
		persons: make(map[string]*types.Person, len(persons)),
		rels:    rels,
	}
	for i := range persons {
		p := &persons[i]
		if p.ID == "" {
			continue
		}
		if _, ok := eng.persons[p.ID]; ok {
			continue
		}
		eng.persons[p.ID] = p
		eng.ordered = append(eng.ordered, p.ID)
	}
	sort.Strings(eng.ordered)
	eng.index = BuildRelationshipIndex(rels)
	return eng
}

// Index exposes the relationship adjacency index, for callers that layer
// additional computation over a built engine (e.g. the fan layout tests).
func (e *Engine) Index() *RelationshipIndex {
	return e.index
}

// Person returns the loaded person with the given ID, or nil.
func (e *Engine) Person(id string) *types.Person {
	return e.persons[id]
}

// requireRoot fails fast before any traversal begins when the requested
// root is absent from the loaded person set.
func (e *Engine) requireRoot(rootID string) (*types.Person, error) {
	person, ok := e.persons[rootID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, rootID)
	}
	return person, nil
}

// AncestorChart walks childToParents from the root up to depthLimit
// generations, including each ancestor's spouses at the ancestor's own
// generation.
func (e *Engine) AncestorChart(rootID string, depthLimit int) (*ChartResult, error) {
	if _, err := e.requireRoot(rootID); err != nil {
		return nil, err
	}
	c := newCollector(e)
	c.visit(rootID, 0)
	c.collectSpouses(rootID, 0)
	c.ascend(rootID, 0, depthLimit)
	return c.result(ChartAncestors, rootID), nil
}

// DescendantChart walks parentToChildren from the root down to depthLimit
// generations.
func (e *Engine) DescendantChart(rootID string, depthLimit int) (*ChartResult, error) {
	if _, err := e.requireRoot(rootID); err != nil {
		return nil, err
	}
	c := newCollector(e)
	c.visit(rootID, 0)
	c.collectSpouses(rootID, 0)
	c.descend(rootID, 0, depthLimit)
	return c.result(ChartDescendants, rootID), nil
}

// HourglassChart runs one ancestor pass and one descendant pass
// independently from generation 0, each with its own depth limit.
func (e *Engine) HourglassChart(rootID string, ancestorDepth, descendantDepth int) (*ChartResult, error) {
	if _, err := e.requireRoot(rootID); err != nil {
		return nil, err
	}
	c := newCollector(e)
	c.visit(rootID, 0)
	c.collectSpouses(rootID, 0)
	c.ascend(rootID, 0, ancestorDepth)
	c.descend(rootID, 0, descendantDepth)
	return c.result(ChartHourglass, rootID), nil
}

// FullTreeChart combines ancestors and descendants of the root and
// additionally walks the descendants of the root's spouses, so that
// step-children from a spouse's other marriages render alongside the
// root's own line. The root and its spouses sit at generation 0.
func (e *Engine) FullTreeChart(rootID string, depthLimit int) (*ChartResult, error) {
	if _, err := e.requireRoot(rootID); err != nil {
		return nil, err
	}
	c := newCollector(e)
	c.visit(rootID, 0)
	c.collectSpouses(rootID, 0)
	c.ascend(rootID, 0, depthLimit)
	c.descend(rootID, 0, depthLimit)
	for _, spouseID := range e.index.SpousesOf(rootID) {
		if _, ok := e.persons[spouseID]; !ok {
			continue
		}
		c.descend(spouseID, 0, depthLimit)
	}
	return c.result(ChartFullTree, rootID), nil
}

// BowtieChart builds an ancestor chart split into paternal and maternal
// lineage halves. The root and its spouses are tagged center; each of the
// root's immediate parents seeds a side based on the parent's gender
// (paternal for MALE, maternal otherwise), and the side tag propagates
// unchanged through that parent's ancestor subtree.
func (e *Engine) BowtieChart(rootID string, depthLimit int) (*ChartResult, error) {
	if _, err := e.requireRoot(rootID); err != nil {
		return nil, err
	}
	c := newCollector(e)
	c.visit(rootID, 0)
	c.setSide(rootID, SideCenter)
	for _, spouseID := range e.index.SpousesOf(rootID) {
		if _, ok := e.persons[spouseID]; !ok {
			continue
		}
		if c.visit(spouseID, 0) {
			c.setSide(spouseID, SideCenter)
		}
		c.addSpouseEdge(rootID, spouseID)
	}

	if depthLimit >= 1 {
		parents := e.index.ParentsOf(rootID)

		// Tag every immediate parent with its own side before touching
		// spouses or subtrees, so the maternal parent cannot be claimed
		// as "spouse of the paternal parent" first.
		sideOf := make(map[string]Side, len(parents))
		for _, parentID := range parents {
			parent, ok := e.persons[parentID]
			if !ok {
				continue
			}
			side := SideMaternal
			if parent.Gender == types.GenderMale {
				side = SidePaternal
			}
			sideOf[parentID] = side
			c.addParentChildEdge(parentID, rootID)
			c.visit(parentID, -1)
			c.setSide(parentID, side)
		}

		for _, parentID := range parents {
			side, ok := sideOf[parentID]
			if !ok {
				continue
			}
			for _, spouseID := range e.index.SpousesOf(parentID) {
				if _, ok := e.persons[spouseID]; !ok {
					continue
				}
				c.visit(spouseID, -1)
				c.setSide(spouseID, side)
				c.addSpouseEdge(parentID, spouseID)
			}
			c.ascendSide(parentID, -1, depthLimit, side)
		}
	}

	res := c.result(ChartBowtie, rootID)
	for _, node := range res.Nodes {
		switch node.Side {
		case SidePaternal:
			res.Meta.PaternalCount++
		case SideMaternal:
			res.Meta.MaternalCount++
		}
	}
	return res, nil
}

// FanChart builds an ancestor chart and assigns each node an angular
// position for radial rendering. Angles are in degrees; see fan.go.
func (e *Engine) FanChart(rootID string, depthLimit int) (*ChartResult, error) {
	res, err := e.AncestorChart(rootID, depthLimit)
	if err != nil {
		return nil, err
	}
	res.Meta.ChartType = ChartFan

	inChart := make(map[string]bool, len(res.Nodes))
	for _, node := range res.Nodes {
		inChart[node.ID] = true
	}
	angles := e.fanAngles(rootID, inChart)

	for i := range res.Nodes {
		if angle, ok := angles[res.Nodes[i].ID]; ok {
			a := angle
			res.Nodes[i].Angle = &a
		}
	}
	return res, nil
}
