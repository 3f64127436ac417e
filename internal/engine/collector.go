package engine

import "fmt"

// collector is the per-call traversal accumulator: a node set with a
// deterministic visit order, an edge map keyed by an order-independent
// composite key, a generation-offset map, and an optional side map for
// bowtie charts.
//
// Created fresh per request and discarded after formatting; no traversal
// state is shared across requests. The already-expanded short-circuit in
// ascend/descend is what bounds traversal on graphs with remarriage loops
// and shared ancestors — it is a correctness invariant, not an
// optimization.
//
// Collection and expansion are tracked separately: a node reached first as
// somebody's spouse is collected (it appears in the chart) but has not yet
// been expanded, so a later parent-hop to the same node still walks its own
// lineage exactly once.
type collector struct {
	eng *Engine

	nodes        map[string]bool
	order        []string // node IDs in first-visit order
	edges        map[string]ChartEdge
	edgeOrder    []string // edge keys in first-add order
	generations  map[string]int
	sides        map[string]Side
	expandedUp   map[string]bool
	expandedDown map[string]bool
}

func newCollector(eng *Engine) *collector {
	return &collector{
		eng:          eng,
		nodes:        make(map[string]bool),
		edges:        make(map[string]ChartEdge),
		generations:  make(map[string]int),
		sides:        make(map[string]Side),
		expandedUp:   make(map[string]bool),
		expandedDown: make(map[string]bool),
	}
}

// visit records the person at the given generation offset. It returns false
// when the person is unknown to the loaded person index (dangling
// relationship references are silently dropped) or has already been
// collected; revisits keep the first-assigned generation.
func (c *collector) visit(id string, generation int) bool {
	if _, ok := c.eng.persons[id]; !ok {
		return false
	}
	if c.nodes[id] {
		return false
	}
	c.nodes[id] = true
	c.order = append(c.order, id)
	c.generations[id] = generation
	return true
}

// setSide tags a node's lineage side, first write wins.
func (c *collector) setSide(id string, side Side) {
	if _, ok := c.sides[id]; !ok {
		c.sides[id] = side
	}
}

// parentChildKey builds the order-independent dedup key for a parent-child
// hop. Both directional relationship rows of one kinship fact collapse to
// this single key.
func parentChildKey(parentID, childID string) string {
	a, b := parentID, childID
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("pc:%s--%s", a, b)
}

// spouseKey builds the dedup key for a spouse pairing, lexicographically
// sorted so A–B and B–A collapse to one entry.
func spouseKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("sp:%s--%s", a, b)
}

func (c *collector) addEdge(key string, edge ChartEdge) {
	if _, ok := c.edges[key]; ok {
		return
	}
	edge.ID = key
	c.edges[key] = edge
	c.edgeOrder = append(c.edgeOrder, key)
}

func (c *collector) addParentChildEdge(parentID, childID string) {
	c.addEdge(parentChildKey(parentID, childID), ChartEdge{
		Source: parentID,
		Target: childID,
		Type:   EdgeParentChild,
	})
}

func (c *collector) addSpouseEdge(a, b string) {
	source, target := a, b
	if target < source {
		source, target = target, source
	}
	c.addEdge(spouseKey(a, b), ChartEdge{
		Source: source,
		Target: target,
		Type:   EdgeSpouse,
	})
}

// collectSpouses includes the person's spouses at the person's own
// generation. Spouses are not ancestors or descendants but must render
// alongside their partner; they are collected without expanding their own
// lineage.
func (c *collector) collectSpouses(id string, generation int) {
	for _, spouseID := range c.eng.index.SpousesOf(id) {
		if _, ok := c.eng.persons[spouseID]; !ok {
			continue
		}
		c.visit(spouseID, generation)
		c.addSpouseEdge(id, spouseID)
	}
}

// ascend expands the parents of a collected person, decrementing the
// generation counter by exactly one per hop. Expansion stops when the
// parent generation would exceed the depth limit in magnitude or when the
// adjacency map has no entry. Every traversed hop adds exactly one edge;
// re-expanding an already-expanded person is a no-op.
func (c *collector) ascend(id string, generation, depthLimit int) {
	parentGen := generation - 1
	if intAbs(parentGen) > depthLimit {
		return
	}
	if c.expandedUp[id] {
		return
	}
	c.expandedUp[id] = true

	for _, parentID := range c.eng.index.ParentsOf(id) {
		if _, ok := c.eng.persons[parentID]; !ok {
			continue
		}
		c.addParentChildEdge(parentID, id)
		c.visit(parentID, parentGen)
		c.collectSpouses(parentID, parentGen)
		c.ascend(parentID, parentGen, depthLimit)
	}
}

// descend expands the children of a collected person, incrementing the
// generation counter by exactly one per hop. Same bounding and
// deduplication rules as ascend.
func (c *collector) descend(id string, generation, depthLimit int) {
	childGen := generation + 1
	if intAbs(childGen) > depthLimit {
		return
	}
	if c.expandedDown[id] {
		return
	}
	c.expandedDown[id] = true

	for _, childID := range c.eng.index.ChildrenOf(id) {
		if _, ok := c.eng.persons[childID]; !ok {
			continue
		}
		c.addParentChildEdge(id, childID)
		c.visit(childID, childGen)
		c.collectSpouses(childID, childGen)
		c.descend(childID, childGen, depthLimit)
	}
}

// ascendSide is the bowtie variant of ascend: it propagates the lineage
// side tag unchanged through the parent's own ancestor subtree, including
// the spouses collected alongside each ancestor.
func (c *collector) ascendSide(id string, generation, depthLimit int, side Side) {
	parentGen := generation - 1
	if intAbs(parentGen) > depthLimit {
		return
	}
	if c.expandedUp[id] {
		return
	}
	c.expandedUp[id] = true

	for _, parentID := range c.eng.index.ParentsOf(id) {
		if _, ok := c.eng.persons[parentID]; !ok {
			continue
		}
		c.addParentChildEdge(parentID, id)
		c.visit(parentID, parentGen)
		c.setSide(parentID, side)
		for _, spouseID := range c.eng.index.SpousesOf(parentID) {
			if _, ok := c.eng.persons[spouseID]; !ok {
				continue
			}
			c.visit(spouseID, parentGen)
			c.setSide(spouseID, side)
			c.addSpouseEdge(parentID, spouseID)
		}
		c.ascendSide(parentID, parentGen, depthLimit, side)
	}
}

// result formats the accumulator into a ChartResult with nodes in
// first-visit order and edges in first-add order.
func (c *collector) result(chartType ChartType, rootID string) *ChartResult {
	res := &ChartResult{
		Nodes: make([]ChartNode, 0, len(c.order)),
		Edges: make([]ChartEdge, 0, len(c.edgeOrder)),
	}

	minGen, maxGen := 0, 0
	for _, id := range c.order {
		person := c.eng.persons[id]
		gen := c.generations[id]
		if gen < minGen {
			minGen = gen
		}
		if gen > maxGen {
			maxGen = gen
		}

		node := ChartNode{
			ID:         id,
			FirstName:  person.FirstName,
			LastName:   person.LastName,
			Gender:     person.Gender,
			PhotoURL:   person.PhotoURL,
			BirthYear:  person.BirthYear(),
			DeathYear:  person.DeathYear(),
			IsLiving:   person.IsLiving,
			Generation: gen,
		}
		if side, ok := c.sides[id]; ok {
			node.Side = side
		}
		res.Nodes = append(res.Nodes, node)
	}

	for _, key := range c.edgeOrder {
		res.Edges = append(res.Edges, c.edges[key])
	}

	res.Meta = ChartMeta{
		ChartType:        chartType,
		RootID:           rootID,
		NodeCount:        len(res.Nodes),
		EdgeCount:        len(res.Edges),
		MinGeneration:    minGen,
		MaxGeneration:    maxGen,
		TotalGenerations: maxGen - minGen + 1,
	}
	if len(res.Nodes) == 0 {
		res.Meta.TotalGenerations = 0
	}
	return res
}
