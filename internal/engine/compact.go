package engine

import (
	"fmt"
	"sort"
)

// CompactNode is one person in the nested compact descendant tree, with the
// person's spouses embedded as minimal summaries.
type CompactNode struct {
	ID        string         `json:"id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Gender    string         `json:"gender,omitempty"`
	PhotoURL  string         `json:"photo_url,omitempty"`
	BirthYear int            `json:"birth_year,omitempty"`
	IsLiving  bool           `json:"is_living"`
	Spouses   []SpouseEntry  `json:"spouses,omitempty"`
	Children  []*CompactNode `json:"children,omitempty"`
}

// SpouseEntry is the minimal spouse summary embedded in a compact node.
type SpouseEntry struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthYear int    `json:"birth_year,omitempty"`
}

// CompactEntry is one row of the flattened pre-order list used by
// virtualized UI rendering.
type CompactEntry struct {
	ID          string `json:"id"`
	Generation  int    `json:"generation"`
	ParentID    string `json:"parent_id,omitempty"` // empty for the root
	HasChildren bool   `json:"has_children"`
	SpouseCount int    `json:"spouse_count"`
}

// CompactTreeResult pairs the nested tree with its flattened list.
type CompactTreeResult struct {
	Root    *CompactNode   `json:"root"`
	Entries []CompactEntry `json:"entries"`
	Meta    ChartMeta      `json:"meta"`
}

// CompactTree recursively builds the nested descendant tree from the root,
// bounded by depthLimit, plus the parallel flattened pre-order list. The
// flattened list is computed by a second pass over the already-built nested
// tree, not by re-traversing relationships.
func (e *Engine) CompactTree(rootID string, depthLimit int) (*CompactTreeResult, error) {
	if _, err := e.requireRoot(rootID); err != nil {
		return nil, err
	}

	visiting := make(map[string]bool)
	root := e.buildCompactNode(rootID, 0, depthLimit, visiting)
	if root == nil {
		// requireRoot passed, so this cannot happen in practice.
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, rootID)
	}

	res := &CompactTreeResult{Root: root}
	maxGen := 0
	flattenCompact(root, 0, "", &res.Entries, &maxGen)

	res.Meta = ChartMeta{
		ChartType:        ChartDescendants,
		RootID:           rootID,
		NodeCount:        len(res.Entries),
		MaxGeneration:    maxGen,
		TotalGenerations: maxGen + 1,
	}
	return res, nil
}

// buildCompactNode returns nil past the depth limit, for unknown persons,
// and for persons already on the current build path (a data-quality cycle
// guard; clean descendant data cannot cycle).
func (e *Engine) buildCompactNode(id string, generation, depthLimit int, visiting map[string]bool) *CompactNode {
	if generation > depthLimit {
		return nil
	}
	person, ok := e.persons[id]
	if !ok {
		return nil
	}
	if visiting[id] {
		return nil
	}
	visiting[id] = true
	defer delete(visiting, id)

	node := &CompactNode{
		ID:        id,
		FirstName: person.FirstName,
		LastName:  person.LastName,
		Gender:    string(person.Gender),
		PhotoURL:  person.PhotoURL,
		BirthYear: person.BirthYear(),
		IsLiving:  person.IsLiving,
	}

	for _, spouseID := range e.index.SpousesOf(id) {
		spouse, ok := e.persons[spouseID]
		if !ok {
			continue
		}
		node.Spouses = append(node.Spouses, SpouseEntry{
			ID:        spouseID,
			FirstName: spouse.FirstName,
			LastName:  spouse.LastName,
			BirthYear: spouse.BirthYear(),
		})
	}

	childIDs := e.index.ChildrenOf(id)
	for _, childID := range childIDs {
		child := e.buildCompactNode(childID, generation+1, depthLimit, visiting)
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}

	// Children sort by birth date ascending; persons with no recorded
	// birth date sort last. ID tie-break keeps the order stable.
	sort.SliceStable(node.Children, func(i, j int) bool {
		yi, yj := node.Children[i].BirthYear, node.Children[j].BirthYear
		if yi == 0 {
			yi = missingYear
		}
		if yj == 0 {
			yj = missingYear
		}
		if yi != yj {
			return yi < yj
		}
		return node.Children[i].ID < node.Children[j].ID
	})

	return node
}

// flattenCompact walks the built tree in pre-order, emitting one entry per
// node with its generation, parent pointer, and child/spouse summary flags.
func flattenCompact(node *CompactNode, generation int, parentID string, out *[]CompactEntry, maxGen *int) {
	if generation > *maxGen {
		*maxGen = generation
	}
	*out = append(*out, CompactEntry{
		ID:          node.ID,
		Generation:  generation,
		ParentID:    parentID,
		HasChildren: len(node.Children) > 0,
		SpouseCount: len(node.Spouses),
	})
	for _, child := range node.Children {
		flattenCompact(child, generation+1, node.ID, out, maxGen)
	}
}
