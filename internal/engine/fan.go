package engine

import "github.com/kindredgraph/kindred/pkg/types"

// fanAngles assigns each node of a completed ancestor collection an angular
// position for radial rendering. Angles are in degrees within [0, 360).
//
// The root spans the full circle and each person's span is split in half
// between their two parents, mirroring the two-parents-per-person branching
// factor: the father (MALE parent) takes the first half of the span, the
// mother the second. A person is placed at the midpoint of their span, so
// ancestors at the same generation always receive distinct angles and every
// angle falls within the root's full span.
//
// Spouses collected alongside an ancestor are not part of the lineage
// subdivision; they inherit their partner's angle so radial renderers can
// stack them on the same ray.
func (e *Engine) fanAngles(rootID string, inChart map[string]bool) map[string]float64 {
	angles := make(map[string]float64, len(inChart))
	e.assignSpan(rootID, 0, 360, inChart, angles)

	// Nodes the lineage walk never reached (the root's and ancestors'
	// spouses) take their partner's angle.
	for id := range inChart {
		if _, ok := angles[id]; ok {
			continue
		}
		for _, spouseID := range e.index.SpousesOf(id) {
			if angle, ok := angles[spouseID]; ok {
				angles[id] = angle
				break
			}
		}
	}
	return angles
}

// assignSpan places id at the midpoint of [lo, hi) and subdivides the span
// between its parents. Only nodes present in the completed collection are
// placed; the already-assigned check keeps shared ancestors from being
// repositioned by a second lineage path.
func (e *Engine) assignSpan(id string, lo, hi float64, inChart map[string]bool, angles map[string]float64) {
	if !inChart[id] {
		return
	}
	if _, ok := angles[id]; ok {
		return
	}
	angles[id] = (lo + hi) / 2

	parents := e.fanOrderedParents(id)
	mid := (lo + hi) / 2
	spans := [2][2]float64{{lo, mid}, {mid, hi}}
	for i, parentID := range parents {
		if i >= len(spans) {
			break
		}
		e.assignSpan(parentID, spans[i][0], spans[i][1], inChart, angles)
	}
}

// fanOrderedParents returns a person's parents with the MALE parent first,
// falling back to sorted-ID order, so the paternal line consistently takes
// the first half of each span.
func (e *Engine) fanOrderedParents(id string) []string {
	parents := e.index.ParentsOf(id)
	if len(parents) < 2 {
		return parents
	}
	ordered := make([]string, 0, len(parents))
	rest := make([]string, 0, len(parents))
	for _, parentID := range parents {
		if p, ok := e.persons[parentID]; ok && p.Gender == types.GenderMale {
			ordered = append(ordered, parentID)
		} else {
			rest = append(rest, parentID)
		}
	}
	return append(ordered, rest...)
}
