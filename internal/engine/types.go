// Package engine converts a flat store of people and pairwise relationship
// rows into bounded-depth genealogical chart layouts and aggregate
// demographic statistics.
//
// The engine is a pure, re-entrant read-side transformation: it receives the
// already-loaded person and relationship collections, allocates a fresh
// traversal accumulator per call, performs no I/O, and never mutates its
// inputs. It is safe to call from concurrent requests as long as the caller
// does not mutate the input collections concurrently.
package engine

import (
	"errors"

	"github.com/kindredgraph/kindred/pkg/types"
)

// ErrRootNotFound is returned when a chart request names a root person ID
// that is absent from the loaded person set. It is surfaced before any
// traversal begins; the calling layer translates it into a user-facing
// message.
var ErrRootNotFound = errors.New("root person not found")

// ChartType identifies the requested chart layout.
type ChartType string

// Chart types.
const (
	ChartAncestors   ChartType = "ancestors"
	ChartDescendants ChartType = "descendants"
	ChartHourglass   ChartType = "hourglass"
	ChartFullTree    ChartType = "tree"
	ChartBowtie      ChartType = "bowtie"
	ChartFan         ChartType = "fan"
)

// EdgeType classifies a chart edge.
type EdgeType string

// Edge types.
const (
	EdgeParentChild EdgeType = "parent-child"
	EdgeSpouse      EdgeType = "spouse"
)

// Side tags a bowtie-chart node as belonging to the paternal or maternal
// lineage half, or to the center (the root and its spouses).
type Side string

// Bowtie sides.
const (
	SideCenter   Side = "center"
	SidePaternal Side = "paternal"
	SideMaternal Side = "maternal"
)

// ChartNode is one person in a chart layout.
type ChartNode struct {
	ID        string       `json:"id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Gender    types.Gender `json:"gender,omitempty"`
	PhotoURL  string       `json:"photo_url,omitempty"`
	BirthYear int          `json:"birth_year,omitempty"` // 0 when unknown
	DeathYear int          `json:"death_year,omitempty"` // 0 when unknown
	IsLiving  bool         `json:"is_living"`

	// Generation is the signed offset from the chart root: negative for
	// ancestors, positive for descendants, zero for the root and its
	// spouses.
	Generation int `json:"generation"`

	// Side is set only on bowtie charts.
	Side Side `json:"side,omitempty"`

	// Angle is set only on fan charts; degrees in [0, 360).
	Angle *float64 `json:"angle,omitempty"`
}

// ChartEdge is one deduplicated kinship link in a chart layout.
// The ID doubles as the canonical order-independent dedup key.
type ChartEdge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"` // parent for parent-child edges
	Target string   `json:"target"` // child for parent-child edges
	Type   EdgeType `json:"type"`
}

// ChartMeta describes a completed chart result.
type ChartMeta struct {
	ChartType        ChartType `json:"chart_type"`
	RootID           string    `json:"root_id"`
	NodeCount        int       `json:"node_count"`
	EdgeCount        int       `json:"edge_count"`
	MinGeneration    int       `json:"min_generation"`
	MaxGeneration    int       `json:"max_generation"`
	TotalGenerations int       `json:"total_generations"`

	// Bowtie-only lineage counts.
	PaternalCount int `json:"paternal_count,omitempty"`
	MaternalCount int `json:"maternal_count,omitempty"`
}

// ChartResult is the node/edge collection returned for graph chart types.
type ChartResult struct {
	Nodes []ChartNode `json:"nodes"`
	Edges []ChartEdge `json:"edges"`
	Meta  ChartMeta   `json:"meta"`
}

func intAbs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
