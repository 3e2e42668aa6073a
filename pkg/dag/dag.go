package dag

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSource is the skip reason for an edge whose Source is not a
	// submitted node ID.
	ErrUnknownSource = errors.New("unknown source node")

	// ErrUnknownTarget is the skip reason for an edge whose Target is not a
	// submitted node ID. It is only reported when the source is known.
	ErrUnknownTarget = errors.New("unknown target node")

	// ErrGraphTooLarge is returned by [Check] when the input exceeds the
	// configured [Limits].
	ErrGraphTooLarge = errors.New("graph too large")
)

// Edge is a directed connection from Source to Target.
// Self-loops and parallel edges are valid input.
type Edge[ID comparable] struct {
	Source ID
	Target ID
}

// SkippedEdge describes an edge that was left out of the traversal because one
// of its endpoints is not a submitted node.
type SkippedEdge[ID comparable] struct {
	Index  int      // Position in the submitted edge slice
	Edge   Edge[ID] // The edge as submitted
	Reason error    // ErrUnknownSource or ErrUnknownTarget
}

// Limits bounds the size of graphs accepted by [Check].
// A zero field means no limit.
type Limits struct {
	MaxNodes int
	MaxEdges int
}

func (l Limits) check(nodes, edges int) error {
	if l.MaxNodes > 0 && nodes > l.MaxNodes {
		return fmt.Errorf("%w: %d nodes exceeds limit of %d", ErrGraphTooLarge, nodes, l.MaxNodes)
	}
	if l.MaxEdges > 0 && edges > l.MaxEdges {
		return fmt.Errorf("%w: %d edges exceeds limit of %d", ErrGraphTooLarge, edges, l.MaxEdges)
	}
	return nil
}

// Result is the outcome of a cycle check.
type Result[ID comparable] struct {
	// Acyclic reports whether the graph restricted to valid edges is a DAG.
	Acyclic bool

	// Cycle holds the nodes of the first cycle found, in traversal order.
	// The last node has an edge back to the first. Empty when Acyclic.
	Cycle []ID

	// Skipped lists edges with an unknown endpoint, in submission order.
	Skipped []SkippedEdge[ID]

	// Nodes is the number of distinct node IDs.
	Nodes int

	// Edges is the number of edges that took part in the traversal.
	Edges int
}
