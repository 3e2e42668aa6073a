// Package dag checks whether a directed graph submitted by a pipeline editor
// is acyclic.
//
// # Overview
//
// Pipeline editors let users wire nodes together freely, so a submitted graph
// is loosely structured: node IDs are opaque comparable values, edges may be
// repeated or point at themselves, and edges may name nodes that were never
// submitted. [Check] builds an adjacency map over the submitted node IDs,
// drops every edge with an unknown endpoint, and runs a depth-first search
// over what is left.
//
//	nodes := []string{"load", "clean", "train"}
//	edges := []dag.Edge[string]{
//	    {Source: "load", Target: "clean"},
//	    {Source: "clean", Target: "train"},
//	}
//	ok := dag.IsAcyclic(nodes, edges) // true
//
// # Dangling Edges
//
// An edge whose source or target is not among the submitted nodes is not an
// error. It is skipped and reported in [Result.Skipped] together with the
// reason ([ErrUnknownSource] or [ErrUnknownTarget]); the verdict is computed
// over the remaining edges only.
//
// # Duplicate IDs
//
// Node IDs are assumed unique. Duplicates collapse into a single adjacency
// entry, so [Result.Nodes] may be smaller than the number of submitted nodes.
//
// # Traversal
//
// The search uses white/gray/black colouring: a node is gray while it is on
// the active path and black once all of its descendants have been explored.
// Reaching a gray node means a back-edge and therefore a cycle. The traversal
// keeps its own work stack instead of recursing, so deep graphs (long chains
// of millions of nodes) cannot exhaust the goroutine stack. [Limits] bound the
// input size; exceeding them yields [ErrGraphTooLarge].
//
// # Concurrency
//
// All traversal state is allocated per call. [Check] and [IsAcyclic] are safe
// to call from multiple goroutines as long as the input slices are not
// mutated concurrently.
package dag
