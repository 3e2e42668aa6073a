// Package nodelink renders checked pipelines as node-link diagrams.
//
// # Usage
//
// Convert a pipeline and its verdict to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(p, verdict, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The generated DOT uses a left-to-right layout (rankdir=LR) with rounded box
// nodes, the way pipeline editors lay out their flows. Nodes and edges on the
// cycle reported by the verdict are drawn in red. Edges the check skipped
// because an endpoint is unknown are left out, so the diagram shows exactly
// the graph that was checked.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. No external Graphviz installation is needed.
package nodelink
