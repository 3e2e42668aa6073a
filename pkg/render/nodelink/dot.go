package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pipelinecheck/pkg/pipeline"
)

const cycleColor = "#c0392b"

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node type and the ID's JSON kind to labels.
	// When false, only the node ID is shown.
	Detailed bool
}

// ToDOT converts a pipeline to Graphviz DOT format.
//
// Nodes are emitted in submission order; a repeated ID is drawn once. Edges
// listed in v.SkippedEdges are omitted and the cycle in v.Cycle, if any, is
// highlighted.
func ToDOT(p *pipeline.Pipeline, v pipeline.Verdict, opts Options) string {
	names := make(map[pipeline.ID]string, len(p.Nodes))
	onCycle := make(map[pipeline.ID]bool, len(v.Cycle))
	for _, id := range v.Cycle {
		onCycle[id] = true
	}
	cycleEdges := make(map[[2]pipeline.ID]bool, len(v.Cycle))
	for i, id := range v.Cycle {
		cycleEdges[[2]pipeline.ID{id, v.Cycle[(i+1)%len(v.Cycle)]}] = true
	}
	skipped := make(map[int]bool, len(v.SkippedEdges))
	for _, s := range v.SkippedEdges {
		skipped[s.Index] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range p.Nodes {
		if _, ok := names[n.ID]; ok {
			continue
		}
		name := "n" + strconv.Itoa(len(names))
		names[n.ID] = name
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if onCycle[n.ID] {
			attrs = append(attrs, fmt.Sprintf("color=%q", cycleColor), fmt.Sprintf("fontcolor=%q", cycleColor), "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	drawn := make(map[[2]pipeline.ID]bool)
	for i, e := range p.Edges {
		src, okSrc := names[e.Source]
		dst, okDst := names[e.Target]
		if skipped[i] || !okSrc || !okDst {
			continue
		}
		pair := [2]pipeline.ID{e.Source, e.Target}
		if cycleEdges[pair] && !drawn[pair] {
			drawn[pair] = true
			fmt.Fprintf(&buf, "  %s -> %s [color=%q, penwidth=2];\n", src, dst, cycleColor)
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", src, dst)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n pipeline.Node, detailed bool) string {
	if !detailed {
		return n.ID.String()
	}
	parts := []string{n.ID.String(), "id: " + n.ID.Kind().String()}
	if t := n.Type(); t != "" {
		parts = append(parts, "type: "+t)
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// zero-origin viewBox so the SVG scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
