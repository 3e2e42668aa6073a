package pipeline

import (
	"errors"

	"github.com/matzehuels/pipelinecheck/pkg/dag"
)

// Skip reasons reported in [SkippedEdge.Reason].
const (
	ReasonUnknownSource = "unknown_source"
	ReasonUnknownTarget = "unknown_target"
)

// Verdict is the result of checking a pipeline.
//
// NumNodes and NumEdges are the submitted counts, including duplicate node IDs
// and skipped edges. IsDAG is computed over the edges whose endpoints both
// name submitted nodes.
type Verdict struct {
	NumNodes int  `json:"num_nodes"`
	NumEdges int  `json:"num_edges"`
	IsDAG    bool `json:"is_dag"`

	// Diagnostics, omitted from the default response.
	Cycle        []ID          `json:"cycle,omitempty"`
	SkippedEdges []SkippedEdge `json:"skipped_edges,omitempty"`
}

// SkippedEdge is an edge left out of the check.
type SkippedEdge struct {
	Index  int    `json:"index"`
	Source ID     `json:"source"`
	Target ID     `json:"target"`
	Reason string `json:"reason"`
}

// Summary returns the verdict without diagnostics.
func (v Verdict) Summary() Verdict {
	return Verdict{NumNodes: v.NumNodes, NumEdges: v.NumEdges, IsDAG: v.IsDAG}
}

// NewVerdict builds the verdict for p from a check result.
func NewVerdict(p *Pipeline, res dag.Result[ID]) Verdict {
	v := Verdict{
		NumNodes: len(p.Nodes),
		NumEdges: len(p.Edges),
		IsDAG:    res.Acyclic,
		Cycle:    res.Cycle,
	}
	for _, s := range res.Skipped {
		v.SkippedEdges = append(v.SkippedEdges, SkippedEdge{
			Index:  s.Index,
			Source: s.Edge.Source,
			Target: s.Edge.Target,
			Reason: skipReason(s.Reason),
		})
	}
	return v
}

func skipReason(err error) string {
	if errors.Is(err, dag.ErrUnknownSource) {
		return ReasonUnknownSource
	}
	return ReasonUnknownTarget
}
