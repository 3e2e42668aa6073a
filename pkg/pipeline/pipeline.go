// Package pipeline defines the wire format of a submitted pipeline graph and
// runs cycle checks on it.
//
// # Wire Format
//
// A pipeline is a JSON object with required "nodes" and "edges" arrays, the
// shape sent by node-based editors such as React Flow:
//
//	{
//	  "nodes": [{"id": "input-1", "type": "customInput"}, {"id": "llm-1"}],
//	  "edges": [{"id": "e1", "source": "input-1", "target": "llm-1"}]
//	}
//
// Every node must carry an "id" and every edge a "source" and "target"; each
// of those is a JSON string, number or boolean (see [ID]). All other fields
// are preserved in Attrs but play no part in the check. [Decode] rejects
// anything else before it reaches the checker.
//
// # Verdict
//
// A check produces a [Verdict] with the submitted node and edge counts and
// whether the graph is a DAG. Edges naming unknown nodes are skipped, not
// rejected; they are listed in the verdict's diagnostics.
//
// # Running Checks
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil, logger)
//	p, err := pipeline.Decode(r.Body)
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Check(ctx, p)
//	fmt.Println(res.Verdict.IsDAG)
package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/matzehuels/pipelinecheck/pkg/cache"
	"github.com/matzehuels/pipelinecheck/pkg/dag"
	perrors "github.com/matzehuels/pipelinecheck/pkg/errors"
)

// Pipeline is a submitted graph.
type Pipeline struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a pipeline node. Only ID matters to the checker.
type Node struct {
	ID    ID
	Attrs map[string]json.RawMessage // all fields except "id"
}

// Type returns the node's "type" attribute when it is a string.
func (n Node) Type() string {
	var s string
	if raw, ok := n.Attrs["type"]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// MarshalJSON writes the node with its ID and all preserved attributes.
func (n Node) MarshalJSON() ([]byte, error) {
	return marshalWith(n.Attrs, map[string]any{"id": n.ID})
}

// UnmarshalJSON decodes a node object. The "id" field is required.
func (n *Node) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data, "node")
	if err != nil {
		return err
	}
	id, err := requiredID(fields, "id")
	if err != nil {
		return err
	}
	delete(fields, "id")
	*n = Node{ID: id, Attrs: fields}
	return nil
}

// Edge is a directed pipeline edge.
type Edge struct {
	Source ID
	Target ID
	Attrs  map[string]json.RawMessage // all fields except "source" and "target"
}

// MarshalJSON writes the edge with its endpoints and all preserved attributes.
func (e Edge) MarshalJSON() ([]byte, error) {
	return marshalWith(e.Attrs, map[string]any{"source": e.Source, "target": e.Target})
}

// UnmarshalJSON decodes an edge object. "source" and "target" are required.
func (e *Edge) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data, "edge")
	if err != nil {
		return err
	}
	src, err := requiredID(fields, "source")
	if err != nil {
		return err
	}
	dst, err := requiredID(fields, "target")
	if err != nil {
		return err
	}
	delete(fields, "source")
	delete(fields, "target")
	*e = Edge{Source: src, Target: dst, Attrs: fields}
	return nil
}

// Decode reads a pipeline from r.
//
// Malformed JSON yields an INVALID_INPUT error. Valid JSON of the wrong shape
// (missing or null "nodes"/"edges", a node without "id", an edge without
// "source" or "target", an ID that is not a scalar) yields INVALID_PIPELINE
// with the offending element's index in the message.
func Decode(r io.Reader) (*Pipeline, error) {
	var raw struct {
		Nodes *[]json.RawMessage `json:"nodes"`
		Edges *[]json.RawMessage `json:"edges"`
	}

	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, classifyDecodeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "malformed JSON: trailing data after pipeline object")
	}

	if raw.Nodes == nil {
		return nil, perrors.New(perrors.ErrCodeInvalidPipeline, "field \"nodes\" is required")
	}
	if raw.Edges == nil {
		return nil, perrors.New(perrors.ErrCodeInvalidPipeline, "field \"edges\" is required")
	}

	p := &Pipeline{
		Nodes: make([]Node, len(*raw.Nodes)),
		Edges: make([]Edge, len(*raw.Edges)),
	}
	for i, data := range *raw.Nodes {
		if err := p.Nodes[i].UnmarshalJSON(data); err != nil {
			return nil, perrors.New(perrors.ErrCodeInvalidPipeline, "nodes[%d]: %v", i, err)
		}
	}
	for i, data := range *raw.Edges {
		if err := p.Edges[i].UnmarshalJSON(data); err != nil {
			return nil, perrors.New(perrors.ErrCodeInvalidPipeline, "edges[%d]: %v", i, err)
		}
	}
	return p, nil
}

// Graph returns the node IDs and edges in submission order, ready for
// [dag.Check].
func (p *Pipeline) Graph() ([]ID, []dag.Edge[ID]) {
	nodes := make([]ID, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = n.ID
	}
	edges := make([]dag.Edge[ID], len(p.Edges))
	for i, e := range p.Edges {
		edges[i] = dag.Edge[ID]{Source: e.Source, Target: e.Target}
	}
	return nodes, edges
}

// StructureHash returns a hash of the node IDs and edge endpoints in
// submission order. Attributes do not contribute, so two submissions that
// differ only in positions or labels share a hash.
func (p *Pipeline) StructureHash() string {
	nodes, edges := p.Graph()
	pairs := make([][2]ID, len(edges))
	for i, e := range edges {
		pairs[i] = [2]ID{e.Source, e.Target}
	}
	data, _ := json.Marshal(struct {
		Nodes []ID    `json:"n"`
		Edges [][2]ID `json:"e"`
	}{nodes, pairs})
	return cache.Hash(data)
}

func classifyDecodeError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return perrors.New(perrors.ErrCodeInvalidInput, "empty request body")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "malformed JSON")
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return perrors.Wrap(perrors.ErrCodeInvalidPipeline, err, "field %q must be an array", typeErr.Field)
		}
		return perrors.Wrap(perrors.ErrCodeInvalidPipeline, err, "pipeline must be a JSON object")
	default:
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read request body")
	}
}

func objectFields(data []byte, what string) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%s must be an object", what)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func requiredID(fields map[string]json.RawMessage, key string) (ID, error) {
	raw, ok := fields[key]
	if !ok {
		return ID{}, fmt.Errorf("missing required field %q", key)
	}
	var id ID
	if err := id.UnmarshalJSON(raw); err != nil {
		return ID{}, fmt.Errorf("field %q: %w", key, err)
	}
	return id, nil
}

func marshalWith(attrs map[string]json.RawMessage, fixed map[string]any) ([]byte, error) {
	out := make(map[string]any, len(attrs)+len(fixed))
	for k, v := range attrs {
		out[k] = v
	}
	for k, v := range fixed {
		out[k] = v
	}
	return json.Marshal(out)
}
