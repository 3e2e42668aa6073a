// Package pkg provides the core libraries of pipelinecheck.
//
// # Overview
//
// Pipelinecheck validates the pipelines users build in node-based workflow
// editors: it reports how many nodes and edges a pipeline has and whether it
// forms a directed acyclic graph. The pkg directory is organized into:
//
//  1. [dag] - Cycle detection over generic node IDs
//  2. [pipeline] - Wire format, verdicts and the cached, audited [pipeline.Runner]
//  3. [cache] - Verdict caches (null, file, Redis)
//  4. [audit] - Check records (log, MongoDB)
//  5. [render/nodelink] - Graphviz diagrams of checked pipelines
//
// Supporting packages: [errors] for coded errors, [observability] for
// instrumentation hooks and [buildinfo] for version data.
//
// # Architecture
//
// The data flow of a check:
//
//	JSON request body
//	         ↓
//	    [pipeline.Decode] (validate shape, build typed IDs)
//	         ↓
//	    [pipeline.Runner] (cache lookup, limits, hooks)
//	         ↓
//	    [dag.Check] (adjacency map + iterative DFS)
//	         ↓
//	    [pipeline.Verdict] {num_nodes, num_edges, is_dag}
//
// # Quick Start
//
//	p, err := pipeline.Decode(strings.NewReader(body))
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(nil, nil, nil, nil)
//	res, err := runner.Check(ctx, p)
//	fmt.Println(res.Verdict.IsDAG)
//
// [dag]: github.com/matzehuels/pipelinecheck/pkg/dag
// [pipeline]: github.com/matzehuels/pipelinecheck/pkg/pipeline
// [pipeline.Decode]: github.com/matzehuels/pipelinecheck/pkg/pipeline#Decode
// [pipeline.Runner]: github.com/matzehuels/pipelinecheck/pkg/pipeline#Runner
// [pipeline.Verdict]: github.com/matzehuels/pipelinecheck/pkg/pipeline#Verdict
// [dag.Check]: github.com/matzehuels/pipelinecheck/pkg/dag#Check
// [cache]: github.com/matzehuels/pipelinecheck/pkg/cache
// [audit]: github.com/matzehuels/pipelinecheck/pkg/audit
// [render/nodelink]: github.com/matzehuels/pipelinecheck/pkg/render/nodelink
// [errors]: github.com/matzehuels/pipelinecheck/pkg/errors
// [observability]: github.com/matzehuels/pipelinecheck/pkg/observability
// [buildinfo]: github.com/matzehuels/pipelinecheck/pkg/buildinfo
package pkg
