package dag_test

import (
	"fmt"

	"github.com/matzehuels/pipelinecheck/pkg/dag"
)

func ExampleIsAcyclic() {
	nodes := []string{"load", "clean", "train"}
	edges := []dag.Edge[string]{
		{Source: "load", Target: "clean"},
		{Source: "clean", Target: "train"},
	}

	fmt.Println("DAG:", dag.IsAcyclic(nodes, edges))
	// Output:
	// DAG: true
}

func ExampleCheck() {
	// train feeds back into clean, and one edge points at a missing node
	nodes := []string{"load", "clean", "train"}
	edges := []dag.Edge[string]{
		{Source: "load", Target: "clean"},
		{Source: "clean", Target: "train"},
		{Source: "train", Target: "clean"},
		{Source: "train", Target: "deploy"},
	}

	res, err := dag.Check(nodes, edges, dag.Limits{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("DAG:", res.Acyclic)
	fmt.Println("Cycle:", res.Cycle)
	for _, s := range res.Skipped {
		fmt.Printf("Skipped edge %d: %v\n", s.Index, s.Reason)
	}
	// Output:
	// DAG: false
	// Cycle: [clean train]
	// Skipped edge 3: unknown target node
}
