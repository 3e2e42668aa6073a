package dag

// IsAcyclic reports whether the graph formed by nodes and edges contains no
// directed cycle. Edges with an endpoint outside nodes are ignored.
func IsAcyclic[ID comparable](nodes []ID, edges []Edge[ID]) bool {
	res, _ := Check(nodes, edges, Limits{})
	return res.Acyclic
}

// Check builds the adjacency map for nodes and edges and searches it for a
// directed cycle.
//
// Roots are tried in the order of nodes and the search stops at the first
// cycle. Edges with an unknown endpoint are reported in [Result.Skipped] and
// never cause an error. The only error is [ErrGraphTooLarge] when limits are
// exceeded, in which case the returned Result is the zero value.
//
// Time and space are O(V + E) over the valid edges.
func Check[ID comparable](nodes []ID, edges []Edge[ID], limits Limits) (Result[ID], error) {
	if err := limits.check(len(nodes), len(edges)); err != nil {
		return Result[ID]{}, err
	}

	t := newTraversal(nodes)
	res := Result[ID]{Nodes: len(t.adj)}

	for i, e := range edges {
		if _, ok := t.adj[e.Source]; !ok {
			res.Skipped = append(res.Skipped, SkippedEdge[ID]{Index: i, Edge: e, Reason: ErrUnknownSource})
			continue
		}
		if _, ok := t.adj[e.Target]; !ok {
			res.Skipped = append(res.Skipped, SkippedEdge[ID]{Index: i, Edge: e, Reason: ErrUnknownTarget})
			continue
		}
		t.adj[e.Source] = append(t.adj[e.Source], e.Target)
		res.Edges++
	}

	for _, id := range nodes {
		if t.visited[id] {
			continue
		}
		if cycle := t.visit(id); cycle != nil {
			res.Cycle = cycle
			return res, nil
		}
	}

	res.Acyclic = true
	return res, nil
}

// frame is one entry of the explicit DFS stack: a node and the index of the
// next neighbor to explore.
type frame[ID comparable] struct {
	id   ID
	next int
}

// traversal bundles the state of a single check. It is never shared between
// calls.
type traversal[ID comparable] struct {
	adj     map[ID][]ID
	visited map[ID]bool // black or gray
	onStack map[ID]bool // gray
	stack   []frame[ID]
}

func newTraversal[ID comparable](nodes []ID) *traversal[ID] {
	t := &traversal[ID]{
		adj:     make(map[ID][]ID, len(nodes)),
		visited: make(map[ID]bool, len(nodes)),
		onStack: make(map[ID]bool),
	}
	for _, id := range nodes {
		t.adj[id] = nil
	}
	return t
}

// visit explores everything reachable from root that was not explored by an
// earlier root. It returns the cycle on the active path if a back-edge is
// found, or nil.
func (t *traversal[ID]) visit(root ID) []ID {
	t.push(root)
	for len(t.stack) > 0 {
		top := &t.stack[len(t.stack)-1]
		neighbors := t.adj[top.id]
		if top.next == len(neighbors) {
			t.onStack[top.id] = false
			t.stack = t.stack[:len(t.stack)-1]
			continue
		}
		n := neighbors[top.next]
		top.next++

		switch {
		case t.onStack[n]:
			return t.cycleFrom(n)
		case t.visited[n]:
			continue
		default:
			t.push(n)
		}
	}
	return nil
}

func (t *traversal[ID]) push(id ID) {
	t.visited[id] = true
	t.onStack[id] = true
	t.stack = append(t.stack, frame[ID]{id: id})
}

// cycleFrom returns the active path starting at the gray node id.
func (t *traversal[ID]) cycleFrom(id ID) []ID {
	start := 0
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i].id == id {
			start = i
			break
		}
	}
	cycle := make([]ID, 0, len(t.stack)-start)
	for _, f := range t.stack[start:] {
		cycle = append(cycle, f.id)
	}
	return cycle
}
