package dag

import (
	"errors"
	"math/rand"
	"slices"
	"testing"
)

func edges(pairs ...string) []Edge[string] {
	out := make([]Edge[string], 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Edge[string]{Source: pairs[i], Target: pairs[i+1]})
	}
	return out
}

func TestIsAcyclic(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges []Edge[string]
		want  bool
	}{
		{"empty graph", nil, nil, true},
		{"single node", []string{"a"}, nil, true},
		{"self loop", []string{"a"}, edges("a", "a"), false},
		{"linear chain", []string{"a", "b", "c"}, edges("a", "b", "b", "c"), true},
		{"three cycle", []string{"a", "b", "c"}, edges("a", "b", "b", "c", "c", "a"), false},
		{"two cycle", []string{"a", "b"}, edges("a", "b", "b", "a"), false},
		{"diamond", []string{"a", "b", "c", "d"}, edges("a", "b", "a", "c", "b", "d", "c", "d"), true},
		{"parallel edges", []string{"a", "b"}, edges("a", "b", "a", "b"), true},
		{"dangling target", []string{"a", "b"}, edges("a", "c"), true},
		{"dangling source", []string{"a", "b"}, edges("c", "a"), true},
		{"edges without nodes", nil, edges("a", "b", "b", "a"), true},
		{"cycle through dangling node ignored", []string{"a", "b"}, edges("a", "b", "b", "x", "x", "a"), true},
		{"cycle in second component", []string{"a", "b", "c", "d"}, edges("a", "b", "c", "d", "d", "c"), false},
		{"cycle reachable late", []string{"a", "b", "c", "d"}, edges("a", "b", "b", "c", "c", "d", "d", "b"), false},
		{"shared descendant visited twice", []string{"a", "b", "c"}, edges("b", "c", "a", "c"), true},
		{"duplicate node ids", []string{"a", "a", "b"}, edges("a", "b"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAcyclic(tt.nodes, tt.edges); got != tt.want {
				t.Errorf("IsAcyclic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheck_SkippedEdges(t *testing.T) {
	nodes := []string{"a", "b"}
	in := edges("a", "c", "x", "b", "a", "b", "y", "z")

	res, err := Check(nodes, in, Limits{})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !res.Acyclic {
		t.Error("Acyclic = false, want true")
	}
	if res.Edges != 1 {
		t.Errorf("Edges = %d, want 1", res.Edges)
	}
	if len(res.Skipped) != 3 {
		t.Fatalf("len(Skipped) = %d, want 3", len(res.Skipped))
	}

	want := []struct {
		index  int
		reason error
	}{
		{0, ErrUnknownTarget},
		{1, ErrUnknownSource},
		{3, ErrUnknownSource},
	}
	for i, w := range want {
		s := res.Skipped[i]
		if s.Index != w.index {
			t.Errorf("Skipped[%d].Index = %d, want %d", i, s.Index, w.index)
		}
		if !errors.Is(s.Reason, w.reason) {
			t.Errorf("Skipped[%d].Reason = %v, want %v", i, s.Reason, w.reason)
		}
		if s.Edge != in[w.index] {
			t.Errorf("Skipped[%d].Edge = %v, want %v", i, s.Edge, in[w.index])
		}
	}
}

func TestCheck_Cycle(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges []Edge[string]
		want  []string
	}{
		{"self loop", []string{"a"}, edges("a", "a"), []string{"a"}},
		{"three cycle", []string{"a", "b", "c"}, edges("a", "b", "b", "c", "c", "a"), []string{"a", "b", "c"}},
		{"tail before cycle", []string{"a", "b", "c", "d"}, edges("a", "b", "b", "c", "c", "d", "d", "b"), []string{"b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Check(tt.nodes, tt.edges, Limits{})
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if res.Acyclic {
				t.Fatal("Acyclic = true, want false")
			}
			if !slices.Equal(res.Cycle, tt.want) {
				t.Errorf("Cycle = %v, want %v", res.Cycle, tt.want)
			}
		})
	}
}

func TestCheck_DuplicateNodes(t *testing.T) {
	res, err := Check([]string{"a", "b", "a"}, edges("a", "b"), Limits{})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if res.Nodes != 2 {
		t.Errorf("Nodes = %d, want 2", res.Nodes)
	}
	if !res.Acyclic {
		t.Error("Acyclic = false, want true")
	}
}

func TestCheck_Limits(t *testing.T) {
	nodes := []string{"a", "b", "c"}
	in := edges("a", "b", "b", "c")

	tests := []struct {
		name    string
		limits  Limits
		wantErr bool
	}{
		{"unlimited", Limits{}, false},
		{"at node limit", Limits{MaxNodes: 3}, false},
		{"over node limit", Limits{MaxNodes: 2}, true},
		{"at edge limit", Limits{MaxEdges: 2}, false},
		{"over edge limit", Limits{MaxEdges: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Check(nodes, in, tt.limits)
			if tt.wantErr && !errors.Is(err, ErrGraphTooLarge) {
				t.Errorf("Check() error = %v, want ErrGraphTooLarge", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Check() error = %v, want nil", err)
			}
		})
	}
}

func TestCheck_Idempotent(t *testing.T) {
	nodes := []string{"a", "b", "c", "d"}
	in := edges("a", "b", "b", "c", "c", "d", "d", "b", "a", "z")

	first, _ := Check(nodes, in, Limits{})
	second, _ := Check(nodes, in, Limits{})

	if first.Acyclic != second.Acyclic {
		t.Errorf("Acyclic differs between calls: %v vs %v", first.Acyclic, second.Acyclic)
	}
	if !slices.Equal(first.Cycle, second.Cycle) {
		t.Errorf("Cycle differs between calls: %v vs %v", first.Cycle, second.Cycle)
	}
	if len(first.Skipped) != len(second.Skipped) {
		t.Errorf("Skipped differs between calls: %d vs %d", len(first.Skipped), len(second.Skipped))
	}
}

func TestCheck_EdgeOrderIndependent(t *testing.T) {
	nodes := []string{"a", "b", "c", "d", "e", "f"}
	graphs := map[string][]Edge[string]{
		"acyclic": edges("a", "b", "a", "c", "b", "d", "c", "d", "d", "e", "e", "f", "a", "f"),
		"cyclic":  edges("a", "b", "b", "c", "c", "d", "d", "e", "e", "c", "a", "f"),
	}
	rng := rand.New(rand.NewSource(42))

	for name, in := range graphs {
		t.Run(name, func(t *testing.T) {
			want := IsAcyclic(nodes, in)
			for i := 0; i < 50; i++ {
				shuffled := slices.Clone(in)
				rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
				if got := IsAcyclic(nodes, shuffled); got != want {
					t.Fatalf("IsAcyclic(%v) = %v, want %v", shuffled, got, want)
				}
			}
		})
	}
}

// TestCheck_Exhaustive compares against Kahn's algorithm for every directed
// graph on three nodes, self-loops included.
func TestCheck_Exhaustive(t *testing.T) {
	nodes := []int{0, 1, 2}
	var all []Edge[int]
	for _, s := range nodes {
		for _, d := range nodes {
			all = append(all, Edge[int]{Source: s, Target: d})
		}
	}

	for mask := 0; mask < 1<<len(all); mask++ {
		var in []Edge[int]
		for i, e := range all {
			if mask&(1<<i) != 0 {
				in = append(in, e)
			}
		}
		want := kahnAcyclic(nodes, in)
		if got := IsAcyclic(nodes, in); got != want {
			t.Errorf("IsAcyclic(%v) = %v, want %v", in, got, want)
		}
	}
}

func kahnAcyclic(nodes []int, in []Edge[int]) bool {
	indeg := make(map[int]int)
	out := make(map[int][]int)
	for _, e := range in {
		out[e.Source] = append(out[e.Source], e.Target)
		indeg[e.Target]++
	}
	var queue []int
	for _, n := range nodes {
		if indeg[n] == 0 {
			queue = append(queue, n)
		}
	}
	seen := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		seen++
		for _, m := range out[n] {
			indeg[m]--
			if indeg[m] == 0 {
				queue = append(queue, m)
			}
		}
	}
	return seen == len(nodes)
}

func TestCheck_DeepChain(t *testing.T) {
	const n = 1_000_000
	nodes := make([]int, n)
	in := make([]Edge[int], 0, n)
	for i := range nodes {
		nodes[i] = i
		if i > 0 {
			in = append(in, Edge[int]{Source: i - 1, Target: i})
		}
	}

	if !IsAcyclic(nodes, in) {
		t.Fatal("IsAcyclic(chain) = false, want true")
	}

	in = append(in, Edge[int]{Source: n - 1, Target: 0})
	res, err := Check(nodes, in, Limits{})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if res.Acyclic {
		t.Fatal("Acyclic = true for closed chain, want false")
	}
	if len(res.Cycle) != n {
		t.Errorf("len(Cycle) = %d, want %d", len(res.Cycle), n)
	}
}
