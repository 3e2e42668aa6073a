package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pipelinecheck/internal/config"
	perrors "github.com/matzehuels/pipelinecheck/pkg/errors"
	"github.com/matzehuels/pipelinecheck/pkg/pipeline"
)

const dagPipeline = `{
	"nodes": [{"id": "load"}, {"id": "clean"}, {"id": "train"}],
	"edges": [{"source": "load", "target": "clean"}, {"source": "clean", "target": "train"}]
}`

const cyclicPipeline = `{
	"nodes": [{"id": "load"}, {"id": "clean"}, {"id": "train"}],
	"edges": [
		{"source": "load", "target": "clean"},
		{"source": "clean", "target": "train"},
		{"source": "train", "target": "clean"},
		{"source": "train", "target": "deploy"}
	]
}`

func writePipeline(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCheckDAG(t *testing.T) {
	c := testCLI(t)
	path := writePipeline(t, dagPipeline)

	out, err := execute(t, c, "", "check", path)
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	for _, want := range []string{"is a DAG", "3 nodes", "2 edges", iconFresh} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}

	out, err = execute(t, c, "", "check", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, iconCached) {
		t.Errorf("second check should be served from cache:\n%s", out)
	}
}

func TestCheckCycle(t *testing.T) {
	c := testCLI(t)
	path := writePipeline(t, cyclicPipeline)

	out, err := execute(t, c, "", "check", path)
	if err != nil {
		t.Fatalf("check without --fail-on-cycle should succeed: %v", err)
	}
	for _, want := range []string{"has a cycle", "clean", "train", "skipped edge 3", "unknown target"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}

	_, err = execute(t, c, "", "check", path, "--fail-on-cycle", "--no-cache")
	if !errors.Is(err, ErrNotDAG) {
		t.Errorf("--fail-on-cycle error = %v, want ErrNotDAG", err)
	}

	if _, err := execute(t, c, "", "check", writePipeline(t, dagPipeline), "--fail-on-cycle"); err != nil {
		t.Errorf("--fail-on-cycle on a DAG error: %v", err)
	}
}

func TestCheckJSON(t *testing.T) {
	c := testCLI(t)
	out, err := execute(t, c, "", "check", writePipeline(t, cyclicPipeline), "--json", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}

	var v pipeline.Verdict
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("output is not a verdict: %v\n%s", err, out)
	}
	if v.NumNodes != 3 || v.NumEdges != 4 || v.IsDAG {
		t.Errorf("verdict = %+v", v.Summary())
	}
	if len(v.Cycle) != 2 || len(v.SkippedEdges) != 1 {
		t.Errorf("diagnostics = cycle %v, skipped %+v", v.Cycle, v.SkippedEdges)
	}
}

func TestCheckStdin(t *testing.T) {
	out, err := execute(t, testCLI(t), dagPipeline, "check", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "stdin is a DAG") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckDOT(t *testing.T) {
	dotPath := filepath.Join(t.TempDir(), "flow.dot")
	out, err := execute(t, testCLI(t), "", "check", writePipeline(t, cyclicPipeline), "--dot", dotPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, dotPath) {
		t.Errorf("output should list the written file:\n%s", out)
	}

	data, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(data)
	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("not a DOT file:\n%s", dot)
	}
	if strings.Contains(dot, "deploy") {
		t.Errorf("dangling edge should be omitted:\n%s", dot)
	}
}

func TestCheckErrors(t *testing.T) {
	c := testCLI(t)

	if _, err := execute(t, c, "", "check", filepath.Join(t.TempDir(), "absent.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want ErrNotExist", err)
	}

	_, err := execute(t, c, "", "check", writePipeline(t, `{"nodes": [`))
	if !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("malformed file error = %v, want INVALID_INPUT", err)
	}

	_, err = execute(t, c, "", "check", writePipeline(t, `{"nodes": []}`))
	if !perrors.Is(err, perrors.ErrCodeInvalidPipeline) {
		t.Errorf("schema error = %v, want INVALID_PIPELINE", err)
	}

	if _, err := execute(t, c, ""); err != nil {
		t.Errorf("bare root command error: %v", err)
	}
	if _, err := execute(t, c, "", "check"); err == nil {
		t.Error("check without a file should fail")
	}
}

func TestCheckLimitsFromConfig(t *testing.T) {
	c := testCLI(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[limits]\nmax_nodes = 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, c, "", "--config", cfgPath, "check", writePipeline(t, dagPipeline), "--no-cache")
	if !perrors.Is(err, perrors.ErrCodeResourceExhausted) {
		t.Errorf("error = %v, want RESOURCE_EXHAUSTED", err)
	}
}

func TestCheckInvalidConfig(t *testing.T) {
	c := testCLI(t)
	bad := []byte("[limits]\nmax_nodes = -1\n")

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, bad, 0644); err != nil {
		t.Fatal(err)
	}
	path := writePipeline(t, dagPipeline)

	for _, cmd := range []string{"check", "serve"} {
		args := []string{"--config", cfgPath, cmd}
		if cmd == "check" {
			args = append(args, path)
		}
		if _, err := execute(t, c, "", args...); !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
			t.Errorf("%s with negative max_nodes: error = %v, want INVALID_CONFIG", cmd, err)
		}
	}

	// The default config file is validated the same way.
	def := config.DefaultPath()
	if err := os.MkdirAll(filepath.Dir(def), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(def, bad, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, c, "", "check", path); !perrors.Is(err, perrors.ErrCodeInvalidConfig) {
		t.Errorf("check with invalid default config: error = %v, want INVALID_CONFIG", err)
	}
}
