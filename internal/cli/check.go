package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipelinecheck/internal/config"
	"github.com/matzehuels/pipelinecheck/pkg/audit"
	"github.com/matzehuels/pipelinecheck/pkg/cache"
	"github.com/matzehuels/pipelinecheck/pkg/pipeline"
	"github.com/matzehuels/pipelinecheck/pkg/render/nodelink"
)

// ErrNotDAG is returned by check with --fail-on-cycle when the pipeline has a
// cycle.
var ErrNotDAG = errors.New("pipeline is not a DAG")

// checkOptions holds the flags of the check command.
type checkOptions struct {
	JSON        bool
	DOT         string
	SVG         string
	Detailed    bool
	FailOnCycle bool
	NoCache     bool
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check <file|->",
		Short: "Check a pipeline file for cycles",
		Long: `Check a pipeline JSON file for cycles. Use "-" to read from stdin.

The file has the same shape as the body of POST /pipelines/parse:

  {"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"source": "a", "target": "b"}]}

Verdicts are cached in the local cache directory (see "pipelinecheck cache path").`,
		Example: `  pipelinecheck check flow.json
  pipelinecheck check flow.json --json
  pipelinecheck check flow.json --svg flow.svg --fail-on-cycle
  cat flow.json | pipelinecheck check -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger, "pipeline", displayName(args[0]))
			return c.runCheck(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the verdict with diagnostics as JSON")
	cmd.Flags().StringVar(&opts.DOT, "dot", "", "write a Graphviz DOT diagram to `file`")
	cmd.Flags().StringVar(&opts.SVG, "svg", "", "write an SVG diagram to `file`")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include node types in diagram labels")
	cmd.Flags().BoolVar(&opts.FailOnCycle, "fail-on-cycle", false, "exit with an error if the pipeline has a cycle")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable the local verdict cache")

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, stdin io.Reader, out io.Writer, path string, opts checkOptions) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	p, err := readPipeline(path, stdin)
	if err != nil {
		return err
	}

	store, err := checkCache(logger, cfg, opts.NoCache)
	if err != nil {
		return err
	}
	runner := c.newRunner(logger, cfg, store, audit.NewLogRecorder(logger))
	defer runner.Close(ctx)

	prog := newCheckProgress(logger)
	res, err := runner.Check(ctx, p)
	if err != nil {
		return err
	}
	prog.done(res)

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Verdict); err != nil {
			return err
		}
	} else {
		printVerdict(out, displayName(path), res)
	}

	if opts.DOT != "" || opts.SVG != "" {
		if err := writeDiagrams(ctx, out, p, res.Verdict, opts); err != nil {
			return err
		}
	}

	if opts.FailOnCycle && !res.Verdict.IsDAG {
		return ErrNotDAG
	}
	return nil
}

// checkCache returns the local file cache, or a null cache when disabled or
// when the cache directory cannot be created.
func checkCache(logger *log.Logger, cfg config.Config, disabled bool) (cache.Cache, error) {
	if disabled {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		logger.Warn("verdict cache unavailable", "dir", cfg.Cache.Dir, "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

func readPipeline(path string, stdin io.Reader) (*pipeline.Pipeline, error) {
	if path == "-" {
		return pipeline.Decode(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := pipeline.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func displayName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}

func printVerdict(w io.Writer, name string, res *pipeline.Result) {
	v := res.Verdict
	if v.IsDAG {
		printSuccess(w, "%s is a DAG", StyleValue.Render(name))
	} else {
		printError(w, "%s has a cycle", StyleValue.Render(name))
	}
	printStats(w, v.NumNodes, v.NumEdges, res.Cached)

	if len(v.Cycle) > 0 {
		ids := make([]string, 0, len(v.Cycle)+1)
		for _, id := range v.Cycle {
			ids = append(ids, StyleCycle.Render(id.String()))
		}
		ids = append(ids, StyleCycle.Render(v.Cycle[0].String()))
		printDetail(w, "cycle:")
		fmt.Fprintln(w, "    "+strings.Join(ids, StyleDim.Render(" "+iconArrow+" ")))
	}

	for _, s := range v.SkippedEdges {
		printWarning(w, "skipped edge %d (%s %s %s): %s",
			s.Index, s.Source, iconArrow, s.Target, strings.ReplaceAll(s.Reason, "_", " "))
	}
}

func writeDiagrams(ctx context.Context, out io.Writer, p *pipeline.Pipeline, v pipeline.Verdict, opts checkOptions) error {
	dot := nodelink.ToDOT(p, v, nodelink.Options{Detailed: opts.Detailed})

	if opts.DOT != "" {
		if err := os.WriteFile(opts.DOT, []byte(dot), 0644); err != nil {
			return fmt.Errorf("write DOT: %w", err)
		}
		printFile(out, opts.DOT)
	}

	if opts.SVG != "" {
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.SVG, svg, 0644); err != nil {
			return fmt.Errorf("write SVG: %w", err)
		}
		printFile(out, opts.SVG)
	}
	return nil
}
