package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipelinecheck/pkg/audit"
	"github.com/matzehuels/pipelinecheck/pkg/cache"
	"github.com/matzehuels/pipelinecheck/pkg/dag"
	perrors "github.com/matzehuels/pipelinecheck/pkg/errors"
	"github.com/matzehuels/pipelinecheck/pkg/observability"
)

// Runner checks pipelines with caching, logging and auditing.
// Both CLI and server use it so they behave identically.
//
// The Runner holds no per-check state. Multiple goroutines can safely use the
// same Runner as long as its fields are not modified concurrently.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Recorder audit.Recorder
	Logger   *log.Logger

	// Limits bounds accepted graph sizes. Zero means unlimited.
	Limits dag.Limits

	// TTL is the lifetime of cached verdicts. Zero means cache.TTLVerdict.
	TTL time.Duration
}

// NewRunner creates a runner.
// A nil cache disables caching, a nil keyer uses cache.DefaultKeyer, a nil
// recorder disables auditing, and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, rec audit.Recorder, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if rec == nil {
		rec = audit.NullRecorder{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Recorder: rec,
		Logger:   logger,
	}
}

// Result is the outcome of [Runner.Check].
type Result struct {
	Verdict  Verdict
	Cached   bool          // Verdict served from cache
	Duration time.Duration // Wall time of the check including cache access
	RecordID string        // ID of the audit record
}

// Check runs the cycle check on p.
//
// Edges with unknown endpoints are logged as warnings and listed in the
// verdict. The only check failure is a graph above r.Limits, reported as a
// RESOURCE_EXHAUSTED error. Cache and audit failures are logged and do not
// fail the check.
func (r *Runner) Check(ctx context.Context, p *Pipeline) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Check()
	hooks.OnCheckStart(ctx, len(p.Nodes), len(p.Edges))

	key := r.Keyer.VerdictKey(p.StructureHash(), cache.VerdictKeyOpts{
		MaxNodes: r.Limits.MaxNodes,
		MaxEdges: r.Limits.MaxEdges,
	})

	verdict, cached := r.cachedVerdict(ctx, key)
	if !cached {
		var err error
		verdict, err = r.compute(p)
		if err != nil {
			hooks.OnCheckComplete(ctx, observability.CheckEvent{
				Nodes: len(p.Nodes),
				Edges: len(p.Edges),
			}, time.Since(start), err)
			return nil, err
		}
		r.storeVerdict(ctx, key, verdict)
	}

	res := &Result{
		Verdict:  verdict,
		Cached:   cached,
		Duration: time.Since(start),
	}
	r.record(ctx, res)

	r.Logger.Debug("checked pipeline",
		"nodes", verdict.NumNodes,
		"edges", verdict.NumEdges,
		"is_dag", verdict.IsDAG,
		"skipped", len(verdict.SkippedEdges),
		"cached", cached,
		"duration", res.Duration)

	hooks.OnCheckComplete(ctx, observability.CheckEvent{
		Nodes:   verdict.NumNodes,
		Edges:   verdict.NumEdges,
		Skipped: len(verdict.SkippedEdges),
		IsDAG:   verdict.IsDAG,
		Cached:  cached,
	}, res.Duration, nil)

	return res, nil
}

func (r *Runner) compute(p *Pipeline) (Verdict, error) {
	nodes, edges := p.Graph()
	res, err := dag.Check(nodes, edges, r.Limits)
	if err != nil {
		if errors.Is(err, dag.ErrGraphTooLarge) {
			return Verdict{}, perrors.Wrap(perrors.ErrCodeResourceExhausted, err, "pipeline too large to check")
		}
		return Verdict{}, perrors.Wrap(perrors.ErrCodeInternal, err, "check pipeline")
	}

	for _, s := range res.Skipped {
		r.Logger.Warn("skipping edge with unknown endpoint",
			"index", s.Index,
			"source", s.Edge.Source,
			"target", s.Edge.Target,
			"reason", s.Reason)
	}
	if !res.Acyclic {
		r.Logger.Debug("cycle detected", "cycle", res.Cycle)
	}
	return NewVerdict(p, res), nil
}

func (r *Runner) cachedVerdict(ctx context.Context, key string) (Verdict, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("verdict cache read failed", "error", err)
		return Verdict{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "verdict")
		return Verdict{}, false
	}

	var v Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		r.Logger.Warn("discarding corrupt cached verdict", "error", err)
		_ = r.Cache.Delete(ctx, key)
		return Verdict{}, false
	}
	observability.Cache().OnCacheHit(ctx, "verdict")
	return v, true
}

func (r *Runner) storeVerdict(ctx context.Context, key string, v Verdict) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Warn("encode verdict for cache", "error", err)
		return
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.TTLVerdict
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("verdict cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "verdict", len(data))
}

func (r *Runner) record(ctx context.Context, res *Result) {
	rec := audit.NewRecord(ctx)
	rec.NumNodes = res.Verdict.NumNodes
	rec.NumEdges = res.Verdict.NumEdges
	rec.IsDAG = res.Verdict.IsDAG
	rec.Skipped = len(res.Verdict.SkippedEdges)
	rec.CycleLength = len(res.Verdict.Cycle)
	rec.Cached = res.Cached
	rec.Duration = res.Duration

	if err := r.Recorder.Record(ctx, rec); err != nil {
		r.Logger.Warn("audit record failed", "error", err)
		return
	}
	res.RecordID = rec.ID
}

// Close releases the cache and recorder.
func (r *Runner) Close(ctx context.Context) error {
	return errors.Join(r.Cache.Close(), r.Recorder.Close(ctx))
}
