package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/redwire/pkg/cache"
	"github.com/matzehuels/redwire/pkg/errors"
	"github.com/matzehuels/redwire/pkg/observability"
	"github.com/matzehuels/redwire/pkg/redstone"
	"github.com/matzehuels/redwire/pkg/render/timeline"
	"github.com/matzehuels/redwire/pkg/report"
	"github.com/matzehuels/redwire/pkg/sched"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the cache lifetime of reports and timelines when
	// positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Run validates texts, simulates them and returns the report, consulting the
// cache first unless opts disables it. Input outside opts.Limits returns an
// INVALID_INPUT error. A malformed run is not an error; inspect
// Result.Report.State.
func (r *Runner) Run(ctx context.Context, texts []string, opts Options) (*Result, error) {
	if err := errors.ValidateLines(texts, opts.Limits); err != nil {
		return nil, err
	}

	result := &Result{}

	parseStart := time.Now()
	result.Lines = redstone.ParseAll(texts)
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Lines = len(result.Lines)

	hash := cache.HashLines(texts)
	key := r.Keyer.ReportKey(hash)
	useCache := !opts.NoCache
	lookup := useCache && !opts.Refresh && opts.Observer == nil

	if lookup {
		if rep, ok := r.cachedReport(ctx, key); ok {
			result.Report = rep
			result.CacheHit = true
			result.Stats.Ticks = rep.Ticks
			result.Stats.Warnings = len(rep.Warnings)
			r.Logger.Debug("report cache hit", "hash", shortHash(hash), "state", rep.State)
			return result, nil
		}
	}

	simStart := time.Now()
	res, err := r.simulate(ctx, result.Lines, opts)
	if err != nil {
		return nil, err
	}
	result.Sim = res
	result.Stats.SimulateTime = time.Since(simStart)
	result.Stats.Ticks = res.Ticks
	result.Stats.Warnings = len(res.Warnings)

	rep := report.New(result.Lines, res)
	rep.InputHash = hash
	result.Report = rep

	r.Logger.Debug("simulated lines",
		"lines", len(result.Lines),
		"state", res.State,
		"final_tick", res.FinalTick,
		"ticks", res.Ticks,
		"duration", result.Stats.SimulateTime)
	for _, w := range res.Warnings {
		r.Logger.Debug("dropped update", "line", w.Line.Name(), "tick", w.Tick, "remaining", w.Remaining)
	}

	if useCache {
		r.storeReport(ctx, key, rep)
	}
	return result, nil
}

// Simulate is a convenience wrapper that runs the pipeline without caching
// and returns only the report.
func (r *Runner) Simulate(ctx context.Context, texts []string) (*report.Report, error) {
	res, err := r.Run(ctx, texts, Options{NoCache: true})
	if err != nil {
		return nil, err
	}
	return res.Report, nil
}

// Timeline renders the timeline of texts in opts.Format. The rendered bytes
// are cached separately from the report; the returned bool reports a
// timeline cache hit.
func (r *Runner) Timeline(ctx context.Context, texts []string, opts TimelineOptions) ([]byte, bool, error) {
	if err := errors.ValidateFormat(opts.Format, timeline.Formats); err != nil {
		return nil, false, err
	}
	if err := errors.ValidateLines(texts, opts.Limits); err != nil {
		return nil, false, err
	}

	key := r.Keyer.TimelineKey(cache.HashLines(texts), cache.TimelineKeyOpts{
		Format:   opts.Format,
		Detailed: opts.Detailed,
	})
	useCache := !opts.NoCache
	if useCache && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "timeline")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "timeline")
	}

	res, err := r.Run(ctx, texts, opts.Options)
	if err != nil {
		return nil, false, err
	}
	data, err := timeline.Render(ctx, res.Report, opts.Format, timeline.Options{Detailed: opts.Detailed})
	if err != nil {
		return nil, false, fmt.Errorf("render timeline: %w", err)
	}

	if useCache {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLTimeline)); err != nil {
			r.Logger.Debug("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "timeline", len(data))
		}
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) simulate(ctx context.Context, lines []redstone.Line, opts Options) (*sched.Result, error) {
	hooks := observability.Simulation()
	hooks.OnRunStart(ctx, len(lines))
	start := time.Now()

	var schedOpts []sched.Option
	if opts.Observer != nil {
		schedOpts = append(schedOpts, sched.WithObserver(opts.Observer))
	}
	res, err := sched.Simulate(ctx, lines, schedOpts...)
	if err != nil {
		hooks.OnRunComplete(ctx, "", 0, time.Since(start), err)
		return nil, fmt.Errorf("simulate: %w", err)
	}

	for _, w := range res.Warnings {
		hooks.OnWarning(ctx, w.Line.Name())
	}
	hooks.OnRunComplete(ctx, res.State.String(), res.Ticks, time.Since(start), nil)
	return res, nil
}

// cachedReport loads a report from the cache. Undecodable entries are
// treated as misses and recomputed.
func (r *Runner) cachedReport(ctx context.Context, key string) (*report.Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	rep, err := report.Unmarshal(data)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "report")
	return rep, true
}

// storeReport writes a report to the cache. Failures are logged and
// otherwise ignored.
func (r *Runner) storeReport(ctx context.Context, key string, rep *report.Report) {
	data, err := report.Marshal(rep)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLReport)); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "report", len(data))
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
