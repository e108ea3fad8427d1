// Package pipeline provides the simulation pipeline for redwire.
//
// This package implements the complete validate → parse → simulate → report
// flow used by the CLI and the HTTP API. By centralizing this logic, both
// entry points apply the same input limits, the same caching and the same
// observability hooks.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Validate: enforce the caller's input limits (line count, line length)
//  2. Parse: tokenize every non-blank line and assign identifiers
//  3. Simulate: run the tick scheduler to completion
//  4. Report: build a [report.Report] and store it in the cache
//
// Simulations are deterministic, so reports are cached by the hash of the
// input lines and reused until they expire.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Run(ctx, texts, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	report.WriteText(os.Stdout, os.Stderr, result.Report)
//
// Render a timeline:
//
//	svg, hit, err := runner.Timeline(ctx, texts, pipeline.TimelineOptions{Format: "svg"})
package pipeline

import (
	"time"

	"github.com/matzehuels/redwire/pkg/errors"
	"github.com/matzehuels/redwire/pkg/redstone"
	"github.com/matzehuels/redwire/pkg/report"
	"github.com/matzehuels/redwire/pkg/sched"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the configuration of one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Limits bounds the accepted input. The zero value accepts any input,
	// including none.
	Limits errors.LineLimits `json:"-"`

	// Refresh bypasses the cache lookup but still stores the fresh report.
	Refresh bool `json:"refresh,omitempty"`

	// NoCache disables both lookup and store.
	NoCache bool `json:"no_cache,omitempty"`

	// Observer, when set, receives every simulated tick. A cached report
	// has no ticks to replay, so setting Observer implies Refresh.
	Observer sched.Observer `json:"-"`
}

// TimelineOptions configures [Runner.Timeline].
type TimelineOptions struct {
	Options

	// Format is "dot" or "svg".
	Format string `json:"format"`

	// Detailed adds tick advancements to edge labels.
	Detailed bool `json:"detailed,omitempty"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Report is the serializable outcome.
	Report *report.Report

	// Lines are the parsed input lines.
	Lines []redstone.Line

	// Sim is the raw scheduler result. It is nil when the report came from
	// the cache.
	Sim *sched.Result

	// CacheHit reports whether the report was served from the cache.
	CacheHit bool

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Lines        int
	Ticks        int
	Warnings     int
	ParseTime    time.Duration
	SimulateTime time.Duration
}
