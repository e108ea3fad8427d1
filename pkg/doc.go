// Package pkg provides the core libraries for redwire, a redstone signal
// timing calculator.
//
// # Overview
//
// Redwire takes a set of redstone lines, each a sequence of repeaters (R0-R3)
// and comparators (C), fires a signal into all of them at tick 0 and reports
// the order in which the signals arrive. The pkg directory is organized into
// three areas:
//
//  1. Domain logic: [redstone] parses lines, [sched] runs the tick simulation
//  2. Outputs: [report] encodes results, [render/timeline] draws them
//  3. Infrastructure: [cache], [store], [config], [errors], [observability]
//
// [pipeline] ties these together for both the CLI and the HTTP API.
//
// # Architecture
//
// The data flow through redwire:
//
//	input lines ("R1C", "CR1", ...)
//	         ↓
//	    [redstone] (tokenize once, name lines A, B, C, ...)
//	         ↓
//	    [sched] (tick map loop until empty, classify the outcome)
//	         ↓
//	    [report] (serializable snapshot: order, warnings, residual dump)
//	         ↓
//	    text / JSON / YAML, or a DOT/SVG timeline
//
// # Quick Start
//
//	lines := redstone.ParseAll([]string{"R1C", "CR1"})
//	res, err := sched.Simulate(ctx, lines)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.OrderString()) // B,A
//
// Or, with caching and hooks:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	rep, err := runner.Simulate(ctx, []string{"R1C", "CR1"})
//
// # Main Packages
//
//   - [redstone]: elements, lines, tails and bijective base-26 line names
//   - [sched]: the tick map and the scheduler
//   - [report]: reports and their text, JSON and YAML encodings
//   - [render/timeline]: DOT and SVG timelines of a run
//   - [pipeline]: validation, caching and simulation in one call
//   - [cache]: file, Redis and null caches for reports and timelines
//   - [store]: run history in MongoDB or memory
//   - [config]: TOML configuration with environment overrides
//   - [errors]: coded errors and input validation
//   - [observability]: hooks for metrics backends
//   - [buildinfo]: version information injected at build time
//
// [redstone]: github.com/matzehuels/redwire/pkg/redstone
// [sched]: github.com/matzehuels/redwire/pkg/sched
// [report]: github.com/matzehuels/redwire/pkg/report
// [render/timeline]: github.com/matzehuels/redwire/pkg/render/timeline
// [pipeline]: github.com/matzehuels/redwire/pkg/pipeline
// [cache]: github.com/matzehuels/redwire/pkg/cache
// [store]: github.com/matzehuels/redwire/pkg/store
// [config]: github.com/matzehuels/redwire/pkg/config
// [errors]: github.com/matzehuels/redwire/pkg/errors
// [observability]: github.com/matzehuels/redwire/pkg/observability
// [buildinfo]: github.com/matzehuels/redwire/pkg/buildinfo
package pkg
