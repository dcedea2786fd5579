// Package monitor implements the feedwatch core: per-instrument staleness
// evaluation, cycle report aggregation and alert formatting, and the
// fixed-cadence scheduler loop.
//
// evaluator.go — Evaluate/EvaluateAll build one CheckResult per instrument
// against an explicit reference time. A feed is stale when its last update
// is older than the threshold, when it has never been observed, or when the
// query failed (fail-safe).
//
// report.go — BuildReport collects stale results in registry order;
// FormatMessage renders the single MarkdownV2 alert line.
//
// loop.go — Monitor.Run drives one cycle per interval with deadlines
// anchored to the intended start of the previous cycle, so cycle work never
// accumulates as schedule skew. Overruns start the next cycle immediately
// without catching up missed boundaries. The clock and sleep are
// injectable; tests drive the loop without real waits.
package monitor
