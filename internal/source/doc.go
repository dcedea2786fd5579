// Package source provides the time-series backends the monitor queries for
// per-instrument last-update timestamps.
//
// Implemented backends: ClickHouse over the native protocol (clickhouse.go,
// `SELECT max(col) FROM table`) and a Prometheus metrics endpoint
// (prometheus.go, gauge value as unix seconds). Factory: New(BackendConfig)
// returns the correct Source.
//
// HTTP authentication (mTLS, API key, bearer token, basic) for the
// prometheus backend is handled by the shared authRoundTripper in base.go;
// the backend receives a pre-configured *http.Client from New().
//
// Both backends report "never observed" (ok=false) rather than an error for
// empty tables or absent metrics — zero-row results are an expected state,
// not a failure.
package source
