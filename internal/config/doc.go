// Package config loads and watches the feedwatch configuration file
// (config.yaml).
//
// Top-level types:
//   - Config{Monitor} — full config tree parsed from YAML
//   - MonitorConfig — interval, staleness_threshold, query_timeout,
//     instruments [], backend, telegram, remediation
//   - Instrument — label + source_key, consumed by the registry
//   - BackendConfig — type (clickhouse|prometheus), addr, credentials;
//     Password() resolves the database password from the environment
//   - TelegramConfig — token_env + chat_id; Token() resolves from the
//     environment so the secret never sits in the file
//   - RemediationConfig — command, args, timeout
//
// Load(path) reads the YAML file, applies defaults (10m interval, 10m
// staleness threshold, 15s query timeout, 1m remediation timeout), then
// validates required fields and enums.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create
// pattern used by atomic-save editors by re-adding the watch after the
// event. The daemon currently only logs on change; instrument or backend
// edits take effect on restart.
package config
