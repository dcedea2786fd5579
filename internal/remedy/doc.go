// Package remedy runs the external recovery command triggered by a failing
// cycle. The Runner interface keeps the monitor testable with a fake; the
// Command implementation execs the configured script with a hard timeout.
// Remediation is best-effort: one attempt per triggering cycle, failures are
// logged by the caller and never retried or escalated.
package remedy
