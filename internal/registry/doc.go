// Package registry holds the immutable instrument set the monitor watches.
// It is constructed once from config at startup and read-only afterwards,
// so the monitor loop needs no locking around it. Registry order is the
// config file order and defines the ordering of every cycle report.
package registry
