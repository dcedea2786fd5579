package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/feedwatch/feedwatch/internal/notify"
	"github.com/feedwatch/feedwatch/internal/remedy"
)

// Notifier is the alert channel as the monitor sees it. Identity is used
// once at startup; Send delivers pre-escaped MarkdownV2 text.
type Notifier interface {
	Identity(ctx context.Context) (notify.Identity, error)
	Send(ctx context.Context, text string) error
}

// Monitor drives the cycle loop: evaluate every instrument, alert and
// remediate when any is stale, sleep until the next interval boundary.
//
// Cycles run strictly sequentially; cancellation is honored only between
// cycles, so a cycle's alert and remediation always complete once started.
type Monitor struct {
	eval     *Evaluator
	notifier Notifier
	runner   remedy.Runner
	interval time.Duration

	// now and sleep are injectable so tests control time without waiting.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Monitor with the real clock.
func New(eval *Evaluator, notifier Notifier, runner remedy.Runner, interval time.Duration) *Monitor {
	return &Monitor{
		eval:     eval,
		notifier: notifier,
		runner:   runner,
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Run executes the monitor until ctx is cancelled.
//
// Startup verifies the channel by fetching the bot identity and sending a
// confirmation message; either failing is fatal and returns an error — the
// process must not run blind. After startup the loop never returns an
// error: per-instrument and per-cycle failures are contained and logged,
// and a cancelled ctx yields a clean nil return at the sleep boundary.
func (m *Monitor) Run(ctx context.Context) error {
	id, err := m.notifier.Identity(ctx)
	if err != nil {
		return fmt.Errorf("monitor: startup: get channel identity: %w", err)
	}

	confirmation := fmt.Sprintf("Bot %s initialized successfully", notify.EscapeMarkdown(id.Username))
	if err := m.notifier.Send(ctx, confirmation); err != nil {
		return fmt.Errorf("monitor: startup: send confirmation: %w", err)
	}

	slog.Info("monitor: running",
		"bot", id.Username,
		"interval", m.interval,
		"instruments", m.eval.reg.Len())

	// intended is the start the current cycle was scheduled for. Deadlines
	// anchor to it rather than to wall clock after sleep, so per-cycle work
	// time does not accumulate as skew.
	intended := m.now()
	for {
		t0 := intended
		if now := m.now(); now.After(t0) {
			t0 = now
		}

		m.runCycle(ctx, t0)

		deadline := intended.Add(m.interval)
		wait := deadline.Sub(m.now())
		if wait > 0 {
			slog.Info("monitor: sleeping until next cycle", "wait", wait)
			if err := m.sleep(ctx, wait); err != nil {
				slog.Info("monitor: stopped")
				return nil
			}
			intended = deadline
			continue
		}

		// The cycle overran the interval. Start the next one immediately,
		// re-anchored to now — skipped boundaries are not caught up.
		if wait < 0 {
			slog.Warn("monitor: cycle overran interval", "overrun", -wait)
		}
		select {
		case <-ctx.Done():
			slog.Info("monitor: stopped")
			return nil
		default:
		}
		intended = m.now()
	}
}

// runCycle evaluates all instruments once and fires the alert/remediation
// pair when any are stale. All failures inside a cycle are logged, never
// returned — the next cycle must always be scheduled.
func (m *Monitor) runCycle(ctx context.Context, t0 time.Time) {
	results := m.eval.EvaluateAll(ctx, t0)

	rep := BuildReport(results, t0)
	if rep == nil {
		slog.Info("monitor: cycle clean", "instruments", len(results))
		return
	}

	labels := make([]string, 0, len(rep.Failing))
	for _, inst := range rep.Failing {
		labels = append(labels, inst.Label)
	}
	slog.Warn("monitor: stale instruments detected",
		"count", len(rep.Failing), "labels", labels)

	if err := m.notifier.Send(ctx, FormatMessage(rep)); err != nil {
		slog.Error("monitor: alert delivery failed", "err", err)
	} else {
		slog.Info("monitor: alert sent", "count", len(rep.Failing))
	}

	if err := m.runner.Remediate(ctx); err != nil {
		slog.Error("monitor: remediation failed", "err", err)
	} else {
		slog.Info("monitor: remediation succeeded")
	}
}

// sleepCtx blocks for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
