package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/feedwatch/feedwatch/internal/notify"
	"github.com/feedwatch/feedwatch/internal/registry"
)

// Report aggregates one cycle's stale instruments. It lives only for the
// duration of the cycle's alert and remediation actions.
type Report struct {
	Timestamp time.Time
	Failing   []registry.Instrument
}

// BuildReport collects the stale results into a Report, preserving registry
// order. Returns nil when nothing is stale — the cycle then takes no action.
func BuildReport(results []CheckResult, now time.Time) *Report {
	var failing []registry.Instrument
	for _, res := range results {
		if res.Stale {
			failing = append(failing, res.Instrument)
		}
	}
	if len(failing) == 0 {
		return nil
	}
	return &Report{Timestamp: now, Failing: failing}
}

// FormatMessage renders the single alert line for a report: a count of
// failing instruments and each label emphasized in MarkdownV2. Labels are
// raw registry values and are escaped here, exactly once.
func FormatMessage(rep *Report) string {
	labels := make([]string, 0, len(rep.Failing))
	for _, inst := range rep.Failing {
		labels = append(labels, "*"+notify.EscapeMarkdown(inst.Label)+"*")
	}
	return fmt.Sprintf("⚠️ Alert: %d instruments %s stopped updating",
		len(rep.Failing), strings.Join(labels, ", "))
}
