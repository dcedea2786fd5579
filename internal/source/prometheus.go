package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/feedwatch/feedwatch/internal/config"
)

// promSource reads last-update times from a Prometheus metrics endpoint.
// The source key names a gauge whose value is the feed's last update as
// unix seconds (the usual *_last_update_timestamp_seconds convention).
type promSource struct {
	cfg    config.BackendConfig
	client *http.Client
}

// LastUpdate scrapes the endpoint and returns the newest timestamp reported
// under the metric named by sourceKey. A missing family or a zero value
// means the feed has never been observed.
func (s *promSource) LastUpdate(ctx context.Context, sourceKey string) (time.Time, bool, error) {
	mfs, err := fetchMetrics(ctx, s.client, s.cfg.Addr)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("prometheus: scrape %q: %w", s.cfg.Addr, err)
	}

	mf, present := mfs[sourceKey]
	if !present {
		return time.Time{}, false, nil
	}

	sec := maxValue(mf)
	if sec <= 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(int64(sec), 0).UTC(), true, nil
}

// maxValue returns the largest gauge, counter, or untyped value in mf.
// With one series per feed this is the value itself; with labelled series
// (one per shard) the newest update wins.
func maxValue(mf *dto.MetricFamily) float64 {
	var newest float64
	for _, m := range mf.GetMetric() {
		var v float64
		switch {
		case m.Gauge != nil:
			v = m.Gauge.GetValue()
		case m.Counter != nil:
			v = m.Counter.GetValue()
		case m.Untyped != nil:
			v = m.Untyped.GetValue()
		}
		if v > newest {
			newest = v
		}
	}
	return newest
}
