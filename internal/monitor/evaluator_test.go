package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/feedwatch/feedwatch/internal/config"
	"github.com/feedwatch/feedwatch/internal/registry"
)

// baseTime is a fixed reference point so all test timings are deterministic.
var baseTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// fakeSource serves canned last-update timestamps per source key.
type fakeSource struct {
	last    map[string]time.Time
	missing map[string]bool
	errs    map[string]error

	// onQuery, when set, is called before each lookup. Loop tests use it
	// to observe cycle starts and to advance the fake clock.
	onQuery func(key string)
	queries int
}

func (f *fakeSource) LastUpdate(ctx context.Context, key string) (time.Time, bool, error) {
	f.queries++
	if f.onQuery != nil {
		f.onQuery(key)
	}
	if err := f.errs[key]; err != nil {
		return time.Time{}, false, err
	}
	if f.missing[key] {
		return time.Time{}, false, nil
	}
	ts, ok := f.last[key]
	if !ok {
		return time.Time{}, false, nil
	}
	return ts, true, nil
}

// makeRegistry builds a registry from label:key pairs, failing the test on error.
func makeRegistry(t *testing.T, instruments ...config.Instrument) *registry.Registry {
	t.Helper()
	reg, err := registry.New(instruments)
	if err != nil {
		t.Fatalf("registry.New() unexpected error: %v", err)
	}
	return reg
}

func TestEvaluate_StalenessThreshold(t *testing.T) {
	const threshold = 10 * time.Minute

	tests := []struct {
		name      string
		age       time.Duration
		wantStale bool
	}{
		{"fresh", time.Minute, false},
		{"just inside", threshold - time.Second, false},
		{"exactly at threshold", threshold, false}, // stale strictly beyond
		{"just beyond", threshold + time.Second, true},
		{"far beyond", 15 * time.Minute, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := makeRegistry(t, config.Instrument{Label: "BTCUSDT", SourceKey: "btc"})
			src := &fakeSource{last: map[string]time.Time{"btc": baseTime.Add(-tc.age)}}
			ev := NewEvaluator(reg, src, threshold, time.Second)

			res := ev.Evaluate(context.Background(), reg.All()[0], baseTime)
			if res.Stale != tc.wantStale {
				t.Errorf("age %v: Stale = %v, want %v", tc.age, res.Stale, tc.wantStale)
			}
			if !res.Known {
				t.Error("Known = false, want true")
			}
			if res.Err != nil {
				t.Errorf("Err = %v, want nil", res.Err)
			}
		})
	}
}

func TestEvaluate_NeverObserved(t *testing.T) {
	reg := makeRegistry(t, config.Instrument{Label: "BTCUSDT", SourceKey: "btc"})
	src := &fakeSource{missing: map[string]bool{"btc": true}}
	ev := NewEvaluator(reg, src, 10*time.Minute, time.Second)

	res := ev.Evaluate(context.Background(), reg.All()[0], baseTime)
	if !res.Stale {
		t.Error("never-observed feed must be stale")
	}
	if res.Known {
		t.Error("Known = true, want false")
	}
}

func TestEvaluate_QueryError_FailSafe(t *testing.T) {
	reg := makeRegistry(t, config.Instrument{Label: "BTCUSDT", SourceKey: "btc"})
	src := &fakeSource{errs: map[string]error{"btc": errors.New("connection refused")}}
	ev := NewEvaluator(reg, src, 10*time.Minute, time.Second)

	res := ev.Evaluate(context.Background(), reg.All()[0], baseTime)
	if !res.Stale {
		t.Error("errored check must count as stale")
	}
	if res.Err == nil {
		t.Error("Err should carry the query failure")
	}
}

func TestEvaluate_NormalizesTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	reg := makeRegistry(t, config.Instrument{Label: "BTCUSDT", SourceKey: "btc"})
	// One minute old in absolute terms, reported in a +03:00 zone. Naive
	// comparison against local wall clock would call this 3h old.
	src := &fakeSource{last: map[string]time.Time{"btc": baseTime.Add(-time.Minute).In(loc)}}
	ev := NewEvaluator(reg, src, 10*time.Minute, time.Second)

	res := ev.Evaluate(context.Background(), reg.All()[0], baseTime)
	if res.Stale {
		t.Error("fresh feed reported in another timezone must not be stale")
	}
	if res.LastUpdate.Location() != time.UTC {
		t.Errorf("LastUpdate location = %v, want UTC", res.LastUpdate.Location())
	}
}

func TestEvaluateAll_RegistryOrderAndContainment(t *testing.T) {
	reg := makeRegistry(t,
		config.Instrument{Label: "A", SourceKey: "a"},
		config.Instrument{Label: "B", SourceKey: "b"},
		config.Instrument{Label: "C", SourceKey: "c"},
	)
	src := &fakeSource{
		last: map[string]time.Time{"a": baseTime.Add(-time.Minute), "c": baseTime.Add(-time.Minute)},
		errs: map[string]error{"b": errors.New("boom")},
	}
	ev := NewEvaluator(reg, src, 10*time.Minute, time.Second)

	results := ev.EvaluateAll(context.Background(), baseTime)
	if len(results) != 3 {
		t.Fatalf("results len = %d, want 3", len(results))
	}
	for i, want := range []string{"A", "B", "C"} {
		if results[i].Instrument.Label != want {
			t.Errorf("results[%d].Label = %q, want %q", i, results[i].Instrument.Label, want)
		}
	}
	// The error on B is contained: A and C still evaluated.
	if results[0].Stale || results[2].Stale {
		t.Error("healthy instruments marked stale")
	}
	if !results[1].Stale || results[1].Err == nil {
		t.Error("errored instrument should be stale with Err set")
	}
}
