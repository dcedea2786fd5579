package registry

import (
	"fmt"

	"github.com/feedwatch/feedwatch/internal/config"
)

// Instrument is one watched data feed.
type Instrument struct {
	// Label is the unique display name used in alerts and logs.
	Label string

	// SourceKey is the opaque lookup key handed to the data-source backend.
	SourceKey string
}

// Registry is the immutable set of watched instruments. It is built once at
// startup; iteration order is the order instruments appear in the config
// file, and every cycle report preserves it.
type Registry struct {
	instruments []Instrument
}

// New builds a Registry from the configured instrument list.
// It fails on a duplicate label or an empty label or source key — those are
// config mistakes that would make alerts ambiguous or queries impossible.
func New(instruments []config.Instrument) (*Registry, error) {
	seen := make(map[string]struct{}, len(instruments))
	out := make([]Instrument, 0, len(instruments))

	for i, inst := range instruments {
		if inst.Label == "" {
			return nil, fmt.Errorf("registry: instruments[%d]: empty label", i)
		}
		if inst.SourceKey == "" {
			return nil, fmt.Errorf("registry: instruments[%d] %q: empty source_key", i, inst.Label)
		}
		if _, dup := seen[inst.Label]; dup {
			return nil, fmt.Errorf("registry: duplicate label %q", inst.Label)
		}
		seen[inst.Label] = struct{}{}
		out = append(out, Instrument{Label: inst.Label, SourceKey: inst.SourceKey})
	}

	return &Registry{instruments: out}, nil
}

// All returns the instruments in registry order. The returned slice is a
// copy; callers cannot mutate the registry through it.
func (r *Registry) All() []Instrument {
	out := make([]Instrument, len(r.instruments))
	copy(out, r.instruments)
	return out
}

// Len returns the number of registered instruments.
func (r *Registry) Len() int {
	return len(r.instruments)
}
