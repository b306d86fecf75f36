// Package modes holds the transport mode registry: the canonical mode order,
// display colours and synthetic modes built from other modes.
package modes

import "slices"

// Colors is the colour pair a choropleth ramp is built from.
type Colors struct {
	Zero    string `json:"zero" koanf:"zero"`
	Primary string `json:"primary" koanf:"primary"`
}

// Mode describes one transport mode.
type Mode struct {
	Identifier string `json:"identifier" koanf:"identifier"`
	Name       string `json:"name" koanf:"name"`
	Colors     Colors `json:"colors" koanf:"colors"`
	// Components lists the modes a synthetic mode sums up
	// (e.g. walk_and_bicycle = walk + bicycle). Empty for real modes.
	Components []string `json:"components,omitempty" koanf:"components"`
}

// Synthetic reports whether the mode is derived from other modes.
func (m Mode) Synthetic() bool { return len(m.Components) > 0 }

// Registry is an immutable, ordered set of modes.
type Registry struct {
	modes []Mode
	byID  map[string]int
}

// NewRegistry builds a registry keeping the given order. Later duplicates
// of an identifier are ignored.
func NewRegistry(modes []Mode) *Registry {
	r := &Registry{byID: make(map[string]int, len(modes))}
	for _, m := range modes {
		if m.Identifier == "" {
			continue
		}
		if _, dup := r.byID[m.Identifier]; dup {
			continue
		}
		r.byID[m.Identifier] = len(r.modes)
		r.modes = append(r.modes, m)
	}
	return r
}

// Has reports whether id is a registered mode.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// Get returns the mode with the given identifier.
func (r *Registry) Get(id string) (Mode, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Mode{}, false
	}
	return r.modes[i], true
}

// All returns every mode in registry order.
func (r *Registry) All() []Mode { return slices.Clone(r.modes) }

// Identifiers returns every mode identifier in registry order.
func (r *Registry) Identifiers() []string {
	ids := make([]string, len(r.modes))
	for i, m := range r.modes {
		ids[i] = m.Identifier
	}
	return ids
}

// Real returns the identifiers of the non-synthetic modes.
func (r *Registry) Real() []string {
	var ids []string
	for _, m := range r.modes {
		if !m.Synthetic() {
			ids = append(ids, m.Identifier)
		}
	}
	return ids
}

// Synthetic returns the synthetic modes in registry order.
func (r *Registry) Synthetic() []Mode {
	var out []Mode
	for _, m := range r.modes {
		if m.Synthetic() {
			out = append(out, m)
		}
	}
	return out
}

// Ordered returns the real mode identifiers with first moved to the front;
// the rest keep registry order. Breakdowns iterate modes in this order.
func (r *Registry) Ordered(first string) []string {
	ids := r.Real()
	i := slices.Index(ids, first)
	if i <= 0 {
		return ids
	}
	out := make([]string, 0, len(ids))
	out = append(out, first)
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}

// Defaults is the mode set used when no registry is configured.
func Defaults() []Mode {
	return []Mode{
		{Identifier: "car", Name: "Car", Colors: Colors{Zero: "#fde0dd", Primary: "#c51b8a"}},
		{Identifier: "bicycle", Name: "Bicycle", Colors: Colors{Zero: "#e5f5e0", Primary: "#31a354"}},
		{Identifier: "walk", Name: "Walking", Colors: Colors{Zero: "#fff7bc", Primary: "#d95f0e"}},
		{Identifier: "bus", Name: "Bus", Colors: Colors{Zero: "#deebf7", Primary: "#3182bd"}},
		{Identifier: "tram", Name: "Tram", Colors: Colors{Zero: "#efedf5", Primary: "#756bb1"}},
		{Identifier: "train", Name: "Train", Colors: Colors{Zero: "#f0f0f0", Primary: "#636363"}},
		{Identifier: "other", Name: "Other", Colors: Colors{Zero: "#f7f7f7", Primary: "#969696"}},
		{Identifier: "walk_and_bicycle", Name: "Walking and cycling",
			Colors: Colors{Zero: "#f7fcb9", Primary: "#41ab5d"}, Components: []string{"walk", "bicycle"}},
		{Identifier: "public_transportation", Name: "Public transport",
			Colors: Colors{Zero: "#ece7f2", Primary: "#2b8cbe"}, Components: []string{"bus", "tram", "train"}},
	}
}
