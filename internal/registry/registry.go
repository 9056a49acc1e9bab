// Package registry holds the static school registry: each experimental group
// (school) with its target EC concentration and display color. The registry is
// built once at startup and passed explicitly to the loaders and services.
package registry

// School is one experimental group.
type School struct {
	Name   string  `json:"name"`
	ECGoal float64 `json:"ec_goal"`
	Color  string  `json:"color"`
}

// Registry is an immutable school lookup table. Declaration order is preserved
// and happens to be ascending by EC target, but consumers that need a fixed EC
// ordering must sort explicitly.
type Registry struct {
	schools []School
	byName  map[string]School
}

// AllSchools is the selector value meaning "no school filter".
const AllSchools = "전체"

// Default returns the registry for the four participating schools.
func Default() *Registry {
	return New([]School{
		{Name: "송도고", ECGoal: 1.0, Color: "#1f77b4"},
		{Name: "하늘고", ECGoal: 2.0, Color: "#2ca02c"},
		{Name: "아라고", ECGoal: 4.0, Color: "#ff7f0e"},
		{Name: "동산고", ECGoal: 8.0, Color: "#d62728"},
	})
}

// New builds a registry from the given schools, preserving order.
func New(schools []School) *Registry {
	r := &Registry{
		schools: make([]School, len(schools)),
		byName:  make(map[string]School, len(schools)),
	}
	copy(r.schools, schools)
	for _, s := range schools {
		r.byName[s.Name] = s
	}
	return r
}

// Lookup returns the school with the given name.
func (r *Registry) Lookup(name string) (School, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Schools returns the schools in declaration order. The slice is a copy.
func (r *Registry) Schools() []School {
	out := make([]School, len(r.schools))
	copy(out, r.schools)
	return out
}

// Names returns the school names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.schools))
	for i, s := range r.schools {
		names[i] = s.Name
	}
	return names
}

// SchoolByECGoal reverse-looks-up the school owning a target EC value. The
// first match in declaration order wins; if two schools ever shared a target
// the result would be ambiguous. The current registry has no duplicates.
func (r *Registry) SchoolByECGoal(goal float64) (School, bool) {
	for _, s := range r.schools {
		if s.ECGoal == goal {
			return s, true
		}
	}
	return School{}, false
}

// Len returns the number of registered schools.
func (r *Registry) Len() int {
	return len(r.schools)
}
