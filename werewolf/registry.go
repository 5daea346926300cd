package werewolf

import (
	"github.com/masoi-online/server/consts"
)

// Constructor builds a fresh role instance for one assignment.
type Constructor func() Role

// Registry is the name-keyed role class table. It is built once at startup
// and injected; nothing registers itself from init.
type Registry struct {
	classes map[string]Constructor
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{classes: map[string]Constructor{}}
}

// Register adds a role class. Registering the same name twice is a
// configuration error and fails fast.
func (r *Registry) Register(ctor Constructor) error {
	name := ctor().Meta().Name
	if _, ok := r.classes[name]; ok {
		return consts.ErrorsRoleDuplicated
	}
	r.classes[name] = ctor
	r.order = append(r.order, name)
	return nil
}

// New instantiates a registered role by name.
func (r *Registry) New(name string) (Role, error) {
	ctor, ok := r.classes[name]
	if !ok {
		return nil, consts.ErrorsRoleUnknown
	}
	return ctor(), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.classes[name]
	return ok
}

// Names lists registered role names in registration order, optionally
// filtered by faction and enabled expansion set.
func (r *Registry) Names(faction *Faction, expansions map[string]bool) []string {
	names := make([]string, 0, len(r.order))
	for _, name := range r.order {
		meta := r.classes[name]().Meta()
		if faction != nil && meta.Faction != *faction {
			continue
		}
		if expansions != nil && !expansions[meta.Expansion] {
			continue
		}
		names = append(names, name)
	}
	return names
}
