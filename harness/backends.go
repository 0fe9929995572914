package harness

import (
	"fmt"
	"sort"
)

// Factory constructs a fresh backend instance.
type Factory func() Backend

var registry = map[string]Factory{}

// Register makes a backend constructible by name. Backend packages call
// this from init; registering the same name twice panics.
func Register(name string, factory Factory) {
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("backend %q registered twice", name))
	}

	registry[name] = factory
}

// KnownBackends returns the registered backend names, sorted.
func KnownBackends() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Resolve instantiates backends for the given names, in the given order.
func Resolve(names []string) ([]Backend, error) {
	backends := make([]Backend, 0, len(names))

	for _, name := range names {
		factory, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown backend %q (known: %v)", name, KnownBackends())
		}

		backends = append(backends, factory())
	}

	return backends, nil
}
