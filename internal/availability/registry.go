package availability

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// RawNode is one child element of the calendar event array as found in the
// response document.
type RawNode struct {
	XMLName  xml.Name
	InnerXML []byte `xml:",innerxml"`
}

// Tag returns the element's local name.
func (n RawNode) Tag() string {
	return n.XMLName.Local
}

// ItemConstructor builds a typed record from a response subtree.
type ItemConstructor func(node RawNode) (Item, error)

// Registry maps calendar item element names to record constructors.
//
// A registry is populated once and sealed; after Seal it is read-only and
// safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]ItemConstructor
	sealed       bool
}

// NewRegistry creates an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]ItemConstructor),
	}
}

// DefaultRegistry returns a sealed registry holding the built-in item kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for tag, ctor := range builtinItems {
		// builtinItems is a fixed table, registration cannot fail
		_ = r.Register(tag, ctor)
	}
	r.Seal()
	return r
}

// Register adds a constructor for tag.
func (r *Registry) Register(tag string, ctor ItemConstructor) error {
	if strings.TrimSpace(tag) == "" {
		return fmt.Errorf("item tag must not be empty")
	}
	if ctor == nil {
		return fmt.Errorf("constructor for item tag %q must not be nil", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("cannot register item tag %q: %w", tag, ErrRegistrySealed)
	}
	if _, exists := r.constructors[tag]; exists {
		return fmt.Errorf("item tag %q is already registered", tag)
	}
	r.constructors[tag] = ctor
	return nil
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Resolve returns the constructor registered for tag.
func (r *Registry) Resolve(tag string) (ItemConstructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.constructors[tag]
	return ctor, ok
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.constructors))
	for tag := range r.constructors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
