// Package actions maps canonical action routes to handlers and dispatches
// inbound button taps and commands to them.
package actions

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrConfiguration is matched by every registry construction error.
var ErrConfiguration = errors.New("actions: invalid route configuration")

// ConfigError describes one rejected registration.
type ConfigError struct {
	Route  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("actions: route %q: %s", e.Route, e.Reason)
}

// Is lets errors.Is(err, ErrConfiguration) match.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// Code implements the error code contract used by router logging.
func (e *ConfigError) Code() string { return "ROUTE_CONFIG" }

// ValidateRoute checks that route is a dot-separated list of non-empty
// segments made of lowercase letters, digits and underscores.
func ValidateRoute(route string) error {
	if route == "" {
		return &ConfigError{Route: route, Reason: "empty route"}
	}
	for i, seg := range strings.Split(route, ".") {
		if seg == "" {
			return &ConfigError{Route: route, Reason: fmt.Sprintf("segment %d is empty", i)}
		}
		for _, r := range seg {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_') {
				return &ConfigError{Route: route, Reason: fmt.Sprintf("segment %q has invalid character %q", seg, r)}
			}
		}
	}
	return nil
}

// Entry pairs a route with its handler. Handler modules expose their routes as
// a slice of entries.
type Entry struct {
	Route   string
	Handler Handler
}

// Builder collects entries before the registry is frozen. It is not safe for
// concurrent use.
type Builder struct {
	handlers map[string]Handler
	errs     []error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{handlers: make(map[string]Handler)}
}

// Register adds one route. Problems are recorded and reported by Build.
func (b *Builder) Register(route string, h Handler) *Builder {
	if err := ValidateRoute(route); err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	if h == nil {
		b.errs = append(b.errs, &ConfigError{Route: route, Reason: "nil handler"})
		return b
	}
	if _, dup := b.handlers[route]; dup {
		b.errs = append(b.errs, &ConfigError{Route: route, Reason: "registered twice"})
		return b
	}
	b.handlers[route] = h
	return b
}

// Add registers every entry.
func (b *Builder) Add(entries ...Entry) *Builder {
	for _, e := range entries {
		b.Register(e.Route, e.Handler)
	}
	return b
}

// Build freezes the collected routes. Every recorded problem is joined into
// the returned error.
func (b *Builder) Build() (*Registry, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	handlers := make(map[string]Handler, len(b.handlers))
	routes := make([]string, 0, len(b.handlers))
	for r, h := range b.handlers {
		handlers[r] = h
		routes = append(routes, r)
	}
	slices.Sort(routes)
	return &Registry{handlers: handlers, routes: routes}, nil
}

// Registry is the immutable route table. Safe for concurrent reads.
type Registry struct {
	handlers map[string]Handler
	routes   []string
}

// Has reports whether route is registered.
func (r *Registry) Has(route string) bool {
	_, ok := r.handlers[route]
	return ok
}

// Lookup returns the handler for route.
func (r *Registry) Lookup(route string) (Handler, bool) {
	h, ok := r.handlers[route]
	return h, ok
}

// List returns the registered routes, sorted.
func (r *Registry) List() []string {
	return slices.Clone(r.routes)
}

// Len reports the number of registered routes.
func (r *Registry) Len() int {
	return len(r.routes)
}
