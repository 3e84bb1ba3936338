// Package callbacks encodes action routes into compact tokens and builds the
// callback data attached to inline buttons.
package callbacks

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins route segments and token pieces.
const Separator = "."

// Dictionary holds one segment->alias map per route position. Position 0 maps
// the first segment, position 1 the second, and so on. Segments at positions
// past the end of the slice, or absent from their map, are left as they are.
type Dictionary []map[string]string

// Codec maps action routes to alias tokens and back. It is immutable and safe
// for concurrent use.
type Codec struct {
	forward []map[string]string
	reverse []map[string]string
}

// NewCodec validates dict and builds a codec over it. Each position map must be
// injective, and aliases must be non-empty, free of the separator and no longer
// than the segment they replace.
func NewCodec(dict Dictionary) (*Codec, error) {
	c := &Codec{
		forward: make([]map[string]string, len(dict)),
		reverse: make([]map[string]string, len(dict)),
	}
	var errs []error
	for pos, m := range dict {
		fwd := make(map[string]string, len(m))
		rev := make(map[string]string, len(m))
		for seg, alias := range m {
			switch {
			case seg == "" || alias == "":
				errs = append(errs, fmt.Errorf("position %d: empty segment or alias (%q -> %q)", pos, seg, alias))
				continue
			case strings.Contains(seg, Separator) || strings.Contains(alias, Separator):
				errs = append(errs, fmt.Errorf("position %d: %q -> %q contains %q", pos, seg, alias, Separator))
				continue
			case len(alias) > len(seg):
				errs = append(errs, fmt.Errorf("position %d: alias %q is longer than %q", pos, alias, seg))
				continue
			}
			if prev, dup := rev[alias]; dup {
				errs = append(errs, fmt.Errorf("position %d: alias %q used by both %q and %q", pos, alias, prev, seg))
				continue
			}
			fwd[seg] = alias
			rev[alias] = seg
		}
		c.forward[pos] = fwd
		c.reverse[pos] = rev
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("callbacks: invalid dictionary: %w", errors.Join(errs...))
	}
	return c, nil
}

// MustCodec is NewCodec that panics on an invalid dictionary. Intended for
// package-level dictionaries known at compile time.
func MustCodec(dict Dictionary) *Codec {
	c, err := NewCodec(dict)
	if err != nil {
		panic(err)
	}
	return c
}

// Encode maps every segment of route through its position's dictionary.
// Unknown segments pass through, so Encode never fails.
func (c *Codec) Encode(route string) string {
	return c.translate(route, c.forwardAt)
}

// Decode reverses Encode. Unknown pieces pass through unchanged.
func (c *Codec) Decode(token string) string {
	return c.translate(token, c.reverseAt)
}

func (c *Codec) forwardAt(pos int) map[string]string { return mapAt(c.forward, pos) }
func (c *Codec) reverseAt(pos int) map[string]string { return mapAt(c.reverse, pos) }

func mapAt(maps []map[string]string, pos int) map[string]string {
	if pos < len(maps) {
		return maps[pos]
	}
	return nil
}

func (c *Codec) translate(s string, table func(int) map[string]string) string {
	if c == nil || s == "" {
		return s
	}
	parts := strings.Split(s, Separator)
	for i, p := range parts {
		if mapped, ok := table(i)[p]; ok {
			parts[i] = mapped
		}
	}
	return strings.Join(parts, Separator)
}

// Verify checks the codec against the registered route set: every route must
// round-trip, tokens must be distinct, and no token may equal another
// registered route (the dispatcher tries raw routes before decoding).
func (c *Codec) Verify(routes []string) error {
	known := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		known[r] = struct{}{}
	}
	owners := make(map[string]string, len(routes))
	var errs []error
	for _, route := range routes {
		token := c.Encode(route)
		if back := c.Decode(token); back != route {
			errs = append(errs, fmt.Errorf("route %q encodes to %q which decodes to %q", route, token, back))
		}
		if other, dup := owners[token]; dup && other != route {
			errs = append(errs, fmt.Errorf("routes %q and %q share token %q", other, route, token))
		}
		owners[token] = route
		if _, clash := known[token]; clash && token != route {
			errs = append(errs, fmt.Errorf("token %q of %q is itself a registered route", token, route))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("callbacks: codec does not cover routes: %w", errors.Join(errs...))
	}
	return nil
}
