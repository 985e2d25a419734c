package pm4

import (
	"fmt"
	"sort"

	"gputrace/internal/common"
	"gputrace/internal/gfx"
)

type layoutKey struct {
	op  Opcode
	gen gfx.Generation
}

// Registry maps (opcode, generation) to a packet layout.
// It is immutable after construction and safe for concurrent lookups.
type Registry struct {
	layouts map[layoutKey]*Layout
}

// NewRegistry validates and indexes layouts. Two layouts with the same
// opcode and generation are rejected.
func NewRegistry(layouts ...Layout) (*Registry, error) {
	r := &Registry{layouts: make(map[layoutKey]*Layout, len(layouts))}
	for i := range layouts {
		l := layouts[i]
		if err := l.Validate(); err != nil {
			return nil, err
		}
		k := layoutKey{l.Opcode, l.Generation}
		if prev, dup := r.layouts[k]; dup {
			return nil, common.Errorf(gfx.ErrDuplicateLayout, "%s and %s both registered for opcode 0x%02X on %s",
				prev.Mnemonic, l.Mnemonic, uint8(l.Opcode), l.Generation)
		}
		r.layouts[k] = &l
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for static tables; it panics on error.
func MustNewRegistry(layouts ...Layout) *Registry {
	r, err := NewRegistry(layouts...)
	if err != nil {
		panic(fmt.Sprintf("pm4: invalid layout table: %v", err))
	}
	return r
}

// Lookup returns the layout registered for exactly gen, falling back to the
// generation-agnostic layout.
func (r *Registry) Lookup(op Opcode, gen gfx.Generation) (*Layout, bool) {
	if l, ok := r.layouts[layoutKey{op, gen}]; ok {
		return l, true
	}
	if gen != gfx.GenAny {
		if l, ok := r.layouts[layoutKey{op, gfx.GenAny}]; ok {
			return l, true
		}
	}
	return nil, false
}

func (r *Registry) Len() int { return len(r.layouts) }

// Layouts returns all layouts ordered by opcode then generation.
func (r *Registry) Layouts() []*Layout {
	out := make([]*Layout, 0, len(r.layouts))
	for _, l := range r.layouts {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Opcode != out[j].Opcode {
			return out[i].Opcode < out[j].Opcode
		}
		return out[i].Generation < out[j].Generation
	})
	return out
}

var defaultRegistry = MustNewRegistry(builtinLayouts()...)

// DefaultRegistry returns the registry of built-in layouts.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
