package pm4

import (
	"fmt"
	"sort"
	"strconv"

	"gputrace/internal/bits"
	"gputrace/internal/common"
	"gputrace/internal/gfx"
)

// Unrecognized marks an enum value with no symbolic name.
const Unrecognized = "<unrecognized>"

// Enum maps raw field values to symbolic names.
type Enum struct {
	Name   string
	values map[uint32]string
}

// NewEnum creates a resolver. The map is copied.
func NewEnum(name string, values map[uint32]string) *Enum {
	e := &Enum{Name: name, values: make(map[uint32]string, len(values))}
	for k, v := range values {
		e.values[k] = v
	}
	return e
}

// Lookup returns the symbolic name for v.
func (e *Enum) Lookup(v uint32) (string, bool) {
	n, ok := e.values[v]
	return n, ok
}

// Render returns the symbolic name, or the raw number tagged Unrecognized.
func (e *Enum) Render(v uint32) string {
	if n, ok := e.values[v]; ok {
		return n
	}
	return fmt.Sprintf("%s (%d)", Unrecognized, v)
}

// Values lists the known raw values in ascending order.
func (e *Enum) Values() []uint32 {
	vs := make([]uint32, 0, len(e.values))
	for v := range e.values {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
	return vs
}

// Format selects how a numeric field is rendered.
type Format uint8

const (
	FormatDec Format = iota
	FormatHex
)

// Field describes one bit range of one payload dword.
// Dword 0 is the first dword after the header.
type Field struct {
	Name     string
	Dword    int
	Offset   uint8
	Width    uint8
	Signed   bool
	Reserved bool // extracted and checked, never rendered
	Optional bool // skipped when the packet ends before Dword
	Format   Format
	Enum     *Enum
}

func (f Field) render(raw int64) string {
	switch {
	case f.Enum != nil:
		return f.Enum.Render(uint32(raw))
	case f.Format == FormatHex:
		return fmt.Sprintf("0x%X", uint64(raw)&(uint64(1)<<f.Width-1))
	default:
		return strconv.FormatInt(raw, 10)
	}
}

// Layout is the declarative description of one packet variant.
type Layout struct {
	Opcode     Opcode
	Mnemonic   string
	Generation gfx.Generation
	MinDwords  int // header included
	Fields     []Field

	// Tail, when set, names an array holding every payload dword from
	// TailDword to the end of the packet.
	Tail      string
	TailDword int
}

// Validate checks every field spec and the dword bounds.
func (l *Layout) Validate() error {
	if l.Mnemonic == "" {
		return common.Errorf(gfx.ErrInvalidFieldSpec, "layout for opcode 0x%02X has no mnemonic", uint8(l.Opcode))
	}
	if l.MinDwords < 1 {
		return common.Errorf(gfx.ErrInvalidFieldSpec, "%s: minimum length %d below header size", l.Mnemonic, l.MinDwords)
	}
	seen := make(map[string]bool, len(l.Fields))
	for _, f := range l.Fields {
		if err := bits.Validate(f.Offset, f.Width); err != nil {
			return fmt.Errorf("%s.%s: %w", l.Mnemonic, f.Name, err)
		}
		if f.Dword < 0 {
			return common.Errorf(gfx.ErrInvalidFieldSpec, "%s.%s: negative dword %d", l.Mnemonic, f.Name, f.Dword)
		}
		if !f.Optional && f.Dword+2 > l.MinDwords {
			return common.Errorf(gfx.ErrInvalidFieldSpec, "%s.%s: dword %d beyond minimum length %d", l.Mnemonic, f.Name, f.Dword, l.MinDwords)
		}
		if f.Reserved {
			continue
		}
		if f.Name == "" || seen[f.Name] {
			return common.Errorf(gfx.ErrInvalidFieldSpec, "%s: empty or duplicate field name %q", l.Mnemonic, f.Name)
		}
		seen[f.Name] = true
	}
	if l.Tail != "" {
		if seen[l.Tail] {
			return common.Errorf(gfx.ErrInvalidFieldSpec, "%s: tail %q shadows a field", l.Mnemonic, l.Tail)
		}
		if l.TailDword < 0 {
			return common.Errorf(gfx.ErrInvalidFieldSpec, "%s: negative tail dword %d", l.Mnemonic, l.TailDword)
		}
	}
	return nil
}
