package pm4

import (
	"fmt"
	"strconv"
	"strings"

	"gputrace/internal/gfx"
	"gputrace/internal/tracetree"
)

// Status is the outcome of decoding one packet.
type Status uint8

const (
	StatusOk Status = iota
	StatusOpaque
	StatusTruncated
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusOpaque:
		return "Opaque"
	case StatusTruncated:
		return "Truncated"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Reasons attached to non-Ok packets.
const (
	ReasonNonType3      = "non-type3 header"
	ReasonUnknownOpcode = "unknown opcode"
	ReasonShortPayload  = "short payload"
)

// Packet is one decoded record. It is not modified after Decode returns.
type Packet struct {
	Offset     int // dword offset of the header within the buffer
	Header     Header
	Opcode     Opcode
	Mnemonic   string
	Generation gfx.Generation
	Fields     *tracetree.Object
	Raw        []uint32
	Status     Status
	Reason     string

	// ReservedBitsSet is true when a reserved header or payload bit is non-zero.
	ReservedBitsSet bool

	values map[string]int64
}

// Len is the number of dwords the packet covers.
func (p *Packet) Len() int { return len(p.Raw) }

// FieldValue returns the numeric value of a decoded field.
func (p *Packet) FieldValue(name string) (int64, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Field returns the rendered text of a decoded field.
func (p *Packet) Field(name string) (string, bool) {
	v, ok := p.Fields.Get(name)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// Value renders the packet as a trace value.
func (p *Packet) Value() *tracetree.Value {
	o := tracetree.NewObject()
	o.SetString("offset", strconv.Itoa(p.Offset))
	o.SetString("opcode", fmt.Sprintf("0x%02X", uint8(p.Opcode)))
	o.SetString("mnemonic", p.Mnemonic)
	o.SetString("generation", p.Generation.String())
	o.SetString("status", p.Status.String())
	if p.Reason != "" {
		o.SetString("reason", p.Reason)
	}
	if p.ReservedBitsSet {
		o.SetString("reserved_bits_set", "true")
	}
	o.Set("fields", tracetree.Wrap(p.Fields))
	raw := o.GetOrInsert("raw").Array()
	for _, w := range p.Raw {
		raw.AppendString(fmt.Sprintf("0x%08X", w))
	}
	return tracetree.Wrap(o)
}

func (p *Packet) String() string {
	name := p.Mnemonic
	switch {
	case name != "":
	case len(p.Raw) == 0:
		name = "-"
	default:
		name = fmt.Sprintf("TYPE%d", p.Header.Type)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Idx:%d; %s", p.Offset, name)
	if p.Status != StatusOk {
		fmt.Fprintf(&b, " [%s: %s]", p.Status, p.Reason)
	}
	fmt.Fprintf(&b, "; len=%d", len(p.Raw))
	for k, v := range p.Fields.All() {
		if arr, ok := v.AsArray(); ok {
			fmt.Fprintf(&b, "; %s[%d]", k, arr.Len())
			continue
		}
		fmt.Fprintf(&b, "; %s=%s", k, v.String())
	}
	return b.String()
}

// Summary aggregates one decode pass.
type Summary struct {
	Packets         int
	Ok              int
	Opaque          int
	UnknownOpcodes  int
	Truncated       bool
	DwordsConsumed  int
	ReservedBitsSet int
	TrailingBytes   int
}

func (s *Summary) add(p *Packet) {
	s.Packets++
	switch p.Status {
	case StatusOk:
		s.Ok++
	case StatusOpaque:
		s.Opaque++
		if p.Reason == ReasonUnknownOpcode {
			s.UnknownOpcodes++
		}
	case StatusTruncated:
		s.Truncated = true
	}
	if p.Status != StatusTruncated {
		s.DwordsConsumed += len(p.Raw)
	}
	if p.ReservedBitsSet {
		s.ReservedBitsSet++
	}
}

// Merge adds other's counts into s.
func (s *Summary) Merge(other Summary) {
	s.Packets += other.Packets
	s.Ok += other.Ok
	s.Opaque += other.Opaque
	s.UnknownOpcodes += other.UnknownOpcodes
	s.Truncated = s.Truncated || other.Truncated
	s.DwordsConsumed += other.DwordsConsumed
	s.ReservedBitsSet += other.ReservedBitsSet
	s.TrailingBytes += other.TrailingBytes
}
