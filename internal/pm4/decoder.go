// Package pm4 decodes GPU command-processor packet streams.
//
// Decoding is driven by a Registry of declarative layouts. A pass never
// fails on input data: every dword ends up in an Ok, Opaque or Truncated
// packet, and a Truncated packet is always the last one produced.
package pm4

import (
	"encoding/binary"
	"fmt"

	"gputrace/internal/bits"
	"gputrace/internal/common"
	"gputrace/internal/gfx"
	"gputrace/internal/tracetree"
)

// Decoder turns dword buffers into packets. It holds no per-pass state and
// may be shared between goroutines.
type Decoder struct {
	registry *Registry
	logger   common.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithRegistry replaces the built-in layout registry.
func WithRegistry(r *Registry) Option {
	return func(d *Decoder) { d.registry = r }
}

// WithLogger sets the logger for opaque and truncated packet reports.
func WithLogger(l common.Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// NewDecoder creates a decoder using the built-in registry and no logging.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		registry: DefaultRegistry(),
		logger:   common.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Decoder) Registry() *Registry { return d.registry }

// Decode walks buf packet by packet.
func (d *Decoder) Decode(buf []uint32, gen gfx.Generation) ([]Packet, Summary) {
	var (
		pkts []Packet
		sum  Summary
	)
	i := 0
	for i < len(buf) {
		hdr := ParseHeader(buf[i])
		if hdr.Type != Type3 {
			p := d.opaque(buf, i, 1, hdr, gen, ReasonNonType3)
			sum.add(&p)
			pkts = append(pkts, p)
			i++
			continue
		}

		total := hdr.TotalLen()
		if i+total > len(buf) {
			p := d.truncated(buf, i, hdr, gen, fmt.Sprintf("need %d dwords, %d available", total, len(buf)-i))
			sum.add(&p)
			pkts = append(pkts, p)
			return pkts, sum
		}

		layout, ok := d.registry.Lookup(hdr.Opcode, gen)
		var p Packet
		switch {
		case !ok:
			p = d.opaque(buf, i, total, hdr, gen, ReasonUnknownOpcode)
		case total < layout.MinDwords:
			p = d.opaque(buf, i, total, hdr, gen, ReasonShortPayload)
			p.Mnemonic = layout.Mnemonic
		default:
			p = d.decodeLayout(buf[i:i+total], i, hdr, gen, layout)
		}
		sum.add(&p)
		pkts = append(pkts, p)
		i += total
	}
	return pkts, sum
}

// DecodeBytes decodes a little-endian byte stream. Bytes past the last
// whole dword are reported as a trailing Truncated packet.
func (d *Decoder) DecodeBytes(data []byte, gen gfx.Generation) ([]Packet, Summary) {
	pkts, sum := d.Decode(BytesToDwords(data), gen)
	r := Result{Packets: pkts, Summary: sum}
	d.MarkTrailing(&r, len(data)/4, len(data)%4, gen)
	return r.Packets, r.Summary
}

// MarkTrailing records rem bytes left after the last of n whole dwords of a
// decoded buffer. Unless the buffer already ends in a Truncated packet, a
// Truncated marker packet is appended at offset n.
func (d *Decoder) MarkTrailing(r *Result, n, rem int, gen gfx.Generation) {
	if rem == 0 {
		return
	}
	r.Summary.TrailingBytes += rem
	if r.Summary.Truncated {
		return
	}
	p := Packet{
		Offset:     n,
		Generation: gen,
		Fields:     tracetree.NewObject(),
		Status:     StatusTruncated,
		Reason:     fmt.Sprintf("%d trailing bytes", rem),
	}
	d.logger.Logf(common.SeverityWarning, "pm4: %d trailing bytes after dword %d", rem, n)
	r.Summary.add(&p)
	r.Packets = append(r.Packets, p)
}

// BytesToDwords converts little-endian bytes to dwords, dropping any
// incomplete final dword.
func BytesToDwords(data []byte) []uint32 {
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return out
}

func (d *Decoder) base(buf []uint32, at, n int, hdr Header, gen gfx.Generation) Packet {
	raw := make([]uint32, n)
	copy(raw, buf[at:at+n])
	return Packet{
		Offset:          at,
		Header:          hdr,
		Opcode:          hdr.Opcode,
		Generation:      gen,
		Fields:          tracetree.NewObject(),
		Raw:             raw,
		ReservedBitsSet: hdr.Type == Type3 && hdr.Reserved != 0,
	}
}

func (d *Decoder) opaque(buf []uint32, at, n int, hdr Header, gen gfx.Generation, reason string) Packet {
	p := d.base(buf, at, n, hdr, gen)
	p.Status = StatusOpaque
	p.Reason = reason
	if hdr.Type == Type3 {
		p.Mnemonic = hdr.Opcode.String()
	}
	d.logger.Logf(common.SeverityDebug, "pm4: opaque packet at dword %d (%s): header 0x%08X", at, reason, buf[at])
	return p
}

func (d *Decoder) truncated(buf []uint32, at int, hdr Header, gen gfx.Generation, reason string) Packet {
	p := d.base(buf, at, len(buf)-at, hdr, gen)
	p.Status = StatusTruncated
	p.Reason = reason
	p.Mnemonic = hdr.Opcode.String()
	d.logger.Logf(common.SeverityWarning, "pm4: truncated %s at dword %d: %s", p.Mnemonic, at, reason)
	return p
}

// decodeLayout extracts every field of a complete packet. The layout has
// passed Validate and pkt holds at least MinDwords, so a field that cannot be
// read is a broken registry and panics.
func (d *Decoder) decodeLayout(pkt []uint32, at int, hdr Header, gen gfx.Generation, l *Layout) Packet {
	p := d.base(pkt, 0, len(pkt), hdr, gen)
	p.Offset = at
	p.Mnemonic = l.Mnemonic

	payload := pkt[1:]
	p.values = make(map[string]int64, len(l.Fields))
	for _, f := range l.Fields {
		if f.Dword >= len(payload) {
			if f.Optional {
				continue
			}
			panic(fmt.Sprintf("%s.%s: dword %d missing", l.Mnemonic, f.Name, f.Dword))
		}
		v, err := bits.Extract(payload[f.Dword], f.Offset, f.Width, f.Signed)
		if err != nil {
			panic(err)
		}
		if f.Reserved {
			if v != 0 {
				p.ReservedBitsSet = true
			}
			continue
		}
		p.values[f.Name] = v
		p.Fields.SetString(f.Name, f.render(v))
	}

	if l.Tail != "" {
		tail := p.Fields.GetOrInsert(l.Tail).Array()
		for j := l.TailDword; j < len(payload); j++ {
			tail.AppendString(fmt.Sprintf("0x%08X", payload[j]))
		}
	}
	p.Status = StatusOk
	return p
}
