package pm4

import (
	"fmt"

	"gputrace/internal/bits"
)

// Type3 is the only header type whose payload is dispatched on opcode.
const Type3 = 3

// Header is the first dword of every packet.
type Header struct {
	Predicate      bool
	ShaderType     bool
	ResetFilterCam bool
	Reserved       uint8
	Opcode         Opcode
	Count          uint16 // payload dwords minus one
	Type           uint8
}

// ParseHeader splits a header dword into its fields.
func ParseHeader(word uint32) Header {
	return Header{
		Predicate:      bits.MustUnsigned(word, 0, 1) != 0,
		ShaderType:     bits.MustUnsigned(word, 1, 1) != 0,
		ResetFilterCam: bits.MustUnsigned(word, 2, 1) != 0,
		Reserved:       uint8(bits.MustUnsigned(word, 3, 5)),
		Opcode:         Opcode(bits.MustUnsigned(word, 8, 8)),
		Count:          uint16(bits.MustUnsigned(word, 16, 14)),
		Type:           uint8(bits.MustUnsigned(word, 30, 2)),
	}
}

// TotalLen is the packet length in dwords, header included.
func (h Header) TotalLen() int {
	return int(h.Count) + 2
}

// Encode packs the header back into a dword.
func (h Header) Encode() uint32 {
	w := uint32(h.Type&0x3) << 30
	w |= uint32(h.Count&0x3FFF) << 16
	w |= uint32(h.Opcode) << 8
	w |= uint32(h.Reserved&0x1F) << 3
	if h.ResetFilterCam {
		w |= 1 << 2
	}
	if h.ShaderType {
		w |= 1 << 1
	}
	if h.Predicate {
		w |= 1
	}
	return w
}

func (h Header) String() string {
	return fmt.Sprintf("type=%d op=0x%02X count=%d pred=%v shader=%v", h.Type, uint8(h.Opcode), h.Count, h.Predicate, h.ShaderType)
}

// MakeType3 returns the header dword for a type-3 packet carrying
// payloadDwords dwords after the header. payloadDwords must be at least 1.
func MakeType3(op Opcode, payloadDwords int) uint32 {
	return Header{Type: Type3, Opcode: op, Count: uint16(payloadDwords - 1)}.Encode()
}
