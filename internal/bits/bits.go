// Package bits reads fixed-width fields out of 32-bit packet words.
//
// All PM4 field access goes through Extract so that bit order and sign
// handling never depend on native struct layout.
package bits

import (
	"gputrace/internal/common"
	"gputrace/internal/gfx"
)

// Validate checks a field specification against the 32-bit word bounds.
func Validate(offset, width uint8) error {
	if width < 1 || width > 32 {
		return common.Errorf(gfx.ErrInvalidFieldSpec, "width %d out of range 1..32", width)
	}
	if uint(offset)+uint(width) > 32 {
		return common.Errorf(gfx.ErrInvalidFieldSpec, "offset %d + width %d exceeds 32 bits", offset, width)
	}
	return nil
}

// Extract returns the width-bit field at offset within word, zero extended,
// or sign extended from bit width-1 when signed is set.
func Extract(word uint32, offset, width uint8, signed bool) (int64, error) {
	if err := Validate(offset, width); err != nil {
		return 0, err
	}
	raw := uint64(word>>offset) & mask(width)
	if signed && raw&(1<<(width-1)) != 0 {
		return int64(raw) - int64(1)<<width, nil
	}
	return int64(raw), nil
}

// Unsigned is Extract for unsigned fields.
func Unsigned(word uint32, offset, width uint8) (uint32, error) {
	v, err := Extract(word, offset, width, false)
	return uint32(v), err
}

// MustUnsigned is for fixed, known-good specs such as the packet header.
// It panics on an invalid field.
func MustUnsigned(word uint32, offset, width uint8) uint32 {
	v, err := Unsigned(word, offset, width)
	if err != nil {
		panic(err)
	}
	return v
}

// Insert places value into the width-bit field at offset of word.
// Bits of value above width are discarded.
func Insert(word uint32, offset, width uint8, value uint32) (uint32, error) {
	if err := Validate(offset, width); err != nil {
		return word, err
	}
	m := uint32(mask(width)) << offset
	return (word &^ m) | ((value << offset) & m), nil
}

func mask(width uint8) uint64 {
	return (uint64(1) << width) - 1
}
