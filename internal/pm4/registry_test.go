package pm4

import (
	"errors"
	"testing"

	"gputrace/internal/common"
	"gputrace/internal/gfx"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	if r.Len() < 30 {
		t.Fatalf("built-in registry has only %d layouts", r.Len())
	}
	for _, l := range r.Layouts() {
		if l.Mnemonic != l.Opcode.String() {
			t.Errorf("layout %s registered under opcode 0x%02X (%s)", l.Mnemonic, uint8(l.Opcode), l.Opcode)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		name    string
		op      Opcode
		gen     gfx.Generation
		wantOK  bool
		wantGen gfx.Generation
	}{
		{"specific variant", OpReleaseMem, gfx.Gen9, true, gfx.Gen9},
		{"fallback to agnostic", OpReleaseMem, gfx.Gen11, true, gfx.GenAny},
		{"agnostic requested", OpAcquireMem, gfx.GenAny, true, gfx.GenAny},
		{"generic only", OpSetShReg, gfx.Gen10, true, gfx.GenAny},
		{"specific only, other gen", OpSetContextRegIndex, gfx.Gen10, false, 0},
		{"specific only, same gen", OpSetContextRegIndex, gfx.Gen9, true, gfx.Gen9},
		{"unregistered", OpLoadShReg, gfx.Gen9, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := r.Lookup(tt.op, tt.gen)
			if ok != tt.wantOK {
				t.Fatalf("Lookup ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && l.Generation != tt.wantGen {
				t.Errorf("Lookup generation = %v, want %v", l.Generation, tt.wantGen)
			}
		})
	}
}

func TestNewRegistryValidation(t *testing.T) {
	good := Layout{Opcode: OpNop, Mnemonic: "NOP", MinDwords: 2, Fields: []Field{dword("a", 0)}}

	tests := []struct {
		name    string
		layouts []Layout
		want    error
	}{
		{"duplicate key", []Layout{good, good}, common.ErrDuplicateLayout},
		{"zero width", []Layout{{Opcode: 1, Mnemonic: "X", MinDwords: 2, Fields: []Field{field("a", 0, 0, 0)}}}, common.ErrInvalidFieldSpec},
		{"overflowing field", []Layout{{Opcode: 1, Mnemonic: "X", MinDwords: 2, Fields: []Field{field("a", 0, 28, 8)}}}, common.ErrInvalidFieldSpec},
		{"field past min length", []Layout{{Opcode: 1, Mnemonic: "X", MinDwords: 2, Fields: []Field{dword("a", 1)}}}, common.ErrInvalidFieldSpec},
		{"duplicate name", []Layout{{Opcode: 1, Mnemonic: "X", MinDwords: 2, Fields: []Field{field("a", 0, 0, 1), field("a", 0, 1, 1)}}}, common.ErrInvalidFieldSpec},
		{"no mnemonic", []Layout{{Opcode: 1, MinDwords: 1}}, common.ErrInvalidFieldSpec},
		{"tail shadows field", []Layout{{Opcode: 1, Mnemonic: "X", MinDwords: 2, Fields: []Field{dword("a", 0)}, Tail: "a"}}, common.ErrInvalidFieldSpec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.layouts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewRegistry err = %v, want %v", err, tt.want)
			}
		})
	}

	gen9 := good
	gen9.Generation = gfx.Gen9
	if _, err := NewRegistry(good, gen9); err != nil {
		t.Errorf("same opcode on different generations rejected: %v", err)
	}
	// reserved fields may repeat and live in optional dwords
	withReserved := Layout{Opcode: 2, Mnemonic: "Y", MinDwords: 2, Fields: []Field{reserved(0, 0, 4), reserved(0, 4, 4), optional(dword("late", 3))}}
	if _, err := NewRegistry(withReserved); err != nil {
		t.Errorf("valid layout rejected: %v", err)
	}
}

func TestMustNewRegistryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNewRegistry accepted an invalid layout")
		}
	}()
	MustNewRegistry(Layout{Opcode: 1, Mnemonic: "X", MinDwords: 0})
}

func TestEnumRender(t *testing.T) {
	e := NewEnum("mode", map[uint32]string{0: "off", 2: "on"})
	tests := []struct {
		v    uint32
		want string
	}{
		{0, "off"},
		{2, "on"},
		{1, "<unrecognized> (1)"},
		{4000, "<unrecognized> (4000)"},
	}
	for _, tt := range tests {
		if got := e.Render(tt.v); got != tt.want {
			t.Errorf("Render(%d) = %q, want %q", tt.v, got, tt.want)
		}
	}
	if got := e.Values(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("Values() = %v", got)
	}
}

func TestOpcodeString(t *testing.T) {
	if OpSetContextReg.String() != "SET_CONTEXT_REG" || !OpSetContextReg.Known() {
		t.Errorf("OpSetContextReg = %q", OpSetContextReg)
	}
	if Opcode(0x01).String() != "UNKNOWN_0x01" || Opcode(0x01).Known() {
		t.Errorf("Opcode(1) = %q", Opcode(0x01))
	}
}
