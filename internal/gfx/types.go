package gfx

import (
	"fmt"
	"strings"
)

// Index is a position within a decode or record stream.
// For the packet decoder it is a dword offset, for the recorder a call index.
type Index uint64

// BadIndex is an invalid index value
const BadIndex Index = ^Index(0)

// Generation selects the hardware-specific packet layout variants.
type Generation uint8

const (
	GenAny Generation = iota // generation-agnostic layouts
	Gen9                     // GFX09
	Gen10                    // GFX10
	Gen11                    // GFX11
)

var generationNames = map[Generation]string{
	GenAny: "any",
	Gen9:   "gfx9",
	Gen10:  "gfx10",
	Gen11:  "gfx11",
}

func (g Generation) String() string {
	if name, ok := generationNames[g]; ok {
		return name
	}
	return fmt.Sprintf("gen(%d)", uint8(g))
}

// ParseGeneration accepts the short names used in capture descriptors ("gfx9", "GFX09", "9").
func ParseGeneration(s string) (Generation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "gfx")
	name = strings.TrimLeft(name, "0")
	switch name {
	case "9":
		return Gen9, nil
	case "10":
		return Gen10, nil
	case "11":
		return Gen11, nil
	case "any":
		return GenAny, nil
	}
	return GenAny, fmt.Errorf("unknown hardware generation %q", s)
}

// Err represents library error return type
type Err uint32

const (
	OK                  Err = 0
	ErrFail             Err = 1
	ErrInvalidParamVal  Err = 2
	ErrInvalidFieldSpec Err = 3
	ErrTruncated        Err = 4
	ErrUnknownOpcode    Err = 5
	ErrDuplicateLayout  Err = 6
	ErrFileError        Err = 7
	ErrCaptureParse     Err = 8
	ErrBadHandle        Err = 9
	ErrWriteFailed      Err = 10
	ErrLast             Err = 11
)

// ErrSeverity used to indicate the severity of an error or logger verbosity
type ErrSeverity uint32

const (
	ErrSevNone  ErrSeverity = 0
	ErrSevError ErrSeverity = 1
	ErrSevWarn  ErrSeverity = 2
	ErrSevInfo  ErrSeverity = 3
)
