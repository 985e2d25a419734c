package common

import (
	"fmt"
	"strings"

	"gputrace/internal/gfx"
)

// Error represents the library error object.
// Idx is a dword offset for decoder errors and a call index for recorder errors.
type Error struct {
	Code    gfx.Err
	Sev     gfx.ErrSeverity
	Idx     gfx.Index
	Message string
}

// Sentinels for use with errors.Is. Matching is by code only.
var (
	ErrInvalidParamVal  = NewError(gfx.ErrSevError, gfx.ErrInvalidParamVal)
	ErrInvalidFieldSpec = NewError(gfx.ErrSevError, gfx.ErrInvalidFieldSpec)
	ErrTruncated        = NewError(gfx.ErrSevWarn, gfx.ErrTruncated)
	ErrDuplicateLayout  = NewError(gfx.ErrSevError, gfx.ErrDuplicateLayout)
	ErrCaptureParse     = NewError(gfx.ErrSevError, gfx.ErrCaptureParse)
	ErrBadHandle        = NewError(gfx.ErrSevError, gfx.ErrBadHandle)
	ErrFileError        = NewError(gfx.ErrSevError, gfx.ErrFileError)
	ErrWriteFailed      = NewError(gfx.ErrSevError, gfx.ErrWriteFailed)
)

func NewError(sev gfx.ErrSeverity, code gfx.Err) *Error {
	return &Error{
		Code: code,
		Sev:  sev,
		Idx:  gfx.BadIndex,
	}
}

func NewErrorWithIdx(sev gfx.ErrSeverity, code gfx.Err, idx gfx.Index) *Error {
	return &Error{
		Code: code,
		Sev:  sev,
		Idx:  idx,
	}
}

func NewErrorMsg(sev gfx.ErrSeverity, code gfx.Err, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		Idx:     gfx.BadIndex,
		Message: msg,
	}
}

func NewErrorWithIdxMsg(sev gfx.ErrSeverity, code gfx.Err, idx gfx.Index, msg string) *Error {
	return &Error{
		Code:    code,
		Sev:     sev,
		Idx:     idx,
		Message: msg,
	}
}

// Errorf builds an error-severity Error with a formatted message.
func Errorf(code gfx.Err, format string, args ...any) *Error {
	return NewErrorMsg(gfx.ErrSevError, code, fmt.Sprintf(format, args...))
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	switch e.Sev {
	case gfx.ErrSevNone:
		return "LIBRARY INTERNAL ERROR: Invalid Error Object"
	case gfx.ErrSevError:
		sb.WriteString("ERROR:")
	case gfx.ErrSevWarn:
		sb.WriteString("WARN :")
	case gfx.ErrSevInfo:
		sb.WriteString("INFO :")
	default:
		return "LIBRARY INTERNAL ERROR: Invalid Error Object"
	}

	sb.WriteString(fmt.Sprintf("0x%04x ", e.Code))

	if desc, ok := errorCodeDesc[e.Code]; ok {
		sb.WriteString(fmt.Sprintf("(%s) [%s]; ", desc.name, desc.msg))
	} else {
		sb.WriteString("(unknown); ")
	}

	if e.Idx != gfx.BadIndex {
		sb.WriteString(fmt.Sprintf("Idx=%d; ", e.Idx))
	}

	sb.WriteString(e.Message)
	return sb.String()
}

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeName returns the symbolic name for an error code.
func CodeName(code gfx.Err) string {
	if desc, ok := errorCodeDesc[code]; ok {
		return desc.name
	}
	return "GFX_ERR_UNKNOWN"
}

type errDesc struct {
	name string
	msg  string
}

var errorCodeDesc = map[gfx.Err]errDesc{
	gfx.OK:                  {"GFX_OK", "No Error."},
	gfx.ErrFail:             {"GFX_ERR_FAIL", "General failure."},
	gfx.ErrInvalidParamVal:  {"GFX_ERR_INVALID_PARAM_VAL", "Invalid value parameter passed to component."},
	gfx.ErrInvalidFieldSpec: {"GFX_ERR_INVALID_FIELD_SPEC", "Invalid bit field or tree index specification."},
	gfx.ErrTruncated:        {"GFX_ERR_TRUNCATED", "Buffer ended part way through a packet."},
	gfx.ErrUnknownOpcode:    {"GFX_ERR_UNKNOWN_OPCODE", "No packet layout registered for opcode."},
	gfx.ErrDuplicateLayout:  {"GFX_ERR_DUPLICATE_LAYOUT", "Packet layout registered twice for the same opcode and generation."},
	gfx.ErrFileError:        {"GFX_ERR_FILE_ERROR", "File access error"},
	gfx.ErrCaptureParse:     {"GFX_ERR_CAPTURE_PARSE", "Capture descriptor parse error"},
	gfx.ErrBadHandle:        {"GFX_ERR_BAD_HANDLE", "Invalid command buffer handle."},
	gfx.ErrWriteFailed:      {"GFX_ERR_WRITE_FAILED", "Trace output write failed."},
	gfx.ErrLast:             {"GFX_ERR_LAST", "No error - error code end marker"},
}
