// Package tracetree is the ordered String/Object/Array value model used for
// decoded packets and recorded API call arguments.
//
// Trees are built once through auto-vivifying accessors and then handed to a
// writer. Object keys keep first-insertion order and nothing is ever removed.
package tracetree

import "fmt"

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindString Kind = iota
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a mutable slot holding one of the three variants.
// The zero Value is the default-empty value: an empty String.
type Value struct {
	kind Kind
	str  string
	obj  *Object
	arr  *Array
}

// Str creates a String value.
func Str(s string) *Value {
	return &Value{kind: KindString, str: s}
}

// Strf creates a String value from a format.
func Strf(format string, args ...any) *Value {
	return Str(fmt.Sprintf(format, args...))
}

// NewObjectValue creates a Value holding an empty Object.
func NewObjectValue() *Value {
	return &Value{kind: KindObject, obj: NewObject()}
}

// NewArrayValue creates a Value holding an empty Array.
func NewArrayValue() *Value {
	return &Value{kind: KindArray, arr: NewArray()}
}

// Wrap creates a Value holding o.
func Wrap(o *Object) *Value {
	return &Value{kind: KindObject, obj: o}
}

// WrapArray creates a Value holding a.
func WrapArray(a *Array) *Value {
	return &Value{kind: KindArray, arr: a}
}

func (v *Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is still the default-empty value.
func (v *Value) IsEmpty() bool {
	return v.kind == KindString && v.str == ""
}

// String returns the text of a String value and "" for other kinds.
func (v *Value) String() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// SetString replaces the slot content with text.
func (v *Value) SetString(s string) {
	*v = Value{kind: KindString, str: s}
}

// Set replaces the slot content with a copy of other's variant.
// Nested containers are shared, not cloned.
func (v *Value) Set(other *Value) {
	if other == nil {
		*v = Value{}
		return
	}
	*v = *other
}

// Object returns the slot's Object, turning the slot into an empty Object
// first if it holds another variant.
func (v *Value) Object() *Object {
	if v.kind != KindObject || v.obj == nil {
		*v = Value{kind: KindObject, obj: NewObject()}
	}
	return v.obj
}

// Array returns the slot's Array, turning the slot into an empty Array
// first if it holds another variant.
func (v *Value) Array() *Array {
	if v.kind != KindArray || v.arr == nil {
		*v = Value{kind: KindArray, arr: NewArray()}
	}
	return v.arr
}

// AsObject returns the Object without converting the slot.
func (v *Value) AsObject() (*Object, bool) {
	if v.kind != KindObject || v.obj == nil {
		return nil, false
	}
	return v.obj, true
}

// AsArray returns the Array without converting the slot.
func (v *Value) AsArray() (*Array, bool) {
	if v.kind != KindArray || v.arr == nil {
		return nil, false
	}
	return v.arr, true
}

// Equal compares two trees structurally. Object key order is significant.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindObject:
		return v.obj.Equal(other.obj)
	case KindArray:
		return v.arr.Equal(other.arr)
	}
	return false
}

// Clone deep copies the tree rooted at v.
func (v *Value) Clone() *Value {
	switch v.kind {
	case KindObject:
		return Wrap(v.obj.Clone())
	case KindArray:
		return WrapArray(v.arr.Clone())
	default:
		return Str(v.str)
	}
}
