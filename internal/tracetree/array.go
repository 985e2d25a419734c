package tracetree

import (
	"iter"

	"gputrace/internal/common"
	"gputrace/internal/gfx"
)

// Array is a 0-indexed list of values that grows on out-of-range writes.
type Array struct {
	items []*Value
}

// NewArray creates an empty Array.
func NewArray() *Array {
	return &Array{}
}

func (a *Array) Len() int { return len(a.items) }

// Set stores v at index, growing the array to index+1 with default-empty
// slots when needed. A negative index is an InvalidFieldSpec error.
func (a *Array) Set(index int, v *Value) error {
	slot, err := a.At(index)
	if err != nil {
		return err
	}
	slot.Set(v)
	return nil
}

// At returns the slot at index, growing the array like Set.
func (a *Array) At(index int) (*Value, error) {
	if index < 0 {
		return nil, common.Errorf(gfx.ErrInvalidFieldSpec, "negative array index %d", index)
	}
	for len(a.items) <= index {
		a.items = append(a.items, &Value{})
	}
	return a.items[index], nil
}

// Get returns the slot at index, or false when index is out of range.
func (a *Array) Get(index int) (*Value, bool) {
	if index < 0 || index >= len(a.items) {
		return nil, false
	}
	return a.items[index], true
}

// Append adds v at the end and returns its slot.
func (a *Array) Append(v *Value) *Value {
	slot := &Value{}
	slot.Set(v)
	a.items = append(a.items, slot)
	return slot
}

// AppendString adds a String value at the end.
func (a *Array) AppendString(s string) {
	a.items = append(a.items, Str(s))
}

// All iterates index/value pairs in order.
func (a *Array) All() iter.Seq2[int, *Value] {
	return func(yield func(int, *Value) bool) {
		for i, v := range a.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

func (a *Array) Equal(other *Array) bool {
	if a == nil || other == nil {
		return a == other
	}
	if len(a.items) != len(other.items) {
		return false
	}
	for i := range a.items {
		if !a.items[i].Equal(other.items[i]) {
			return false
		}
	}
	return true
}

// Clone deep copies the array.
func (a *Array) Clone() *Array {
	c := &Array{items: make([]*Value, len(a.items))}
	for i, v := range a.items {
		c.items[i] = v.Clone()
	}
	return c
}
