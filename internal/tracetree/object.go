package tracetree

import "iter"

// Object is an ordered string-keyed map. Iteration follows first insertion.
type Object struct {
	keys  []string
	slots map[string]*Value
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{slots: make(map[string]*Value)}
}

// GetOrInsert returns the slot for key, appending a default-empty slot at the
// end of the iteration order when key is new.
func (o *Object) GetOrInsert(key string) *Value {
	if o.slots == nil {
		o.slots = make(map[string]*Value)
	}
	if v, ok := o.slots[key]; ok {
		return v
	}
	v := &Value{}
	o.keys = append(o.keys, key)
	o.slots[key] = v
	return v
}

// Get returns the slot for key without inserting.
func (o *Object) Get(key string) (*Value, bool) {
	v, ok := o.slots[key]
	return v, ok
}

// Set stores v under key. An existing key keeps its position.
func (o *Object) Set(key string, v *Value) {
	o.GetOrInsert(key).Set(v)
}

// SetString stores a String value under key.
func (o *Object) SetString(key, s string) {
	o.GetOrInsert(key).SetString(s)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.slots[key]
	return ok
}

func (o *Object) Len() int { return len(o.keys) }

// Keys returns a copy of the keys in iteration order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// All iterates key/value pairs in first-insertion order.
func (o *Object) All() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		for _, k := range o.keys {
			if !yield(k, o.slots[k]) {
				return
			}
		}
	}
}

// Equal compares keys, their order and values.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if len(o.keys) != len(other.keys) {
		return false
	}
	for i, k := range o.keys {
		if other.keys[i] != k {
			return false
		}
		if !o.slots[k].Equal(other.slots[k]) {
			return false
		}
	}
	return true
}

// Clone deep copies the object.
func (o *Object) Clone() *Object {
	c := &Object{
		keys:  append([]string(nil), o.keys...),
		slots: make(map[string]*Value, len(o.slots)),
	}
	for k, v := range o.slots {
		c.slots[k] = v.Clone()
	}
	return c
}
