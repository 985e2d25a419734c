package tracetree

import (
	"github.com/goccy/go-json"
)

// AppendJSON appends the compact JSON encoding of v to dst.
// Objects are written in iteration order, so equal trees encode to equal bytes.
func (v *Value) AppendJSON(dst []byte) ([]byte, error) {
	switch v.kind {
	case KindObject:
		return v.obj.AppendJSON(dst)
	case KindArray:
		return v.arr.AppendJSON(dst)
	default:
		return appendString(dst, v.str)
	}
}

func (o *Object) AppendJSON(dst []byte) ([]byte, error) {
	var err error
	dst = append(dst, '{')
	for i, k := range o.keys {
		if i > 0 {
			dst = append(dst, ',')
		}
		if dst, err = appendString(dst, k); err != nil {
			return dst, err
		}
		dst = append(dst, ':')
		if dst, err = o.slots[k].AppendJSON(dst); err != nil {
			return dst, err
		}
	}
	return append(dst, '}'), nil
}

func (a *Array) AppendJSON(dst []byte) ([]byte, error) {
	var err error
	dst = append(dst, '[')
	for i, v := range a.items {
		if i > 0 {
			dst = append(dst, ',')
		}
		if dst, err = v.AppendJSON(dst); err != nil {
			return dst, err
		}
	}
	return append(dst, ']'), nil
}

func (v *Value) MarshalJSON() ([]byte, error)  { return v.AppendJSON(nil) }
func (o *Object) MarshalJSON() ([]byte, error) { return o.AppendJSON(nil) }
func (a *Array) MarshalJSON() ([]byte, error)  { return a.AppendJSON(nil) }

// appendString quotes s without HTML escaping so markers like
// "<unrecognized>" survive verbatim.
func appendString(dst []byte, s string) ([]byte, error) {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		return dst, err
	}
	return append(dst, b...), nil
}
