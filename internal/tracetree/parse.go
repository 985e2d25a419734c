package tracetree

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"gputrace/internal/common"
	"gputrace/internal/gfx"
)

// ParseJSON reads one JSON value into a tree, keeping object key order.
// Scalars keep their text: numbers as written, booleans as "true" or
// "false", null as the empty string.
func ParseJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, common.Errorf(gfx.ErrInvalidParamVal, "empty JSON input")
		}
		return nil, common.Errorf(gfx.ErrInvalidParamVal, "%v", err)
	}
	v, err := parseValue(dec, tok)
	if err != nil {
		return nil, err
	}
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, common.Errorf(gfx.ErrInvalidParamVal, "unexpected %v after JSON value", tok)
	}
	return v, nil
}

func parseValue(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		}
		return nil, common.Errorf(gfx.ErrInvalidParamVal, "unexpected %q", rune(t))
	case string:
		return Str(t), nil
	case json.Number:
		// the decoder's number text aliases its read buffer
		return Str(strings.Clone(string(t))), nil
	case bool:
		if t {
			return Str("true"), nil
		}
		return Str("false"), nil
	case nil:
		return Str(""), nil
	}
	return nil, common.Errorf(gfx.ErrInvalidParamVal, "unexpected token %v", tok)
}

func parseObject(dec *json.Decoder) (*Value, error) {
	o := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, common.Errorf(gfx.ErrInvalidParamVal, "%v", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, common.Errorf(gfx.ErrInvalidParamVal, "object key %v is not a string", tok)
		}
		if tok, err = dec.Token(); err != nil {
			return nil, common.Errorf(gfx.ErrInvalidParamVal, "value of %q: %v", key, err)
		}
		v, err := parseValue(dec, tok)
		if err != nil {
			return nil, err
		}
		o.Set(key, v)
	}
	if err := closing(dec, '}'); err != nil {
		return nil, err
	}
	return Wrap(o), nil
}

func parseArray(dec *json.Decoder) (*Value, error) {
	a := NewArray()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, common.Errorf(gfx.ErrInvalidParamVal, "%v", err)
		}
		v, err := parseValue(dec, tok)
		if err != nil {
			return nil, err
		}
		a.Append(v)
	}
	if err := closing(dec, ']'); err != nil {
		return nil, err
	}
	return WrapArray(a), nil
}

func closing(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return common.Errorf(gfx.ErrInvalidParamVal, "missing %q", rune(want))
		}
		return common.Errorf(gfx.ErrInvalidParamVal, "%v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return common.Errorf(gfx.ErrInvalidParamVal, "got %v, want %q", tok, rune(want))
	}
	return nil
}
