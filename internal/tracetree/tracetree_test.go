package tracetree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gputrace/internal/common"
)

func TestObjectInsertionOrder(t *testing.T) {
	o := NewObject()
	o.SetString("a", "1")
	o.SetString("c", "2")
	o.SetString("b", "3")
	o.SetString("a", "4")

	var keys, vals []string
	for k, v := range o.All() {
		keys = append(keys, k)
		vals = append(vals, v.String())
	}
	if diff := cmp.Diff([]string{"a", "c", "b"}, keys); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"4", "2", "3"}, vals); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestGetOrInsert(t *testing.T) {
	o := NewObject()
	slot := o.GetOrInsert("x")
	if !slot.IsEmpty() || slot.Kind() != KindString {
		t.Fatalf("new slot kind=%v empty=%v, want empty string", slot.Kind(), slot.IsEmpty())
	}
	if o.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", o.Len())
	}
	slot.SetString("hello")
	if again := o.GetOrInsert("x"); again != slot || again.String() != "hello" {
		t.Errorf("GetOrInsert returned a different slot on hit")
	}
	if _, ok := o.Get("missing"); ok {
		t.Error("Get inserted or found a missing key")
	}
	if o.Len() != 1 {
		t.Errorf("Get must not insert, Len() = %d", o.Len())
	}
}

func TestNestedAutoVivify(t *testing.T) {
	root := NewObject()
	info := root.GetOrInsert("pCreateInfo").Object()
	info.SetString("sType", "VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO")
	info.GetOrInsert("flags").SetString("1")
	regions := root.GetOrInsert("pRegions").Array()
	r, err := regions.At(1)
	if err != nil {
		t.Fatal(err)
	}
	r.Object().SetString("size", "64")

	got, err := Wrap(root).AppendJSON(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"pCreateInfo":{"sType":"VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO","flags":"1"},"pRegions":["",{"size":"64"}]}`
	if string(got) != want {
		t.Errorf("json = %s\nwant   %s", got, want)
	}
}

func TestArraySetGrows(t *testing.T) {
	a := NewArray()
	if err := a.Set(5, Str("v")); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", a.Len())
	}
	for i := 0; i < 5; i++ {
		v, ok := a.Get(i)
		if !ok || !v.IsEmpty() {
			t.Errorf("index %d: ok=%v empty=%v, want default-empty", i, ok, ok && v.IsEmpty())
		}
	}
	if v, _ := a.Get(5); v.String() != "v" {
		t.Errorf("index 5 = %q, want v", v.String())
	}

	if err := a.Set(2, Str("w")); err != nil {
		t.Fatal(err)
	}
	if a.Len() != 6 {
		t.Errorf("overwrite changed Len() to %d", a.Len())
	}
	if v, _ := a.Get(2); v.String() != "w" {
		t.Errorf("index 2 = %q, want w", v.String())
	}
}

func TestArrayBounds(t *testing.T) {
	a := NewArray()
	a.AppendString("x")
	for _, idx := range []int{-1, 1, 100} {
		if _, ok := a.Get(idx); ok {
			t.Errorf("Get(%d) found a value", idx)
		}
	}
	if err := a.Set(-1, Str("x")); !errors.Is(err, common.ErrInvalidFieldSpec) {
		t.Errorf("Set(-1) err = %v, want InvalidFieldSpec", err)
	}
}

func TestSlotConversion(t *testing.T) {
	v := Str("scalar")
	v.Object().SetString("k", "v")
	if v.Kind() != KindObject {
		t.Fatalf("Kind() = %v, want object", v.Kind())
	}
	if _, ok := v.AsArray(); ok {
		t.Error("AsArray succeeded on an object")
	}
	v.Array().AppendString("e")
	if v.Kind() != KindArray {
		t.Fatalf("Kind() = %v, want array", v.Kind())
	}
	if v.String() != "" {
		t.Errorf("String() on array = %q", v.String())
	}
}

func TestEqualAndClone(t *testing.T) {
	build := func(order ...string) *Value {
		o := NewObject()
		for _, k := range order {
			o.SetString(k, k+"!")
		}
		o.GetOrInsert("list").Array().AppendString("z")
		return Wrap(o)
	}

	tests := []struct {
		name string
		a, b *Value
		want bool
	}{
		{"same", build("a", "b"), build("a", "b"), true},
		{"order differs", build("a", "b"), build("b", "a"), false},
		{"kind differs", Str(""), NewObjectValue(), false},
		{"empty arrays", NewArrayValue(), NewArrayValue(), true},
		{"strings", Str("x"), Str("y"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}

	orig := build("a")
	c := orig.Clone()
	if !c.Equal(orig) {
		t.Fatal("clone differs from original")
	}
	c.Object().SetString("a", "changed")
	if o, _ := orig.AsObject(); o.slots["a"].String() != "a!" {
		t.Error("mutating clone changed original")
	}
}

func TestJSONEscaping(t *testing.T) {
	o := NewObject()
	o.SetString("quote\"key", "line\nbreak")
	got, err := o.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"quote\"key":"line\nbreak"}`
	if string(got) != want {
		t.Errorf("MarshalJSON = %s, want %s", got, want)
	}
}

func TestJSONKeepsAngleBrackets(t *testing.T) {
	got, err := Str("<unrecognized> (7)").MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if want := `"<unrecognized> (7)"`; string(got) != want {
		t.Errorf("MarshalJSON = %s, want %s", got, want)
	}
}

func TestParseJSON(t *testing.T) {
	in := `{"z":1,"a":{"flags":"0x1","list":[true,null,-2.5e3]},"m":"<x>"}`
	v, err := ParseJSON([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, v.Object().Keys()); diff != "" {
		t.Errorf("key order (-want +got):\n%s", diff)
	}
	got, err := v.AppendJSON(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"z":"1","a":{"flags":"0x1","list":["true","","-2.5e3"]},"m":"<x>"}`
	if string(got) != want {
		t.Errorf("round trip = %s, want %s", got, want)
	}

	s, err := ParseJSON([]byte(` "plain" `))
	if err != nil || s.Kind() != KindString || s.String() != "plain" {
		t.Errorf("scalar = %v, %v", s, err)
	}
}

func TestParseJSONErrors(t *testing.T) {
	for _, in := range []string{"", "{", `{"a":1`, `[1,2`, `{1:2}`, `{"a":1}}`, `"a" "b"`, `]`} {
		if _, err := ParseJSON([]byte(in)); !errors.Is(err, common.ErrInvalidParamVal) {
			t.Errorf("ParseJSON(%q) err = %v, want InvalidParamVal", in, err)
		}
	}
}
