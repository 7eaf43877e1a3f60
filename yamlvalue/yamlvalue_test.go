package yamlvalue

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/typolang/typo/values"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{name: "empty", input: "", want: nil},
		{name: "null", input: "null", want: nil},
		{name: "int", input: "42", want: 42},
		{name: "float", input: "1.5", want: 1.5},
		{name: "bool", input: "true", want: true},
		{name: "string", input: "hello", want: "hello"},
		{name: "quoted number", input: `"42"`, want: "42"},
		{name: "list", input: "[1, a]", want: []any{1, "a"}},
		{name: "tuple", input: "!tuple [1, a]", want: values.Tuple{1, "a"}},
		{name: "set", input: "!set [a, b, a]", want: map[any]struct{}{"a": {}, "b": {}}},
		{name: "mapping", input: "{a: 1, 2: [x]}", want: map[any]any{"a": 1, 2: []any{"x"}}},
		{name: "alias", input: "base: &b [1]\ncopy: *b", want: map[any]any{"base": []any{1}, "copy": []any{1}}},
		{name: "merge", input: "base: &b {x: 1, y: 2}\nmain: {<<: *b, y: 3}", want: map[any]any{
			"base": map[any]any{"x": 1, "y": 2},
			"main": map[any]any{"x": 1, "y": 3},
		}},
		{name: "merge list", input: "a: &a {x: 1}\nb: &b {x: 2, z: 2}\nc: {<<: [*a, *b]}", want: map[any]any{
			"a": map[any]any{"x": 1},
			"b": map[any]any{"x": 2, "z": 2},
			"c": map[any]any{"x": 1, "z": 2},
		}},
		{name: "nested tuple", input: "[!tuple [1.0, 2.0]]", want: []any{values.Tuple{1.0, 2.0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "tuple scalar", input: "!tuple 1", want: "line 1, column 1: !tuple must be applied to a sequence"},
		{name: "set mapping", input: "!set {a: 1}", want: "line 1, column 1: !set must be applied to a sequence"},
		{name: "unhashable member", input: "!set [[1]]", want: "line 1, column 7: unhashable set member"},
		{name: "unhashable key", input: "? [1]\n: x", want: "line 1, column 3: unhashable mapping key"},
		{name: "merge scalar", input: "<<: 1", want: "line 1, column 5: merge value must be a mapping or a sequence of mappings"},
		{name: "unknown tag", input: "!point 1", want: "line 1, column 1: unsupported tag !point"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			if err == nil {
				t.Fatalf("Expected error %q but got nil", tt.want)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("error has type %T, want *DecodeError", err)
			}
			if err.Error() != tt.want {
				t.Errorf("Decode() error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestDecodeSyntaxError(t *testing.T) {
	if _, err := Decode([]byte("[1, 2")); err == nil {
		t.Error("Decode() accepted an unterminated sequence")
	}
}

func TestDecodeNaNKey(t *testing.T) {
	got, err := Decode([]byte(".nan: 1\n.inf: 2\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	var keys []string
	for k, v := range values.Entries(got) {
		f, ok := k.(float64)
		if !ok {
			t.Fatalf("key %#v has type %T, want float64", k, k)
		}
		if math.IsNaN(f) && v != 1 {
			t.Errorf("value at NaN = %#v, want 1", v)
		}
		keys = append(keys, values.Repr(k))
	}
	if strings.Join(keys, ",") != "NaN,+Inf" {
		t.Errorf("Entries() keys = %v, want NaN,+Inf", keys)
	}
}
