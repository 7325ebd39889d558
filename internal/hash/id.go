// Package hash provides a fast, non-cryptographic structural fingerprint
// used to cache fungibility verdicts between reflect.Type pairs, so
// repeated registrations of the same type pair don't re-walk their shape.
package hash

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of an arbitrary string key.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// PairKey computes a stable fingerprint for an unordered comparison of two
// reflect.Type values, used as the fungibility cache key.
func PairKey(a, b reflect.Type) uint64 {
	sa, sb := shape(a), shape(b)
	if sa > sb {
		sa, sb = sb, sa
	}

	var out strings.Builder
	out.WriteString(sa)
	out.WriteByte('|')
	out.WriteString(sb)

	return ID(out.String())
}

// shape renders a type into a string that captures everything the
// fungibility engine cares about (kind, element types, field order) without
// depending on package-qualified type names, since two fungible types are
// often named differently across packages. A type met again inside its own
// rendering (a self-referential type) is written as "@cycle".
func shape(t reflect.Type) string {
	return shapeOf(t, make(map[reflect.Type]bool))
}

func shapeOf(t reflect.Type, visiting map[reflect.Type]bool) string {
	if t == nil {
		return "nil"
	}
	if visiting[t] {
		return "@cycle"
	}
	visiting[t] = true
	defer delete(visiting, t)

	switch t.Kind() { //nolint:exhaustive // default handles remaining kinds uniformly
	case reflect.Ptr:
		return "*" + shapeOf(t.Elem(), visiting)
	case reflect.Slice:
		return "[]" + shapeOf(t.Elem(), visiting)
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + shapeOf(t.Elem(), visiting)
	case reflect.Map:
		return "map[" + shapeOf(t.Key(), visiting) + "]" + shapeOf(t.Elem(), visiting)
	case reflect.Struct:
		var b strings.Builder
		b.WriteString("struct{")
		for i := range t.NumField() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(shapeOf(t.Field(i).Type, visiting))
		}
		b.WriteByte('}')
		return b.String()
	default:
		return t.Kind().String()
	}
}
