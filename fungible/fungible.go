// Package fungible implements the compile-time(-equivalent) equivalence
// check of spec §4.7: two local Go types are fungible iff they produce
// identical byte sequences for every value they jointly represent. The
// source language runs this check via SFINAE at template-instantiation
// time; Go has no such phase, so this package runs it once at program
// init — the earliest phase Go offers before any wire I/O can occur — and
// panics on a mismatch, the same "fail before the call, not during it"
// posture spec.md asks for.
//
// Verdicts are cached by an xxHash64 structural fingerprint of the two
// types (internal/hash.PairKey) so a type pair re-registered across many
// RPC interfaces or aggregate fields only walks its shape once.
package fungible

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/nop-go/nop/internal/hash"
)

var (
	cacheMu sync.Mutex
	cache   = make(map[uint64]bool)
)

// Check reports whether a and b are fungible, per spec §4.7's rules,
// consulting and populating the fingerprint cache.
func Check(a, b reflect.Type) bool {
	if a == b {
		return true
	}

	key := hash.PairKey(a, b)

	cacheMu.Lock()
	if v, ok := cache[key]; ok {
		cacheMu.Unlock()
		return v
	}
	cacheMu.Unlock()

	verdict := check(a, b, make(map[[2]reflect.Type]bool))

	cacheMu.Lock()
	cache[key] = verdict
	cacheMu.Unlock()

	return verdict
}

// MustCheck panics with a descriptive message if a and b are not fungible.
// No registration path in this module calls it: rpc.Dispatcher.Bind checks
// handlers through SignatureCompatible and returns an error instead.
func MustCheck(a, b reflect.Type) {
	if !Check(a, b) {
		panic(fmt.Sprintf("fungible: %s and %s are not fungible", a, b))
	}
}

func check(a, b reflect.Type, seen map[[2]reflect.Type]bool) bool {
	if a == b {
		return true
	}

	pairKey := [2]reflect.Type{a, b}
	if seen[pairKey] {
		// Recursive type currently being compared higher up the call
		// stack; assume consistent and let the outer frames decide.
		return true
	}
	seen[pairKey] = true

	// Value wrappers are fungible with their wrapped member type: unwrap
	// before falling into the kind-based rules below.
	if aw, ok := unwrap(a); ok {
		return check(aw, b, seen)
	}
	if bw, ok := unwrap(b); ok {
		return check(a, bw, seen)
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch a.Kind() { //nolint:exhaustive // default rejects unhandled kinds
	case reflect.Slice, reflect.Array:
		return check(a.Elem(), b.Elem(), seen)
	case reflect.Map:
		return check(a.Key(), b.Key(), seen) && check(a.Elem(), b.Elem(), seen)
	case reflect.Struct:
		return structsFungible(a, b, seen)
	case reflect.Ptr:
		return check(a.Elem(), b.Elem(), seen)
	case reflect.Bool,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	default:
		return false
	}
}

// unwrap reports whether t is a single-field struct (a value wrapper) and
// returns its sole field's type.
func unwrap(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() == reflect.Struct && t.NumField() == 1 {
		return t.Field(0).Type, true
	}
	return nil, false
}

// structsFungible implements "aggregates are fungible iff their member
// lists are pairwise fungible in order" — field names don't have to match,
// only the ordered shape.
func structsFungible(a, b reflect.Type, seen map[[2]reflect.Type]bool) bool {
	if a.NumField() != b.NumField() {
		return false
	}
	for i := range a.NumField() {
		if !check(a.Field(i).Type, b.Field(i).Type, seen) {
			return false
		}
	}
	return true
}

// Signature describes a function's return and argument types, used to
// check RPC handler bindings for fungibility against a method's declared
// signature (spec §4.7/§4.8).
type Signature struct {
	Return reflect.Type // nil for no return value
	Args   []reflect.Type
}

// SignatureCompatible reports whether handler is fungible-or-constructible
// with declared, ignoring handler's leading passthrough argument types
// (whose count is fixed per dispatch table).
func SignatureCompatible(declared, handler Signature, passthrough int) bool {
	if passthrough < 0 || passthrough > len(handler.Args) {
		return false
	}
	handlerArgs := handler.Args[passthrough:]
	if len(declared.Args) != len(handlerArgs) {
		return false
	}
	for i := range declared.Args {
		if !Check(declared.Args[i], handlerArgs[i]) {
			return false
		}
	}

	switch {
	case declared.Return == nil && handler.Return == nil:
		return true
	case declared.Return == nil || handler.Return == nil:
		return false
	default:
		return Check(declared.Return, handler.Return)
	}
}
