// Package rpc implements the transport-agnostic method-dispatch layer of
// spec §4.8: a method selector derived by SipHash over the method and
// interface names, a request frame of (selector, argument tuple), a reply
// frame of the return value, and a dispatch table of (selector, handler)
// bindings validated against the interface's declared signature via the
// fungible package.
//
// Handler binding is configured step by step: a Dispatcher is built once
// over an Interface, then configured by calling Bind for each method, the
// same "build once from a declarative description"
// idiom aggregate.Define and table.DefineSchema use for reflect-derived
// plans.
package rpc

import (
	"fmt"
	"reflect"

	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/fungible"
	"github.com/nop-go/nop/internal/siphash"
)

// MethodSpec statically describes one RPC method's signature: its argument
// tuple type and its return type, each resolved to a Coder.
type MethodSpec struct {
	Name        string
	ArgsType    reflect.Type
	ArgsCoder   codec.Coder
	ReturnType  reflect.Type
	ReturnCoder codec.Coder

	// explicitSelector, if non-zero, overrides the SipHash-derived selector.
	explicitSelector uint64
}

// DeclareMethod builds a MethodSpec for a method named methodName whose
// argument tuple is Args (typically an aggregate struct or a codec.Tuple2..4
// pairing) and whose return type is Ret (often a sumtype.Result[E,T] for a
// fallible method).
func DeclareMethod[Args, Ret any](methodName string) MethodSpec {
	argsType := reflect.TypeFor[Args]()
	retType := reflect.TypeFor[Ret]()
	return MethodSpec{
		Name:        methodName,
		ArgsType:    argsType,
		ArgsCoder:   codec.MustFor(argsType),
		ReturnType:  retType,
		ReturnCoder: codec.MustFor(retType),
	}
}

// WithSelector overrides a method's SipHash-derived selector with an
// explicit value, per spec §4.8 ("the user may assign an explicit
// selector").
func (m MethodSpec) WithSelector(selector uint64) MethodSpec {
	m.explicitSelector = selector
	return m
}

// signature describes the call shape a handler must match: one argument
// carrying the method's full ArgsType struct (handlers take the tuple as a
// single value, not unpacked positionally) plus the declared return type.
func (m MethodSpec) signature() fungible.Signature {
	return fungible.Signature{Return: m.ReturnType, Args: []reflect.Type{m.ArgsType}}
}

// Interface is a named, closed set of methods with a resolved selector per
// method (spec §4.8: "the selectors of all methods of one interface must
// be unique").
type Interface struct {
	Name          string
	SelectorWidth int // 64 or 32

	methods    []boundMethod
	bySelector map[uint64]*boundMethod
	byName     map[string]*boundMethod
}

// boundMethod pairs a declared MethodSpec with its resolved wire selector.
type boundMethod struct {
	spec     MethodSpec
	selector uint64
}

// NewInterface builds an Interface, computing each method's selector (or
// validating its explicit override) and rejecting duplicates.
func NewInterface(name string, selectorWidth int, methods ...MethodSpec) (*Interface, error) {
	if selectorWidth != 64 && selectorWidth != 32 {
		return nil, fmt.Errorf("rpc: interface %s: selector width must be 64 or 32, got %d", name, selectorWidth)
	}

	iface := &Interface{
		Name:          name,
		SelectorWidth: selectorWidth,
		methods:       make([]boundMethod, 0, len(methods)),
		bySelector:    make(map[uint64]*boundMethod, len(methods)),
		byName:        make(map[string]*boundMethod, len(methods)),
	}

	for _, m := range methods {
		selector := m.explicitSelector
		if selector == 0 {
			if selectorWidth == 32 {
				selector = uint64(siphash.SelectorHash32(name, m.Name))
			} else {
				selector = siphash.SelectorHash64(name, m.Name)
			}
		}
		if selectorWidth == 32 {
			selector &= 0xFFFFFFFF
		}

		if _, dup := iface.bySelector[selector]; dup {
			return nil, fmt.Errorf("rpc: interface %s: method %s: %w", name, m.Name, errs.ErrDuplicateSelector)
		}

		iface.methods = append(iface.methods, boundMethod{spec: m, selector: selector})
		ptr := &iface.methods[len(iface.methods)-1]
		iface.bySelector[selector] = ptr
		iface.byName[m.Name] = ptr
	}

	return iface, nil
}

// Method looks up a declared method by name, returning its spec and
// resolved selector.
func (i *Interface) Method(name string) (MethodSpec, uint64, bool) {
	m, ok := i.byName[name]
	if !ok {
		return MethodSpec{}, 0, false
	}
	return m.spec, m.selector, true
}
