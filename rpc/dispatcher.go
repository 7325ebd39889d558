package rpc

import (
	"fmt"
	"reflect"

	"github.com/nop-go/nop/codec"
	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/fungible"
	"github.com/nop-go/nop/stream"
)

// binding pairs a bound method with its reflected handler.
type binding struct {
	spec    MethodSpec
	handler reflect.Value
}

// Dispatcher is the receiving side of an Interface: it decodes a selector
// off the wire, decodes the matching method's argument tuple, invokes the
// bound Go handler, and encodes its return value.
//
// A handler's signature is func(passthrough..., Args) Ret, where passthrough
// mirrors the Dispatcher's declared passthrough types (e.g. a context.Context
// or a connection handle threaded through every call but never put on the
// wire) and Ret is fungible with the method's declared return type. A
// fallible method expresses failure through its own Ret type (typically a
// sumtype.Result[E,T]), not a second Go error return.
type Dispatcher struct {
	iface            *Interface
	passthroughTypes []reflect.Type
	bindings         map[uint64]binding
}

// NewDispatcher builds a Dispatcher for iface. passthroughTypes declares the
// leading argument types every handler accepts ahead of its Args struct.
func NewDispatcher(iface *Interface, passthroughTypes ...reflect.Type) *Dispatcher {
	return &Dispatcher{
		iface:            iface,
		passthroughTypes: passthroughTypes,
		bindings:         make(map[uint64]binding),
	}
}

// Bind registers handler as the implementation of methodName. handler must
// be a func whose signature is compatible with the method's declared
// signature (modulo the Dispatcher's passthrough arguments), validated
// structurally via the fungible package rather than by exact Go type
// identity.
func (d *Dispatcher) Bind(methodName string, handler any) error {
	spec, selector, ok := d.iface.Method(methodName)
	if !ok {
		return fmt.Errorf("rpc: bind %s.%s: %w", d.iface.Name, methodName, errs.ErrInvalidInterfaceMethod)
	}
	if _, dup := d.bindings[selector]; dup {
		return fmt.Errorf("rpc: bind %s.%s: %w", d.iface.Name, methodName, errs.ErrDuplicateBinding)
	}

	hv := reflect.ValueOf(handler)
	if hv.Kind() != reflect.Func {
		return fmt.Errorf("rpc: bind %s.%s: handler is not a func", d.iface.Name, methodName)
	}
	ht := hv.Type()
	if ht.IsVariadic() {
		return fmt.Errorf("rpc: bind %s.%s: handler must not be variadic", d.iface.Name, methodName)
	}

	handlerArgs := make([]reflect.Type, ht.NumIn())
	for i := range handlerArgs {
		handlerArgs[i] = ht.In(i)
	}
	var handlerReturn reflect.Type
	switch ht.NumOut() {
	case 0:
		handlerReturn = nil
	case 1:
		handlerReturn = ht.Out(0)
	default:
		return fmt.Errorf("rpc: bind %s.%s: handler must return at most one value", d.iface.Name, methodName)
	}

	declared := spec.signature()
	handlerSig := fungible.Signature{Return: handlerReturn, Args: handlerArgs}
	if !fungible.SignatureCompatible(declared, handlerSig, len(d.passthroughTypes)) {
		return fmt.Errorf("rpc: bind %s.%s: handler signature is not fungible with the declared method signature", d.iface.Name, methodName)
	}

	d.bindings[selector] = binding{spec: spec, handler: hv}
	return nil
}

// Dispatch reads one request frame (selector, argument tuple) from r,
// invokes the bound handler with passthrough prepended, and writes the
// reply frame (the handler's return value) to w.
func (d *Dispatcher) Dispatch(passthrough []any, r stream.Reader, w stream.Writer) error {
	selector, err := readSelector(r, d.iface.SelectorWidth)
	if err != nil {
		return err
	}

	b, ok := d.bindings[selector]
	if !ok {
		return fmt.Errorf("rpc: dispatch %s: selector %#x: %w", d.iface.Name, selector, errs.ErrInvalidInterfaceMethod)
	}

	argsPtr := reflect.New(b.spec.ArgsType)
	if err := b.spec.ArgsCoder.Read(argsPtr.Elem(), r); err != nil {
		return fmt.Errorf("rpc: dispatch %s.%s: decode args: %w", d.iface.Name, b.spec.Name, err)
	}

	in := make([]reflect.Value, 0, len(passthrough)+1)
	for _, p := range passthrough {
		in = append(in, reflect.ValueOf(p))
	}
	in = append(in, argsPtr.Elem())

	out := b.handler.Call(in)
	if len(out) == 0 {
		return fmt.Errorf("rpc: dispatch %s.%s: handler declared no return value", d.iface.Name, b.spec.Name)
	}

	return b.spec.ReturnCoder.Write(out[0], w)
}

// readSelector reads a selector of the interface's declared width.
func readSelector(r stream.Reader, width int) (uint64, error) {
	if width == 32 {
		var v uint32
		if err := (codec.Uint32{}).Read(&v, r); err != nil {
			return 0, err
		}
		return uint64(v), nil
	}
	var v uint64
	if err := (codec.Uint64{}).Read(&v, r); err != nil {
		return 0, err
	}
	return v, nil
}

// writeSelector writes a selector of the interface's declared width.
func writeSelector(w stream.Writer, width int, selector uint64) error {
	if width == 32 {
		return (codec.Uint32{}).Write(uint32(selector), w)
	}
	return (codec.Uint64{}).Write(selector, w)
}
