package rpc

import (
	"fmt"
	"reflect"

	"github.com/nop-go/nop/errs"
	"github.com/nop-go/nop/stream"
)

// Caller is the sending side of an Interface: it encodes a request frame
// (selector, argument tuple) and decodes the reply frame (the return
// value), leaving the actual transport (a socket, a pipe, an in-memory
// buffer) to the supplied Writer/Reader.
type Caller struct {
	iface *Interface
}

// NewCaller builds a Caller for iface.
func NewCaller(iface *Interface) *Caller {
	return &Caller{iface: iface}
}

// Call encodes a call to methodName with the given argument tuple (a value
// of the method's declared ArgsType), writes it to w, then reads and
// decodes the reply from r into a freshly allocated value of the method's
// declared ReturnType.
func (c *Caller) Call(methodName string, args any, w stream.Writer, r stream.Reader) (any, error) {
	spec, selector, ok := c.iface.Method(methodName)
	if !ok {
		return nil, fmt.Errorf("rpc: call %s.%s: %w", c.iface.Name, methodName, errs.ErrInvalidInterfaceMethod)
	}

	av := reflect.ValueOf(args)
	if av.Type() != spec.ArgsType {
		return nil, fmt.Errorf("rpc: call %s.%s: args type %s does not match declared %s", c.iface.Name, methodName, av.Type(), spec.ArgsType)
	}

	if err := writeSelector(w, c.iface.SelectorWidth, selector); err != nil {
		return nil, err
	}
	if err := spec.ArgsCoder.Write(av, w); err != nil {
		return nil, fmt.Errorf("rpc: call %s.%s: encode args: %w", c.iface.Name, methodName, err)
	}

	retPtr := reflect.New(spec.ReturnType)
	if err := spec.ReturnCoder.Read(retPtr.Elem(), r); err != nil {
		return nil, fmt.Errorf("rpc: call %s.%s: decode return: %w", c.iface.Name, methodName, err)
	}

	return retPtr.Elem().Interface(), nil
}
