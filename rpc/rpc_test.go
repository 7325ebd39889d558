package rpc

import (
	"reflect"
	"testing"

	"github.com/nop-go/nop/aggregate"
	"github.com/nop-go/nop/stream"
	"github.com/nop-go/nop/sumtype"
	"github.com/stretchr/testify/require"
)

func reflectValueOf(v any) reflect.Value { return reflect.ValueOf(v) }

func newReturnPtr(spec MethodSpec) reflect.Value { return reflect.New(spec.ReturnType) }

type addArgs struct {
	A int32
	B int32
}

type addErrorCode int32

const errDivideByZero addErrorCode = 1

func init() {
	aggregate.Define[addArgs]()
}

func buildAddInterface(t *testing.T) *Interface {
	t.Helper()
	spec := DeclareMethod[addArgs, sumtype.Result[addErrorCode, int32]]("Add")
	iface, err := NewInterface("Calculator", 64, spec)
	require.NoError(t, err)
	return iface
}

// dispatchOnce drives one request/reply round trip between a hand-built
// request (selector, then argument tuple, the framing Caller.Call writes)
// and a Dispatcher, entirely in memory: the request is written to
// one buffer, dispatched, and the reply decoded from a second buffer.
func dispatchOnce(t *testing.T, iface *Interface, d *Dispatcher, methodName string, args any) any {
	t.Helper()
	require := require.New(t)

	spec, selector, ok := iface.Method(methodName)
	require.True(ok)

	req := stream.NewSliceWriter()
	defer req.Release()
	require.NoError(writeSelector(req, iface.SelectorWidth, selector))
	require.NoError(spec.ArgsCoder.Write(reflectValueOf(args), req))

	reqReader := stream.NewSliceReader(req.Bytes(), nil)
	reply := stream.NewSliceWriter()
	defer reply.Release()
	require.NoError(d.Dispatch(nil, reqReader, reply))

	replyPtr := newReturnPtr(spec)
	replyReader := stream.NewSliceReader(reply.Bytes(), nil)
	require.NoError(spec.ReturnCoder.Read(replyPtr.Elem(), replyReader))

	return replyPtr.Elem().Interface()
}

func TestDispatchRoundTrip(t *testing.T) {
	require := require.New(t)
	iface := buildAddInterface(t)

	d := NewDispatcher(iface)
	require.NoError(d.Bind("Add", func(args addArgs) sumtype.Result[addErrorCode, int32] {
		return sumtype.Ok[addErrorCode, int32](args.A + args.B)
	}))

	reply := dispatchOnce(t, iface, d, "Add", addArgs{A: 2, B: 3})
	result := reply.(sumtype.Result[addErrorCode, int32]) //nolint:forcetypeassert
	require.False(result.IsError)
	require.Equal(int32(5), result.Value)
}

func TestDispatchUnknownMethodRejected(t *testing.T) {
	iface := buildAddInterface(t)
	d := NewDispatcher(iface)
	require.Error(t, d.Bind("Subtract", func(args addArgs) sumtype.Result[addErrorCode, int32] {
		return sumtype.Ok[addErrorCode, int32](0)
	}))
}

func TestDispatchDuplicateBindingRejected(t *testing.T) {
	iface := buildAddInterface(t)
	d := NewDispatcher(iface)
	handler := func(args addArgs) sumtype.Result[addErrorCode, int32] {
		return sumtype.Ok[addErrorCode, int32](args.A + args.B)
	}
	require.NoError(t, d.Bind("Add", handler))
	require.Error(t, d.Bind("Add", handler))
}

func TestDispatchIncompatibleHandlerRejected(t *testing.T) {
	iface := buildAddInterface(t)
	d := NewDispatcher(iface)
	err := d.Bind("Add", func(s string) sumtype.Result[addErrorCode, int32] {
		return sumtype.Ok[addErrorCode, int32](0)
	})
	require.Error(t, err)
}

func TestDuplicateSelectorRejected(t *testing.T) {
	a := DeclareMethod[addArgs, sumtype.Result[addErrorCode, int32]]("Add").WithSelector(1)
	b := DeclareMethod[addArgs, sumtype.Result[addErrorCode, int32]]("Subtract").WithSelector(1)
	_, err := NewInterface("Calculator2", 64, a, b)
	require.Error(t, err)
}

func TestExplicitSelectorHonored(t *testing.T) {
	m := DeclareMethod[addArgs, sumtype.Result[addErrorCode, int32]]("Add").WithSelector(777)
	iface, err := NewInterface("Calculator3", 64, m)
	require.NoError(t, err)

	_, selector, ok := iface.Method("Add")
	require.True(t, ok)
	require.Equal(t, uint64(777), selector)
}

func TestDispatchHandBuiltRequestUsesBoundHandler(t *testing.T) {
	require := require.New(t)
	iface := buildAddInterface(t)
	spec, selector, ok := iface.Method("Add")
	require.True(ok)

	d := NewDispatcher(iface)
	require.NoError(d.Bind("Add", func(args addArgs) sumtype.Result[addErrorCode, int32] {
		return sumtype.Ok[addErrorCode, int32](args.A * args.B)
	}))

	req := stream.NewSliceWriter()
	defer req.Release()
	require.NoError(writeSelector(req, iface.SelectorWidth, selector))
	require.NoError(spec.ArgsCoder.Write(reflectValueOf(addArgs{A: 4, B: 5}), req))

	reqReader := stream.NewSliceReader(req.Bytes(), nil)
	reply := stream.NewSliceWriter()
	defer reply.Release()
	require.NoError(d.Dispatch(nil, reqReader, reply))

	replyPtr := newReturnPtr(spec)
	replyReader := stream.NewSliceReader(reply.Bytes(), nil)
	require.NoError(spec.ReturnCoder.Read(replyPtr.Elem(), replyReader))
	result := replyPtr.Elem().Interface().(sumtype.Result[addErrorCode, int32]) //nolint:forcetypeassert
	require.Equal(int32(20), result.Value)
}
