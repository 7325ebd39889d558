package fungible

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type pointA struct {
	X int32
	Y int32
}

type pointB struct {
	Lat int32
	Lng int32
}

type pointWithExtra struct {
	X int32
	Y int32
	Z int32
}

type wrappedInt struct {
	V int32
}

func TestIdenticalTypesAreFungible(t *testing.T) {
	require.True(t, Check(reflect.TypeFor[pointA](), reflect.TypeFor[pointA]()))
}

func TestSameShapeDifferentNamesAreFungible(t *testing.T) {
	require.True(t, Check(reflect.TypeFor[pointA](), reflect.TypeFor[pointB]()))
}

func TestDifferentFieldCountIsNotFungible(t *testing.T) {
	require.False(t, Check(reflect.TypeFor[pointA](), reflect.TypeFor[pointWithExtra]()))
}

func TestDifferentKindIsNotFungible(t *testing.T) {
	require.False(t, Check(reflect.TypeFor[int32](), reflect.TypeFor[string]()))
}

func TestValueWrapperUnwrapsForComparison(t *testing.T) {
	require.True(t, Check(reflect.TypeFor[wrappedInt](), reflect.TypeFor[int32]()))
}

func TestSliceAndArrayElementWise(t *testing.T) {
	require.True(t, Check(reflect.TypeFor[[]int32](), reflect.TypeFor[[]int32]()))
	require.False(t, Check(reflect.TypeFor[[]int32](), reflect.TypeFor[[]string]()))
}

func TestMapKeyAndElem(t *testing.T) {
	require.True(t, Check(reflect.TypeFor[map[string]int32](), reflect.TypeFor[map[string]int32]()))
	require.False(t, Check(reflect.TypeFor[map[string]int32](), reflect.TypeFor[map[int32]int32]()))
}

func TestMustCheckPanicsOnMismatch(t *testing.T) {
	require.Panics(t, func() {
		MustCheck(reflect.TypeFor[pointA](), reflect.TypeFor[pointWithExtra]())
	})
}

func TestRecursiveTypeDoesNotInfiniteLoop(t *testing.T) {
	type node struct {
		Next *node
		V    int32
	}
	type otherNode struct {
		Next *otherNode
		V    int32
	}
	require.True(t, Check(reflect.TypeFor[node](), reflect.TypeFor[otherNode]()))
}

func TestSignatureCompatibleIgnoresPassthrough(t *testing.T) {
	declared := Signature{
		Return: reflect.TypeFor[int32](),
		Args:   []reflect.Type{reflect.TypeFor[pointA]()},
	}
	handler := Signature{
		Return: reflect.TypeFor[int32](),
		Args:   []reflect.Type{reflect.TypeFor[string](), reflect.TypeFor[pointB]()},
	}
	require.True(t, SignatureCompatible(declared, handler, 1))
	require.False(t, SignatureCompatible(declared, handler, 0))
}

func TestSignatureCompatibleReturnMismatch(t *testing.T) {
	declared := Signature{Return: reflect.TypeFor[int32](), Args: nil}
	handler := Signature{Return: reflect.TypeFor[string](), Args: nil}
	require.False(t, SignatureCompatible(declared, handler, 0))
}

func TestSignatureCompatibleNoReturn(t *testing.T) {
	declared := Signature{Return: nil, Args: nil}
	handler := Signature{Return: nil, Args: nil}
	require.True(t, SignatureCompatible(declared, handler, 0))
}
