package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	require := require.New(t)

	var probe uint16 = 0x0102
	firstByte := (*[2]byte)(unsafe.Pointer(&probe))[0]

	switch firstByte {
	case 0x01:
		require.Equal(binary.BigEndian, CheckEndianness())
	case 0x02:
		require.Equal(binary.LittleEndian, CheckEndianness())
	default:
		require.Failf("unreachable", "unexpected probe byte %#x", firstByte)
	}
}

func TestCheckEndiannessIsStable(t *testing.T) {
	first := CheckEndianness()
	for range 100 {
		require.Equal(t, first, CheckEndianness())
	}
}

func TestIsNativeLittleAndBigEndianAreExclusive(t *testing.T) {
	little := IsNativeLittleEndian()
	big := IsNativeBigEndian()

	require.NotEqual(t, little, big)
	require.Equal(t, little, CheckEndianness() == binary.LittleEndian)
	require.Equal(t, big, CheckEndianness() == binary.BigEndian)
}

func TestCompareNativeEndian(t *testing.T) {
	if IsNativeLittleEndian() {
		require.True(t, CompareNativeEndian(GetLittleEndianEngine()))
		require.False(t, CompareNativeEndian(GetBigEndianEngine()))
	} else {
		require.True(t, CompareNativeEndian(GetBigEndianEngine()))
		require.False(t, CompareNativeEndian(GetLittleEndianEngine()))
	}
}

// TestWireCodecUsesLittleEndian pins down the one byte-order decision the
// wire format actually makes: every fixed-width numeric field (selectors,
// entry ids, lengths) is little-endian, regardless of host architecture.
func TestWireCodecUsesLittleEndian(t *testing.T) {
	engine := GetLittleEndianEngine()
	require.Implements(t, (*EndianEngine)(nil), engine)

	var selector uint32 = 0xCAFEBABE
	buf := engine.AppendUint32(nil, selector)
	require.Equal(t, []byte{0xBE, 0xBA, 0xFE, 0xCA}, buf)
	require.Equal(t, selector, engine.Uint32(buf))
}

func TestBigEndianEngineRoundTrip(t *testing.T) {
	engine := GetBigEndianEngine()
	require.Implements(t, (*EndianEngine)(nil), engine)

	var namespaceHash uint64 = 0x0102030405060708
	buf := engine.AppendUint64(nil, namespaceHash)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, buf)
	require.Equal(t, namespaceHash, engine.Uint64(buf))
}

func TestEndianEnginesDisagreeOnByteOrder(t *testing.T) {
	little := GetLittleEndianEngine()
	big := GetBigEndianEngine()

	for _, tc := range []struct {
		name  string
		write func(e EndianEngine) []byte
		read  func(e EndianEngine, b []byte) uint64
	}{
		{
			name:  "uint16",
			write: func(e EndianEngine) []byte { b := make([]byte, 2); e.PutUint16(b, 0x0102); return b },
			read:  func(e EndianEngine, b []byte) uint64 { return uint64(e.Uint16(b)) },
		},
		{
			name:  "uint32",
			write: func(e EndianEngine) []byte { b := make([]byte, 4); e.PutUint32(b, 0x01020304); return b },
			read:  func(e EndianEngine, b []byte) uint64 { return uint64(e.Uint32(b)) },
		},
		{
			name:  "uint64",
			write: func(e EndianEngine) []byte { b := make([]byte, 8); e.PutUint64(b, 0x0102030405060708); return b },
			read:  func(e EndianEngine, b []byte) uint64 { return e.Uint64(b) },
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			littleBytes := tc.write(little)
			bigBytes := tc.write(big)

			require.NotEqual(t, littleBytes, bigBytes)
			require.Equal(t, tc.read(little, littleBytes), tc.read(big, bigBytes))
		})
	}
}
