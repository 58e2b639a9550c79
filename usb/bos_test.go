package usb_test

import (
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparky8512/fanctl/usb"
)

var (
	fanUUID   = uuid.MustParse("1ad9f93b-494c-4dda-a1e5-2e2bab181052")
	otherUUID = uuid.MustParse("d8dd60df-4589-4cc7-9cd2-659d9e648a9f")
)

// buildBOS assembles a BOS descriptor from pre-encoded capability blocks and
// fills in the header totals.
func buildBOS(caps ...[]byte) []byte {
	buf := []byte{usb.BOSHeaderLen, usb.BOSDescType, 0, 0, byte(len(caps))}
	for _, c := range caps {
		buf = append(buf, c...)
	}
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(buf)))
	return buf
}

func platformCap(id uuid.UUID, payload []byte) []byte {
	return usb.AppendPlatformCapability(nil, id, payload)
}

func withTypeTag(buf []byte, tag byte) []byte {
	buf[1] = tag
	return buf
}

func TestPlatformCapabilities(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want [][]byte
	}{
		{
			name: "single matching capability",
			buf:  buildBOS(platformCap(fanUUID, []byte{0, 1, 2})),
			want: [][]byte{{0, 1, 2}},
		},
		{
			name: "version and interface bytes pass through unchanged",
			buf:  buildBOS(platformCap(fanUUID, []byte{7, 1, 3, 0xaa})),
			want: [][]byte{{7, 1, 3, 0xaa}},
		},
		{
			name: "empty payload",
			buf:  buildBOS(platformCap(fanUUID, nil)),
			want: [][]byte{{}},
		},
		{
			name: "multiple matches on one device",
			buf: buildBOS(
				platformCap(fanUUID, []byte{0, 1, 2}),
				platformCap(fanUUID, []byte{0, 1, 4}),
			),
			want: [][]byte{{0, 1, 2}, {0, 1, 4}},
		},
		{
			name: "non-matching UUID skipped",
			buf: buildBOS(
				platformCap(otherUUID, []byte{9, 9, 9}),
				platformCap(fanUUID, []byte{0, 1, 2}),
			),
			want: [][]byte{{0, 1, 2}},
		},
		{
			name: "non-platform device capability skipped",
			buf: buildBOS(
				// USB 2.0 extension capability (type 0x02), 7 bytes.
				[]byte{7, usb.DeviceCapabilityDescType, 0x02, 0, 0x02, 0, 0},
				platformCap(fanUUID, []byte{0, 1, 2}),
			),
			want: [][]byte{{0, 1, 2}},
		},
		{
			name: "nil buffer",
			buf:  nil,
			want: nil,
		},
		{
			name: "buffer shorter than header",
			buf:  []byte{5, usb.BOSDescType, 4, 0},
			want: nil,
		},
		{
			name: "wrong descriptor type tag",
			buf:  withTypeTag(buildBOS(platformCap(fanUUID, []byte{0, 1, 2})), 0x02),
			want: nil,
		},
		{
			name: "bLength below header size",
			buf:  []byte{4, usb.BOSDescType, 5, 0, 0},
			want: nil,
		},
		{
			name: "zero capabilities declared",
			buf:  buildBOS(),
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := usb.PlatformCapabilities(tc.buf, fanUUID)
			require.Len(t, got, len(tc.want))
			for i, payload := range tc.want {
				assert.Equal(t, payload, got[i].Payload)
				assert.Equal(t, fanUUID, got[i].UUID)
			}
		})
	}
}

func TestPlatformCapabilitiesTruncated(t *testing.T) {
	valid := platformCap(fanUUID, []byte{0, 1, 2})

	t.Run("capability length exceeds remaining buffer", func(t *testing.T) {
		overlong := platformCap(fanUUID, []byte{0, 1, 2})
		overlong[0] = 0xff
		got := usb.PlatformCapabilities(buildBOS(valid, overlong), fanUUID)
		require.Len(t, got, 1)
		assert.Equal(t, []byte{0, 1, 2}, got[0].Payload)
	})

	t.Run("wTotalLength beyond actual buffer is clamped", func(t *testing.T) {
		buf := buildBOS(valid)
		binary.LittleEndian.PutUint16(buf[2:4], 0xffff)
		got := usb.PlatformCapabilities(buf, fanUUID)
		require.Len(t, got, 1)
	})

	t.Run("wTotalLength cuts off trailing capability", func(t *testing.T) {
		second := platformCap(fanUUID, []byte{0, 1, 9})
		buf := buildBOS(valid, second)
		// Declare the total to end right after the first capability.
		binary.LittleEndian.PutUint16(buf[2:4], uint16(usb.BOSHeaderLen+len(valid)))
		got := usb.PlatformCapabilities(buf, fanUUID)
		require.Len(t, got, 1)
		assert.Equal(t, []byte{0, 1, 2}, got[0].Payload)
	})

	t.Run("truncated mid-capability", func(t *testing.T) {
		buf := buildBOS(valid, platformCap(fanUUID, []byte{0, 1, 9}))
		buf = buf[:len(buf)-10]
		binary.LittleEndian.PutUint16(buf[2:4], uint16(len(buf)))
		got := usb.PlatformCapabilities(buf, fanUUID)
		require.Len(t, got, 1)
		assert.Equal(t, []byte{0, 1, 2}, got[0].Payload)
	})

	t.Run("num capabilities larger than descriptor list", func(t *testing.T) {
		buf := buildBOS(valid)
		buf[4] = 10
		got := usb.PlatformCapabilities(buf, fanUUID)
		require.Len(t, got, 1)
	})
}
