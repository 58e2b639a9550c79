// Package usb contains helpers for parsing USB descriptors.
package usb

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// USB descriptor type constants
const (
	BOSDescType              = 0x0f
	DeviceCapabilityDescType = 0x10
)

// Device capability types carried inside a BOS descriptor
const (
	CapabilityTypePlatform = 0x05
)

// Descriptor lengths in bytes (fixed values from USB spec)
const (
	BOSHeaderLen         = 5
	PlatformCapHeaderLen = 20
)

// PlatformCapability is one platform capability record extracted from a BOS
// descriptor. Payload holds the vendor bytes that follow the 16-byte UUID
// field; it is a copy and remains valid after the source buffer is reused.
type PlatformCapability struct {
	UUID    uuid.UUID
	Payload []byte
}

// PlatformCapabilities walks the BOS descriptor in buf and returns one
// record per platform capability whose UUID equals target.
//
// Malformed input is never an error: the walk stops at the first descriptor
// that fails validation and returns whatever was collected before it. A
// buffer that is not a BOS descriptor at all yields nil. Every returned
// payload has been bounds-checked against buf.
func PlatformCapabilities(buf []byte, target uuid.UUID) []PlatformCapability {
	if len(buf) < BOSHeaderLen || buf[0] < BOSHeaderLen || buf[1] != BOSDescType {
		return nil
	}
	end := int(binary.LittleEndian.Uint16(buf[2:4]))
	if end > len(buf) {
		// Never trust wTotalLength beyond the bytes actually transferred.
		end = len(buf)
	}

	var caps []PlatformCapability
	pos := BOSHeaderLen
	for numCaps := int(buf[4]); numCaps > 0; numCaps-- {
		remain := end - pos
		if remain < 3 || int(buf[pos]) < 3 || buf[pos+1] != DeviceCapabilityDescType {
			break
		}
		length := int(buf[pos])
		if length > remain {
			break
		}
		if buf[pos+2] == CapabilityTypePlatform && length >= PlatformCapHeaderLen {
			if id := uuidFromLE(buf[pos+4 : pos+20]); id == target {
				payload := make([]byte, length-PlatformCapHeaderLen)
				copy(payload, buf[pos+PlatformCapHeaderLen:pos+length])
				caps = append(caps, PlatformCapability{UUID: id, Payload: payload})
			}
		}
		pos += length
	}
	return caps
}

// uuidFromLE decodes the 16-byte mixed-endian GUID layout used by USB
// platform capability descriptors: the first three fields are stored
// little-endian, the final eight bytes as-is.
func uuidFromLE(b []byte) uuid.UUID {
	var id uuid.UUID
	id[0], id[1], id[2], id[3] = b[3], b[2], b[1], b[0]
	id[4], id[5] = b[5], b[4]
	id[6], id[7] = b[7], b[6]
	copy(id[8:], b[8:16])
	return id
}

// AppendPlatformCapability appends a platform capability descriptor for id
// with the given vendor payload to a BOS descriptor under construction. The
// caller patches the BOS header totals afterwards.
func AppendPlatformCapability(buf []byte, id uuid.UUID, payload []byte) []byte {
	buf = append(buf, byte(PlatformCapHeaderLen+len(payload)), DeviceCapabilityDescType, CapabilityTypePlatform, 0)
	buf = append(buf, id[3], id[2], id[1], id[0], id[5], id[4], id[7], id[6])
	buf = append(buf, id[8:16]...)
	return append(buf, payload...)
}
