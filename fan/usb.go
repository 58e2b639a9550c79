package fan

import (
	"encoding/binary"
	"fmt"

	"github.com/google/gousb"
)

// Vendor control transfer request types (direction | vendor | interface).
const (
	usbReadReqType  uint8 = 0xC1
	usbWriteReqType uint8 = 0x41
)

// USBChannel drives the register protocol with vendor control transfers
// against one interface of an open USB device.
type USBChannel struct {
	dev   *gousb.Device
	iface uint16

	// When several vendor interfaces share one physical device, only the
	// channel created first owns the handle.
	owns bool
}

// NewUSBChannel wraps an open device handle. The channel takes ownership of
// the handle and releases it on Close.
func NewUSBChannel(dev *gousb.Device, iface int) *USBChannel {
	return &USBChannel{dev: dev, iface: uint16(iface), owns: true}
}

// ReadRegister issues a device-to-host vendor transfer with the register in
// bRequest and a length-byte data stage. Two-byte responses decode as
// little-endian; the serial-number register decodes as ASCII; anything else
// comes back raw.
func (c *USBChannel) ReadRegister(reg uint8, length int) (Value, error) {
	buf := make([]byte, length)
	n, err := c.dev.Control(usbReadReqType, reg, 0, c.iface, buf)
	if err != nil {
		return Value{}, fmt.Errorf("read register 0x%02x: %w", reg, err)
	}
	return decodeUSBRegister(reg, buf[:n]), nil
}

// WriteRegister issues the mirrored host-to-device transfer: register in
// bRequest, value in wValue, no data stage.
func (c *USBChannel) WriteRegister(reg uint8, value uint16) error {
	if _, err := c.dev.Control(usbWriteReqType, reg, value, c.iface, nil); err != nil {
		return fmt.Errorf("write register 0x%02x: %w", reg, err)
	}
	return nil
}

func (c *USBChannel) Close() error {
	if !c.owns {
		return nil
	}
	return c.dev.Close()
}

func decodeUSBRegister(reg uint8, data []byte) Value {
	if reg == RegSerialNumber {
		return TextValue(string(data))
	}
	if len(data) == 2 {
		return NumberValue(int(binary.LittleEndian.Uint16(data)))
	}
	return RawValue(data)
}
