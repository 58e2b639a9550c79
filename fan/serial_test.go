package fan

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakeFirmware emulates the device end of the ASCII line protocol: every
// command line is echoed back, reads answer with "<value>\r\n". An empty
// receive buffer reads as zero bytes, which is how the real transport
// reports a timeout.
type fakeFirmware struct {
	serial.Port // unimplemented methods panic if reached

	regs   map[uint8]int
	serial string
	mute   bool // swallow commands without responding

	cmd bytes.Buffer // partial command line from the host
	rx  bytes.Buffer // bytes queued for the host
}

func newFakeFirmware() *fakeFirmware {
	return &fakeFirmware{
		regs:   map[uint8]int{RegPWMPeriod: 640},
		serial: "FAN0042",
	}
}

func (f *fakeFirmware) Write(p []byte) (int, error) {
	for _, b := range p {
		if b != '\n' {
			f.cmd.WriteByte(b)
			continue
		}
		line := f.cmd.String()
		f.cmd.Reset()
		if f.mute {
			continue
		}
		f.rx.WriteString(line)
		f.rx.WriteString("\r\n")
		f.handle(line)
	}
	return len(p), nil
}

func (f *fakeFirmware) handle(line string) {
	switch {
	case strings.HasPrefix(line, "R"):
		reg, _ := strconv.Atoi(line[1:])
		if uint8(reg) == RegSerialNumber {
			fmt.Fprintf(&f.rx, "%s\r\n", f.serial)
			return
		}
		fmt.Fprintf(&f.rx, "%d\r\n", f.regs[uint8(reg)])
	case strings.HasPrefix(line, "W"):
		parts := strings.SplitN(line[1:], ",", 2)
		reg, _ := strconv.Atoi(parts[0])
		value, _ := strconv.Atoi(parts[1])
		f.regs[uint8(reg)] = value
	}
}

func (f *fakeFirmware) Read(p []byte) (int, error) {
	if f.rx.Len() == 0 {
		return 0, nil // timeout
	}
	return f.rx.Read(p)
}

func (f *fakeFirmware) Close() error { return nil }

func TestSerialReadRegister(t *testing.T) {
	fw := newFakeFirmware()
	ch := newSerialChannel(fw, "/dev/ttyACM0")

	v, err := ch.ReadRegister(RegPWMPeriod, 2)
	require.NoError(t, err)
	assert.Equal(t, Number, v.Kind)
	assert.Equal(t, 640, v.Num)

	// The echo must not leak into the next exchange.
	fw.regs[RegTachometer1] = 1320
	v, err = ch.ReadRegister(RegTachometer1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1320, v.Num)
}

func TestSerialReadSerialNumber(t *testing.T) {
	fw := newFakeFirmware()
	ch := newSerialChannel(fw, "/dev/ttyACM0")

	v, err := ch.ReadRegister(RegSerialNumber, serialNumberLen)
	require.NoError(t, err)
	assert.Equal(t, Text, v.Kind)
	assert.Equal(t, "FAN0042", v.Text)
}

func TestSerialWriteRegister(t *testing.T) {
	fw := newFakeFirmware()
	ch := newSerialChannel(fw, "/dev/ttyACM0")

	require.NoError(t, ch.WriteRegister(RegPWMDuty1, 320))
	assert.Equal(t, 320, fw.regs[RegPWMDuty1])

	// A read right after a write still sees a clean line stream.
	v, err := ch.ReadRegister(RegPWMDuty1, 2)
	require.NoError(t, err)
	assert.Equal(t, 320, v.Num)
}

func TestSerialReadTimeout(t *testing.T) {
	fw := newFakeFirmware()
	fw.mute = true
	ch := newSerialChannel(fw, "/dev/ttyACM0")

	_, err := ch.ReadRegister(RegPWMPeriod, 2)
	assert.ErrorIs(t, err, ErrReadTimeout)
}

func TestSerialWriteToleratesMissingEcho(t *testing.T) {
	fw := newFakeFirmware()
	fw.mute = true
	ch := newSerialChannel(fw, "/dev/ttyACM0")

	// Writes have no response payload; a silent device is not an error.
	assert.NoError(t, ch.WriteRegister(RegLEDControl, 1))
}

func TestSerialGarbageResponse(t *testing.T) {
	fw := newFakeFirmware()
	fw.rx.WriteString("\nnot-a-number\n")
	fw.mute = true
	ch := newSerialChannel(fw, "/dev/ttyACM0")

	_, err := ch.ReadRegister(RegPWMPeriod, 2)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrReadTimeout)
}

func TestSerialDeviceFacade(t *testing.T) {
	fw := newFakeFirmware()
	dev := NewSerialDevice(newSerialChannel(fw, "/dev/ttyACM0"))

	// Serial channels cannot report a capability version and always pass.
	require.NoError(t, dev.CheckVersion())
	assert.Equal(t, "/dev/ttyACM0", dev.String())

	require.NoError(t, dev.SetSpeed(50, 0))
	assert.Equal(t, 320, fw.regs[RegPWMDuty1])
}
