package fan

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.bug.st/serial"
)

const serialReadTimeout = 5 * time.Second

// SerialChannel drives the register protocol over the firmware's ASCII line
// protocol: "R<reg>" reads, "W<reg>,<value>" writes, every command echoed
// back by the device before its response.
type SerialChannel struct {
	port serial.Port
	name string
}

// OpenSerialChannel opens the named serial port. The baud rate is nominal;
// the device enumerates as USB CDC and ignores it.
func OpenSerialChannel(name string) (*SerialChannel, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	return &SerialChannel{port: port, name: name}, nil
}

// newSerialChannel wraps an already-open port; used by tests.
func newSerialChannel(port serial.Port, name string) *SerialChannel {
	return &SerialChannel{port: port, name: name}
}

// Name returns the port path the channel was opened on.
func (c *SerialChannel) Name() string { return c.name }

func (c *SerialChannel) ReadRegister(reg uint8, length int) (Value, error) {
	if _, err := fmt.Fprintf(c.port, "R%d\n", reg); err != nil {
		return Value{}, fmt.Errorf("send read command: %w", err)
	}
	// The device echoes the command line first; discard it.
	if _, err := c.readLine(); err != nil {
		return Value{}, err
	}
	line, err := c.readLine()
	if err != nil {
		return Value{}, err
	}
	if reg == RegSerialNumber {
		return TextValue(string(line)), nil
	}
	n, err := strconv.Atoi(string(line))
	if err != nil {
		return Value{}, fmt.Errorf("parse register %d response %q: %w", reg, line, err)
	}
	return NumberValue(n), nil
}

func (c *SerialChannel) WriteRegister(reg uint8, value uint16) error {
	if _, err := fmt.Fprintf(c.port, "W%d,%d\n", reg, value); err != nil {
		return fmt.Errorf("send write command: %w", err)
	}
	// Drain the echo so it does not pollute the next exchange. The firmware
	// sends no response payload for writes, so a timeout here is fine.
	if _, err := c.readLine(); err != nil && !errors.Is(err, ErrReadTimeout) {
		return err
	}
	return nil
}

func (c *SerialChannel) Close() error { return c.port.Close() }

// readLine collects bytes up to the next newline, stripping carriage
// returns. A transport read that returns no bytes means the timeout expired.
func (c *SerialChannel) readLine() ([]byte, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := c.port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			return nil, ErrReadTimeout
		}
		switch buf[0] {
		case '\n':
			return line, nil
		case '\r':
		default:
			line = append(line, buf[0])
		}
	}
}
