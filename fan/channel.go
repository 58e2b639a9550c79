package fan

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrReadTimeout reports that the device produced no response bytes within
// the transport's read timeout.
var ErrReadTimeout = errors.New("timed out waiting for register data")

// RegisterChannel is the transport-independent register protocol. A channel
// owns its underlying transport handle for its lifetime; it is not safe for
// concurrent use and must be closed on every exit path.
type RegisterChannel interface {
	// ReadRegister reads reg. length is the data stage size for transports
	// that need one: 2 for numeric registers, 20 for the serial-number
	// register (see ReadLength).
	ReadRegister(reg uint8, length int) (Value, error)
	// WriteRegister writes value to reg.
	WriteRegister(reg uint8, value uint16) error
	Close() error
}

// ValueKind discriminates the decoded forms of a register read.
type ValueKind int

const (
	// Number is a numeric register value (2-byte reads, or any serial
	// response that parses as an integer).
	Number ValueKind = iota
	// Text is an ASCII register value (the serial-number register).
	Text
	// Raw is an undecoded byte sequence (USB reads of other lengths).
	Raw
)

// Value is one decoded register read. Both transports produce the same
// Value for the same register state.
type Value struct {
	Kind ValueKind
	Num  int
	Text string
	Raw  []byte
}

func NumberValue(n int) Value  { return Value{Kind: Number, Num: n} }
func TextValue(s string) Value { return Value{Kind: Text, Text: s} }
func RawValue(b []byte) Value  { return Value{Kind: Raw, Raw: b} }

func (v Value) String() string {
	switch v.Kind {
	case Text:
		return v.Text
	case Raw:
		return fmt.Sprintf("%x", v.Raw)
	default:
		return strconv.Itoa(v.Num)
	}
}

// Tracer receives every register transfer a TraceChannel forwards, for
// wire-level debugging.
type Tracer interface {
	Transfer(op string, reg uint8, detail string, err error)
}

// TraceChannel wraps another channel and reports each transfer to a Tracer.
type TraceChannel struct {
	Channel RegisterChannel
	Tracer  Tracer
}

func (t *TraceChannel) ReadRegister(reg uint8, length int) (Value, error) {
	v, err := t.Channel.ReadRegister(reg, length)
	t.Tracer.Transfer("read", reg, v.String(), err)
	return v, err
}

func (t *TraceChannel) WriteRegister(reg uint8, value uint16) error {
	err := t.Channel.WriteRegister(reg, value)
	t.Tracer.Transfer("write", reg, strconv.Itoa(int(value)), err)
	return err
}

func (t *TraceChannel) Close() error { return t.Channel.Close() }
