package fan

import (
	"fmt"
	"math"
)

// Protocol version this package requires from the vendor interface. The
// major must match exactly; the device minor must be at least VersionMinor.
const (
	VersionMajor = 1
	VersionMinor = 0
)

// Info describes one matched vendor interface on a USB device. It is built
// during a single enumeration pass and never updated afterwards; a later
// pass produces fresh values even for the same physical device.
type Info struct {
	VendorID  uint16
	ProductID uint16
	Bus       int
	Address   int
	Port      int
	Interface int
	Major     int
	Minor     int
	Serial    string
}

// Device exposes fan-level operations over an open register channel.
type Device struct {
	ch   RegisterChannel
	info Info

	// The serial transport cannot report the capability version, so
	// CheckVersion trusts it.
	overSerial bool
}

// NewDevice builds a device over a USB channel with the identity parsed
// from its BOS capability.
func NewDevice(ch RegisterChannel, info Info) *Device {
	return &Device{ch: ch, info: info}
}

// NewSerialDevice builds a device over an open serial channel.
func NewSerialDevice(ch *SerialChannel) *Device {
	return &Device{ch: ch, info: Info{Serial: ch.Name()}, overSerial: true}
}

// Info returns the identity captured at enumeration time.
func (d *Device) Info() Info { return d.info }

// Trace interposes t on every register transfer from here on.
func (d *Device) Trace(t Tracer) {
	d.ch = &TraceChannel{Channel: d.ch, Tracer: t}
}

// ReadRegister passes through to the channel, requesting the register's
// canonical transfer length.
func (d *Device) ReadRegister(reg uint8) (Value, error) {
	return d.ch.ReadRegister(reg, ReadLength(reg))
}

// WriteRegister passes through to the channel.
func (d *Device) WriteRegister(reg uint8, value uint16) error {
	return d.ch.WriteRegister(reg, value)
}

// Close releases the underlying transport handle.
func (d *Device) Close() error { return d.ch.Close() }

// SetSpeed sets the duty cycle of the indexed fan to percent of the current
// PWM period. The caller validates 0 <= percent <= 100.
func (d *Device) SetSpeed(percent float64, fanIndex int) error {
	v, err := d.ch.ReadRegister(RegPWMPeriod, 2)
	if err != nil {
		return fmt.Errorf("read PWM period: %w", err)
	}
	duty := uint16(math.Round(float64(v.Num) * percent / 100.0))
	return d.ch.WriteRegister(RegPWMDuty1+uint8(fanIndex)*fanStride, duty)
}

// GetSpeed returns the indexed fan's rotational speed in RPM as reported by
// the firmware.
func (d *Device) GetSpeed(fanIndex int) (int, error) {
	v, err := d.ch.ReadRegister(RegTachometer1+uint8(fanIndex)*fanStride, 2)
	if err != nil {
		return 0, fmt.Errorf("read tachometer: %w", err)
	}
	return v.Num, nil
}

// SetFrequency sets the PWM frequency in Hz. Frequencies whose period does
// not fit the 16-bit register write 0, which tells the firmware to use its
// default period.
func (d *Device) SetFrequency(hz float64) error {
	maxDuty := math.Round(pwmClockHz / hz)
	if maxDuty > 0xffff {
		maxDuty = 0
	}
	return d.ch.WriteRegister(RegPWMPeriod, uint16(maxDuty))
}

// GetFrequency returns the PWM frequency in Hz, rounded to 2 decimal places.
func (d *Device) GetFrequency() (float64, error) {
	v, err := d.ch.ReadRegister(RegPWMPeriod, 2)
	if err != nil {
		return 0, fmt.Errorf("read PWM period: %w", err)
	}
	return math.Round(pwmClockHz/float64(v.Num)*100) / 100, nil
}

// SetLEDMode sets the status LED mode; mode must be one of LEDModes.
func (d *Device) SetLEDMode(mode string) error {
	code, ok := modeCode(LEDModes, mode)
	if !ok {
		return fmt.Errorf("unknown LED mode %q", mode)
	}
	return d.ch.WriteRegister(RegLEDControl, code)
}

// Reset resets the device; mode must be one of ResetModes.
func (d *Device) Reset(mode string) error {
	code, ok := modeCode(ResetModes, mode)
	if !ok {
		return fmt.Errorf("unknown reset mode %q", mode)
	}
	return d.ch.WriteRegister(RegResetControl, code+1)
}

// RebootToBootloader resets the device into its firmware-update mode, after
// which it re-enumerates under a different serial identity.
func (d *Device) RebootToBootloader() error {
	return d.Reset("bootloader")
}

// SaveConfig persists the current configuration as the power-on defaults.
func (d *Device) SaveConfig() error {
	return d.ch.WriteRegister(RegConfigControl, 1)
}

// CheckVersion gates mutating operations on the interface protocol version.
// A non-nil error carries the user-facing explanation; it is a version
// mismatch, not a transport failure.
func (d *Device) CheckVersion() error {
	if d.overSerial {
		return nil
	}
	return checkVersion(d.info, VersionMajor, VersionMinor)
}

func checkVersion(info Info, reqMajor, reqMinor int) error {
	if info.Major != reqMajor {
		return fmt.Errorf("device %q interface version major mismatch: %d.%d vs %d.%d; firmware needs update",
			info.Serial, info.Major, info.Minor, reqMajor, reqMinor)
	}
	if info.Minor < reqMinor {
		return fmt.Errorf("device %q interface version minor insufficient: %d.%d < %d.%d; firmware needs update",
			info.Serial, info.Major, info.Minor, reqMajor, reqMinor)
	}
	return nil
}

// String renders the identity columns shown by the list command.
func (d *Device) String() string {
	if d.overSerial {
		return d.info.Serial
	}
	return fmt.Sprintf("%04x:%04x %02x %3d %4d %4d %2d.%d %s",
		d.info.VendorID, d.info.ProductID, d.info.Interface,
		d.info.Bus, d.info.Address, d.info.Port,
		d.info.Major, d.info.Minor, d.info.Serial)
}
