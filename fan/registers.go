// Package fan controls USB PWM fan devices over either a vendor USB
// interface or the firmware's ASCII serial protocol.
package fan

// Register addresses of the vendor protocol. The map is shared by both
// transports; the meaning of each register never depends on how it is
// reached.
const (
	RegPWMDuty1      uint8 = 0x10
	RegPWMPeriod     uint8 = 0x11
	RegTachometer1   uint8 = 0x12
	RegPWMDuty2      uint8 = 0x20
	RegTachometer2   uint8 = 0x22
	RegPWMDuty3      uint8 = 0x30
	RegTachometer3   uint8 = 0x32
	RegResetControl  uint8 = 0xf0
	RegLEDControl    uint8 = 0xf1
	RegConfigControl uint8 = 0xf2
	RegSerialNumber  uint8 = 0xf8
)

// fanStride separates the per-fan register banks.
const fanStride = 0x10

// MaxFanIndex is the highest fan index a device can expose.
const MaxFanIndex = 2

// pwmClockHz is the clock feeding the PWM period register.
const pwmClockHz = 16_000_000

// serialNumberLen is the transfer size for reading RegSerialNumber.
const serialNumberLen = 20

// LEDModes lists the accepted arguments to Device.SetLEDMode, in wire order:
// the register value is the mode's position in this list.
var LEDModes = []string{"alert", "on", "off", "blink"}

// ResetModes lists the accepted arguments to Device.Reset, in wire order:
// the register value is the mode's position in this list plus one.
var ResetModes = []string{"config", "reboot", "bootloader", "factory"}

func modeCode(modes []string, mode string) (uint16, bool) {
	for i, m := range modes {
		if m == mode {
			return uint16(i), true
		}
	}
	return 0, false
}

// ReadLength returns the transfer size to request when reading reg.
func ReadLength(reg uint8) int {
	if reg == RegSerialNumber {
		return serialNumberLen
	}
	return 2
}
