// Package cmd holds the kong command tree for fanctl.
package cmd

import (
	"fmt"

	"github.com/sparky8512/fanctl/fan"
)

type LogConfig struct {
	Level string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"FANCTL_LOG_LEVEL"`
	File  string `help:"Write logs to this file instead of the console" env:"FANCTL_LOG_FILE"`
}

// SelectFlags choose which attached device(s) an operation targets. The
// three selectors are mutually exclusive.
type SelectFlags struct {
	Index      *int   `short:"i" xor:"selection" help:"0-based index of device to use"`
	All        bool   `short:"a" xor:"selection" help:"Run operation on all attached devices instead of just the first one found"`
	SerialPort string `short:"s" xor:"selection" help:"Serial port to use instead of USB interface" placeholder:"PORT"`
	FanIndex   int    `short:"f" help:"0-based index of fan to use on device" default:"0"`
}

// Globals are the persistent flags shared by every command; config files
// set these.
type Globals struct {
	Log       LogConfig   `embed:"" prefix:"log."`
	Select    SelectFlags `embed:""`
	TraceWire bool        `help:"Log every register transfer at trace level"`
}

// CLI is the root command tree.
type CLI struct {
	Globals `embed:""`
	Config  string `help:"Path to configuration file" env:"FANCTL_CONFIG"`

	List          ListCmd          `cmd:"" help:"List attached fan devices"`
	Set           SetCmd           `cmd:"" help:"Set fan speed"`
	Get           GetCmd           `cmd:"" help:"Get current fan speed, in RPM"`
	SetFrequency  SetFrequencyCmd  `cmd:"" help:"Set PWM frequency"`
	GetFrequency  GetFrequencyCmd  `cmd:"" help:"Get PWM frequency, in Hz"`
	Led           LedCmd           `cmd:"" help:"Set LED mode"`
	Save          SaveCmd          `cmd:"" help:"Persist configuration across device reset"`
	Reset         ResetCmd         `cmd:"" help:"Reset device"`
	ReadRegister  ReadRegisterCmd  `cmd:"" help:"Read register value"`
	WriteRegister WriteRegisterCmd `cmd:"" help:"Write value to register"`
	Upload        UploadCmd        `cmd:"" help:"Upload firmware to device"`
	ConfigCmd     ConfigCommand    `cmd:"" name:"config" help:"Configuration file helpers"`
}

func (c *CLI) Validate() error {
	if c.Select.FanIndex < 0 || c.Select.FanIndex > fan.MaxFanIndex {
		return fmt.Errorf("fan index must be between 0 and %d", fan.MaxFanIndex)
	}
	return nil
}
