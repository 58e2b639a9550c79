package cmd

import (
	"log/slog"

	"github.com/sparky8512/fanctl/fan"
)

type LedCmd struct {
	Mode string `arg:"" enum:"alert,on,off,blink" help:"The mode to set"`
}

func (c *LedCmd) Run(cli *CLI, logger *slog.Logger) error {
	return run(cli, logger, runOpts{versionCheck: true}, func(dev *fan.Device) (string, error) {
		return "", dev.SetLEDMode(c.Mode)
	})
}

type SaveCmd struct{}

func (c *SaveCmd) Run(cli *CLI, logger *slog.Logger) error {
	return run(cli, logger, runOpts{versionCheck: true}, func(dev *fan.Device) (string, error) {
		return "", dev.SaveConfig()
	})
}

type ResetCmd struct {
	Mode string `enum:"config,reboot,bootloader,factory" default:"reboot" help:"Reset mode to use"`
}

func (c *ResetCmd) Run(cli *CLI, logger *slog.Logger) error {
	return run(cli, logger, runOpts{versionCheck: true}, func(dev *fan.Device) (string, error) {
		return "", dev.Reset(c.Mode)
	})
}
