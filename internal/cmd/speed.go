package cmd

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/sparky8512/fanctl/fan"
)

type SetCmd struct {
	Speed float64 `arg:"" help:"Fan speed, in percent" placeholder:"SPEED"`
}

func (c *SetCmd) Validate() error {
	if c.Speed < 0 || c.Speed > 100 {
		return errors.New("invalid speed percentage")
	}
	return nil
}

func (c *SetCmd) Run(cli *CLI, logger *slog.Logger) error {
	return run(cli, logger, runOpts{versionCheck: true}, func(dev *fan.Device) (string, error) {
		return "", dev.SetSpeed(c.Speed, cli.Select.FanIndex)
	})
}

type GetCmd struct{}

func (c *GetCmd) Run(cli *CLI, logger *slog.Logger) error {
	return run(cli, logger, runOpts{versionCheck: true, header: true}, func(dev *fan.Device) (string, error) {
		rpm, err := dev.GetSpeed(cli.Select.FanIndex)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(rpm), nil
	})
}
