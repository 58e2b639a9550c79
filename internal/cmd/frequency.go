package cmd

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/sparky8512/fanctl/fan"
)

type SetFrequencyCmd struct {
	Freq float64 `arg:"" help:"Frequency, in Hz" placeholder:"FREQ"`
}

func (c *SetFrequencyCmd) Validate() error {
	if c.Freq <= 0 {
		return errors.New("frequency must be positive")
	}
	return nil
}

func (c *SetFrequencyCmd) Run(cli *CLI, logger *slog.Logger) error {
	return run(cli, logger, runOpts{versionCheck: true}, func(dev *fan.Device) (string, error) {
		return "", dev.SetFrequency(c.Freq)
	})
}

type GetFrequencyCmd struct{}

func (c *GetFrequencyCmd) Run(cli *CLI, logger *slog.Logger) error {
	return run(cli, logger, runOpts{versionCheck: true, header: true}, func(dev *fan.Device) (string, error) {
		hz, err := dev.GetFrequency()
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(hz, 'f', -1, 64), nil
	})
}
