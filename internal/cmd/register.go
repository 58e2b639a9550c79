package cmd

import (
	"log/slog"

	"github.com/sparky8512/fanctl/fan"
)

type ReadRegisterCmd struct {
	Register uint8 `arg:"" help:"Register number to read" placeholder:"REG"`
}

func (c *ReadRegisterCmd) Run(cli *CLI, logger *slog.Logger) error {
	return run(cli, logger, runOpts{header: true}, func(dev *fan.Device) (string, error) {
		v, err := dev.ReadRegister(c.Register)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	})
}

type WriteRegisterCmd struct {
	Register uint8  `arg:"" help:"Register number to write" placeholder:"REG"`
	Value    uint16 `arg:"" help:"Value to write" placeholder:"VALUE"`
}

func (c *WriteRegisterCmd) Run(cli *CLI, logger *slog.Logger) error {
	return run(cli, logger, runOpts{}, func(dev *fan.Device) (string, error) {
		return "", dev.WriteRegister(c.Register, c.Value)
	})
}
