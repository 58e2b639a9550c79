package cmd

import (
	"log/slog"

	"github.com/sparky8512/fanctl/fan"
)

type ListCmd struct{}

func (c *ListCmd) Run(cli *CLI, logger *slog.Logger) error {
	return run(cli, logger, runOpts{header: true, list: true}, func(dev *fan.Device) (string, error) {
		return dev.String(), nil
	})
}
