package cmd

import (
	"fmt"
	"log/slog"

	"github.com/google/gousb"

	"github.com/sparky8512/fanctl/fan"
	"github.com/sparky8512/fanctl/internal/log"
)

type runOpts struct {
	// versionCheck gates the operation on the device's protocol version.
	versionCheck bool
	// header prints the identity column header when several devices run.
	header bool
	// list marks the list command, which prints identities rather than
	// prefixing them.
	list bool
}

// run opens the devices selected by the global flags and applies fn to each
// one strictly in order, one device fully completed before the next. fn
// returns the output line for the device, or "" for silent operations.
func run(cli *CLI, logger *slog.Logger, opts runOpts, fn func(dev *fan.Device) (string, error)) error {
	if cli.Select.SerialPort != "" {
		return runSerial(cli, logger, fn)
	}

	usbCtx := gousb.NewContext()
	defer usbCtx.Close()

	devs, err := findSelected(cli, logger, usbCtx, opts.list)
	if err != nil {
		return err
	}
	defer func() {
		for _, d := range devs {
			d.Close()
		}
	}()

	if len(devs) == 0 {
		fmt.Println("No USB fan device found")
		return nil
	}
	for _, dev := range devs {
		prepare(cli, logger, dev)
	}

	if len(devs) == 1 && !cli.Select.All && !opts.list {
		return runOne(devs[0], opts, fn, false)
	}
	if opts.header {
		fmt.Println(" VID  PID IF Bus Addr Port IfVer SerialNumber")
	}
	for _, dev := range devs {
		if err := runOne(dev, opts, fn, opts.header && !opts.list); err != nil {
			return err
		}
	}
	return nil
}

func runSerial(cli *CLI, logger *slog.Logger, fn func(dev *fan.Device) (string, error)) error {
	ch, err := fan.OpenSerialChannel(cli.Select.SerialPort)
	if err != nil {
		return err
	}
	dev := fan.NewSerialDevice(ch)
	defer dev.Close()
	prepare(cli, logger, dev)

	out, err := fn(dev)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Println(out)
	}
	return nil
}

func runOne(dev *fan.Device, opts runOpts, fn func(dev *fan.Device) (string, error), prefix bool) error {
	if opts.versionCheck {
		if err := dev.CheckVersion(); err != nil {
			// Reported but not fatal, so remaining devices still run.
			fmt.Println(err)
			return nil
		}
	}
	out, err := fn(dev)
	if err != nil {
		return err
	}
	if out == "" {
		return nil
	}
	if prefix {
		fmt.Printf("%-47s: %s\n", dev, out)
	} else {
		fmt.Println(out)
	}
	return nil
}

// findSelected applies the selection flags: --all (or a bare list command)
// takes every device, --index the Nth match, and the default is the first.
func findSelected(cli *CLI, logger *slog.Logger, usbCtx *gousb.Context, list bool) ([]*fan.Device, error) {
	if cli.Select.All || (list && cli.Select.Index == nil) {
		return fan.FindDevices(usbCtx, logger)
	}
	index := 0
	if cli.Select.Index != nil {
		index = *cli.Select.Index
	}
	dev, err := fan.FindDevice(usbCtx, logger, index)
	if err != nil || dev == nil {
		return nil, err
	}
	return []*fan.Device{dev}, nil
}

func prepare(cli *CLI, logger *slog.Logger, dev *fan.Device) {
	if cli.TraceWire {
		dev.Trace(log.NewWireTracer(logger))
	}
}
