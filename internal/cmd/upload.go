package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gousb"

	"github.com/sparky8512/fanctl/bootloader"
	"github.com/sparky8512/fanctl/fan"
)

type UploadCmd struct {
	File string `arg:"" type:"existingfile" help:"Path to .hex file to upload" placeholder:"HEX_FILE"`

	Avrdude     string        `help:"Path to avrdude executable" placeholder:"PATH"`
	AvrdudeConf string        `help:"Path to avrdude conf file" placeholder:"PATH"`
	DryRun      bool          `short:"n" help:"Don't actually write the firmware"`
	Verbose     bool          `short:"v" help:"Be verbose"`
	Timeout     time.Duration `help:"Max time to wait for bootloader serial port"`

	BootloaderPort string `xor:"reboot" help:"Use specified bootloader port instead of rebooting device and auto-detecting it" placeholder:"PORT"`
	ManualReboot   bool   `xor:"reboot" help:"Prompt user to manually reboot when ready"`
	Port           string `xor:"reboot" help:"Serial port of device to use for reboot; this is the port assigned when running application, not the one assigned to the bootloader" placeholder:"PORT"`
	SerialNumber   string `xor:"reboot" help:"Find serial port by USB device serial number"`
}

func (c *UploadCmd) Run(cli *CLI, logger *slog.Logger) error {
	if cli.Select.All {
		return errors.New("upload may not be combined with --all")
	}

	// An interrupt during the bootloader wait aborts the whole upload.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := c.BootloaderPort
	if port == "" {
		found, err := c.detectPort(ctx, cli, logger)
		if err != nil {
			return err
		}
		port = found
	}

	flasher := &bootloader.AVRDude{
		Path:    c.Avrdude,
		Conf:    c.AvrdudeConf,
		Verbose: c.Verbose,
		DryRun:  c.DryRun,
	}
	return flasher.Flash(ctx, port, c.File)
}

func (c *UploadCmd) detectPort(ctx context.Context, cli *CLI, logger *slog.Logger) (string, error) {
	reboot, cleanup, err := c.rebooter(cli, logger)
	if err != nil {
		return "", err
	}
	if cleanup != nil {
		defer cleanup()
	}

	timeout := c.Timeout
	if timeout == 0 && !c.ManualReboot {
		// Manual reboots wait on the user; everything else gets a deadline.
		timeout = bootloader.DefaultTimeout
	}
	return bootloader.NewDetector(logger).DetectPort(ctx, reboot, timeout)
}

// rebooter picks the reboot trigger: an explicit port or serial number gets
// the 1200 baud touch, --manual-reboot a prompt, and by default the
// selected fan device is told to reset into its bootloader.
func (c *UploadCmd) rebooter(cli *CLI, logger *slog.Logger) (bootloader.Rebooter, func(), error) {
	switch {
	case c.ManualReboot:
		return bootloader.ManualReboot(os.Stdout), nil, nil
	case c.SerialNumber != "":
		port, err := bootloader.FindBySerialNumber(c.SerialNumber)
		if err != nil {
			return nil, nil, err
		}
		if port == "" {
			return nil, nil, fmt.Errorf("no USB serial device with serial number %s found", c.SerialNumber)
		}
		return bootloader.TouchReboot(port), nil, nil
	case c.Port != "":
		return bootloader.TouchReboot(c.Port), nil, nil
	case cli.Select.SerialPort != "":
		ch, err := fan.OpenSerialChannel(cli.Select.SerialPort)
		if err != nil {
			return nil, nil, err
		}
		dev := fan.NewSerialDevice(ch)
		prepare(cli, logger, dev)
		return dev.RebootToBootloader, func() { dev.Close() }, nil
	default:
		usbCtx := gousb.NewContext()
		index := 0
		if cli.Select.Index != nil {
			index = *cli.Select.Index
		}
		dev, err := fan.FindDevice(usbCtx, logger, index)
		if err != nil {
			usbCtx.Close()
			return nil, nil, err
		}
		if dev == nil {
			usbCtx.Close()
			return nil, nil, errors.New("no USB fan device found")
		}
		prepare(cli, logger, dev)
		cleanup := func() {
			dev.Close()
			usbCtx.Close()
		}
		return dev.RebootToBootloader, cleanup, nil
	}
}
