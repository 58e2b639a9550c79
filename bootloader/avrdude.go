package bootloader

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// AVRDude wraps the external avrdude flasher. The microcontroller is
// assumed to run an AVR109-speaking bootloader on the detected port.
type AVRDude struct {
	Path    string // avrdude executable; resolved via PATH when empty
	Conf    string // alternate avrdude.conf
	Verbose bool
	DryRun  bool
}

// Flash writes the Intel-hex image at hexPath through the bootloader on
// port. avrdude's output goes straight to the terminal.
func (a *AVRDude) Flash(ctx context.Context, port, hexPath string) error {
	path := a.Path
	if path == "" {
		found, err := exec.LookPath("avrdude")
		if err != nil {
			return fmt.Errorf("avrdude not found in PATH: %w", err)
		}
		path = found
	}
	cmd := exec.CommandContext(ctx, path, a.args(port, hexPath)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("avrdude: %w", err)
	}
	return nil
}

func (a *AVRDude) args(port, hexPath string) []string {
	var args []string
	if a.Verbose {
		args = append(args, "-v")
	}
	if a.DryRun {
		args = append(args, "-n")
	}
	if a.Conf != "" {
		args = append(args, "-C", a.Conf)
	}
	return append(args,
		"-p", "atmega32u4", "-c", "avr109", "-D",
		"-P", port, "-U", fmt.Sprintf("flash:w:%s:i", hexPath))
}
