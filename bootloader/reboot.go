package bootloader

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Rebooter triggers a device reset into its bootloader. DetectPort calls it
// exactly once, after taking the pre-reboot port snapshot.
type Rebooter func() error

// TouchReboot opens the device's application port at 1200 baud and
// immediately closes it, which Caterina-style bootloaders interpret as a
// reset request.
func TouchReboot(port string) Rebooter {
	return func() error {
		p, err := serial.Open(port, &serial.Mode{BaudRate: 1200})
		if err != nil {
			return fmt.Errorf("open serial port %s: %w", port, err)
		}
		return p.Close()
	}
}

// ManualReboot prompts the user to power-cycle the device themselves;
// detection then waits with no programmatic trigger.
func ManualReboot(w io.Writer) Rebooter {
	return func() error {
		fmt.Fprintln(w, "Manually reboot your device now. Ctrl-C to exit.")
		return nil
	}
}
