// Package bootloader locates the serial port a fan device's bootloader
// enumerates on after a reboot, and drives the external flashing tool
// against it.
package bootloader

import (
	"fmt"

	"go.bug.st/serial/enumerator"
)

// Port identifies one USB serial port by path and hardware identity. The
// hardware id folds in VID, PID and serial number, so a re-enumerated
// device is recognized even when the OS hands it the same path again.
type Port struct {
	Device     string
	HardwareID string
}

// Snapshot is the set of USB serial ports visible at one instant. It is
// built fresh on every poll and only ever compared, never mutated.
type Snapshot map[Port]struct{}

// Contains reports whether the snapshot holds the exact (path, hardware id)
// pair.
func (s Snapshot) Contains(p Port) bool {
	_, ok := s[p]
	return ok
}

// ListPorts snapshots all currently attached USB serial ports. Ports not
// backed by USB (motherboard UARTs and the like) are excluded.
func ListPorts() (Snapshot, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}
	snap := make(Snapshot, len(details))
	for _, p := range details {
		if !p.IsUSB {
			continue
		}
		snap[Port{Device: p.Name, HardwareID: hardwareID(p)}] = struct{}{}
	}
	return snap, nil
}

func hardwareID(p *enumerator.PortDetails) string {
	return fmt.Sprintf("VID:PID=%s:%s SER=%s", p.VID, p.PID, p.SerialNumber)
}

// FindBySerialNumber returns the path of the USB serial port whose device
// reports the given serial number, or "" when none does.
func FindBySerialNumber(serial string) (string, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("enumerate serial ports: %w", err)
	}
	for _, p := range details {
		if p.IsUSB && p.SerialNumber == serial {
			return p.Name, nil
		}
	}
	return "", nil
}
