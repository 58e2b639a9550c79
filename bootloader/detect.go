package bootloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds the wait for the bootloader port when the caller
// does not pick one.
const DefaultTimeout = 10 * time.Second

const pollInterval = 100 * time.Millisecond

// ErrTimeout reports that no bootloader port appeared before the deadline.
var ErrTimeout = errors.New("timed out waiting for bootloader port")

// Lister produces port snapshots; swapped for a scripted one in tests.
type Lister func() (Snapshot, error)

// Detector waits for the serial port assigned to a rebooted device's
// bootloader.
type Detector struct {
	List   Lister
	Logger *slog.Logger
}

func NewDetector(logger *slog.Logger) *Detector {
	return &Detector{List: ListPorts, Logger: logger}
}

// DetectPort snapshots the visible USB serial ports, fires reboot exactly
// once, then polls until a port shows a (path, hardware id) pair absent
// from the previous snapshot. That covers both a brand-new device path and
// an existing path whose hardware identity changed after re-enumeration.
//
// A timeout of zero polls forever. Cancelling ctx aborts the wait and
// returns ctx's error; the caller treats that as a user abort, not a retry.
func (d *Detector) DetectPort(ctx context.Context, reboot Rebooter, timeout time.Duration) (string, error) {
	before, err := d.List()
	if err != nil {
		return "", err
	}
	d.Logger.Info("waiting for bootloader port")
	if err := reboot(); err != nil {
		return "", fmt.Errorf("reboot device: %w", err)
	}

	start := time.Now()
	for {
		polled, err := d.List()
		if err != nil {
			return "", err
		}
		// Carry forward only pairs still present, so a port that vanishes
		// and returns with the same identity still reads as new.
		after := make(Snapshot, len(polled))
		for p := range polled {
			if !before.Contains(p) {
				d.Logger.Info("bootloader port found", "port", p.Device)
				return p.Device, nil
			}
			after[p] = struct{}{}
		}
		before = after

		if timeout > 0 && time.Since(start) > timeout {
			return "", ErrTimeout
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
