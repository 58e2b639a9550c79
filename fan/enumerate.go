package fan

import (
	"log/slog"

	"github.com/google/gousb"
	"github.com/google/uuid"

	"github.com/sparky8512/fanctl/usb"
)

// CapabilityUUID identifies the fan vendor protocol inside BOS platform
// capability descriptors.
var CapabilityUUID = uuid.MustParse("1ad9f93b-494c-4dda-a1e5-2e2bab181052")

// GET_DESCRIPTOR request fields for fetching the BOS descriptor.
const (
	getDescriptorReqType uint8  = 0x80
	getDescriptorRequest uint8  = 6
	bosDescriptorValue   uint16 = uint16(usb.BOSDescType) << 8
	bosRequestLen               = 1024
)

// minSpecBOS is the lowest bcdUSB that can carry a BOS descriptor.
const minSpecBOS = gousb.BCD(0x0201)

// FindDevices opens every attached fan device, in enumeration order. A
// physical device exposing several matching capabilities yields one Device
// per capability. Devices that cannot be opened or probed are skipped.
func FindDevices(ctx *gousb.Context, logger *slog.Logger) ([]*Device, error) {
	return findDevices(ctx, logger, -1)
}

// FindDevice opens only the index-th matching vendor interface, counted
// globally across all devices' matches. It returns nil when fewer than
// index+1 matches exist.
func FindDevice(ctx *gousb.Context, logger *slog.Logger, index int) (*Device, error) {
	devs, err := findDevices(ctx, logger, index)
	if err != nil {
		return nil, err
	}
	if len(devs) == 0 {
		return nil, nil
	}
	return devs[0], nil
}

func findDevices(ctx *gousb.Context, logger *slog.Logger, index int) ([]*Device, error) {
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		// Devices below USB 2.01 cannot have a BOS descriptor.
		return desc.Spec >= minSpecBOS
	})
	if err != nil {
		// OpenDevices reports devices it could not open even when others
		// opened fine; those are expected (permissions, detached drivers)
		// and the opened ones remain usable.
		logger.Debug("some USB devices could not be opened", "error", err)
	}

	var fans []*Device
	found := 0
	done := false
	for _, dev := range devs {
		matched := false
		if !done {
			for _, pc := range fetchCapabilities(dev, logger) {
				// Payload layout: minor, major, interface index.
				if len(pc.Payload) >= 3 {
					if index < 0 || index == found {
						fans = append(fans, newUSBDevice(dev, pc.Payload, !matched))
						matched = true
					}
					if index == found {
						done = true
						break
					}
				}
				found++
			}
		}
		if !matched {
			dev.Close()
		}
	}
	return fans, nil
}

func newUSBDevice(dev *gousb.Device, payload []byte, owns bool) *Device {
	serial, err := dev.SerialNumber()
	if err != nil {
		serial = ""
	}
	info := Info{
		VendorID:  uint16(dev.Desc.Vendor),
		ProductID: uint16(dev.Desc.Product),
		Bus:       dev.Desc.Bus,
		Address:   dev.Desc.Address,
		Port:      dev.Desc.Port,
		Interface: int(payload[2]),
		Major:     int(payload[1]),
		Minor:     int(payload[0]),
		Serial:    serial,
	}
	ch := NewUSBChannel(dev, info.Interface)
	ch.owns = owns
	return NewDevice(ch, info)
}

// fetchCapabilities pulls the device's BOS descriptor and filters it for the
// fan protocol UUID. Any transfer failure means "not a fan device", never a
// fatal error.
func fetchCapabilities(dev *gousb.Device, logger *slog.Logger) []usb.PlatformCapability {
	buf := make([]byte, bosRequestLen)
	n, err := dev.Control(getDescriptorReqType, getDescriptorRequest, bosDescriptorValue, 0, buf)
	if err != nil {
		logger.Debug("BOS descriptor transfer failed", "device", dev.String(), "error", err)
		return nil
	}
	return usb.PlatformCapabilities(buf[:n], CapabilityUUID)
}
