package allocator

import (
	"math"

	"github.com/viant/powerflux/model"
)

// ordered returns a copy of the device references sorted by connection
// timestamp; devices sharing a timestamp keep their admission order.
func ordered(devices model.Devices) model.Devices {
	return devices.Ordered()
}

// remaining returns the unused safe capacity, never negative
func remaining(devices model.Devices, limits model.Limits) float64 {
	return max(limits.SafeCapacity-devices.Total(), 0)
}

// fit trims the usage of the device that was just granted power until the
// total no longer exceeds the safe capacity.  Fractional grants are computed
// as differences, so the re-summed total can overshoot by a rounding error.
func fit(devices model.Devices, device *model.Device, limits model.Limits) {
	for device.CurrentUsage > 0 {
		over := devices.Total() - limits.SafeCapacity
		if over <= 0 {
			return
		}
		trimmed := max(device.CurrentUsage-over, 0)
		if trimmed == device.CurrentUsage {
			trimmed = math.Nextafter(trimmed, 0)
		}
		device.CurrentUsage = trimmed
	}
}

// redistribute hands the unused capacity to the earliest connected devices
// that are below their ceiling.  It is a single forward pass: each device is
// visited once, in FIFO order, until the capacity is exhausted.  It returns
// the devices whose usage changed and the total power granted.
func redistribute(devices model.Devices, limits model.Limits) (model.Devices, float64) {
	available := remaining(devices, limits)
	if available <= 0 {
		return nil, 0
	}
	var changed model.Devices
	granted := 0.0
	for _, device := range ordered(devices) {
		if available <= 0 {
			break
		}
		headroom := device.Headroom()
		if headroom <= 0 {
			continue
		}
		before := device.CurrentUsage
		if headroom <= available {
			device.CurrentUsage = device.MaxAllowed
		} else {
			device.CurrentUsage += available
		}
		fit(devices, device, limits)
		if device.CurrentUsage <= before {
			device.CurrentUsage = before
			break
		}
		granted += device.CurrentUsage - before
		available = remaining(devices, limits)
		changed = append(changed, device)
	}
	return changed, granted
}
