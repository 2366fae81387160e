package gamepad

import "strings"

// DeviceMapping describes a known controller family.
type DeviceMapping struct {
	Name string
	// HasHat is false for controllers whose D-pad is reported as buttons
	// only. Those are still read by the evdev source.
	HasHat bool
}

var (
	xboxMapping        = &DeviceMapping{Name: "xbox", HasHat: true}
	playstationMapping = &DeviceMapping{Name: "playstation", HasHat: true}
	switchProMapping   = &DeviceMapping{Name: "switch_pro", HasHat: true}
	joyConMapping      = &DeviceMapping{Name: "joycon", HasHat: false}
	genericMapping     = &DeviceMapping{Name: "generic", HasHat: true}
)

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo
	{0x057E, 0x2009}: switchProMapping,
	{0x057E, 0x2006}: joyConMapping, // Joy-Con (L)
}

// GetMapping returns the mapping for a device identified by vendor/product
// ID, falling back to the generic mapping.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	key := deviceKey{VendorID: vendorID, ProductID: productID}
	if m, ok := knownDevices[key]; ok {
		return m
	}
	return genericMapping
}

// GuessMapping identifies a controller by name when IDs are unavailable.
func GuessMapping(name string) *DeviceMapping {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "xbox"), strings.Contains(n, "x-box"):
		return xboxMapping
	case strings.Contains(n, "dualsense"), strings.Contains(n, "dualshock"), strings.Contains(n, "playstation"):
		return playstationMapping
	case strings.Contains(n, "pro controller"):
		return switchProMapping
	case strings.Contains(n, "joy-con"):
		return joyConMapping
	}
	return genericMapping
}
