package southbound

import (
	"fmt"
	"sort"

	"github.com/nanoncore/nano-outage/drivers/mock"
	"github.com/nanoncore/nano-outage/drivers/snmp"
	"github.com/nanoncore/nano-outage/vendors/bdcom"
)

// CapabilityMatrix defines what each vendor supports
var CapabilityMatrix = map[Vendor]VendorCapabilities{
	VendorBDCOM: {
		PrimaryProtocol: ProtocolSNMP,
		SupportedProtocols: []Protocol{
			ProtocolSNMP,
		},
		TelemetryMethod:     ProtocolSNMP,
		SupportsDeregReason: true,
	},
	VendorMock: {
		PrimaryProtocol: ProtocolSNMP,
		SupportedProtocols: []Protocol{
			ProtocolSNMP,
		},
		TelemetryMethod:     ProtocolSNMP,
		SupportsDeregReason: true,
	},
}

// VendorCapabilities defines what protocols and features a vendor supports
type VendorCapabilities struct {
	PrimaryProtocol    Protocol
	SupportedProtocols []Protocol
	TelemetryMethod    Protocol

	// SupportsDeregReason is true when the OLT records why an ONU last deregistered
	SupportsDeregReason bool
}

// NewDriver creates a new southbound driver based on vendor and protocol
func NewDriver(vendor Vendor, protocol Protocol, config *EquipmentConfig) (OutageDriver, error) {
	// Validate vendor capabilities
	caps, ok := CapabilityMatrix[vendor]
	if !ok {
		return nil, fmt.Errorf("unsupported vendor: %s", vendor)
	}

	// If protocol not specified, use primary
	if protocol == "" {
		protocol = caps.PrimaryProtocol
	}

	// Validate protocol is supported
	supported := false
	for _, p := range caps.SupportedProtocols {
		if p == protocol {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("vendor %s does not support protocol %s", vendor, protocol)
	}

	// Create protocol driver
	var baseDriver Driver
	var err error

	switch {
	case vendor == VendorMock:
		// Mock vendor simulates a BDCOM agent regardless of protocol
		baseDriver, err = mock.NewDriver(config)
	case protocol == ProtocolSNMP:
		baseDriver, err = snmp.NewDriver(config)
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", protocol)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", protocol, err)
	}

	// Wrap with vendor-specific adapter
	switch vendor {
	case VendorBDCOM, VendorMock:
		return bdcom.NewAdapter(baseDriver, config), nil
	default:
		return nil, fmt.Errorf("vendor adapter not implemented: %s", vendor)
	}
}

// GetSupportedVendors returns a list of all supported vendors
func GetSupportedVendors() []Vendor {
	vendors := make([]Vendor, 0, len(CapabilityMatrix))
	for v := range CapabilityMatrix {
		vendors = append(vendors, v)
	}
	sort.Slice(vendors, func(i, j int) bool { return vendors[i] < vendors[j] })
	return vendors
}

// GetVendorCapabilities returns the capabilities for a vendor
func GetVendorCapabilities(vendor Vendor) (VendorCapabilities, bool) {
	caps, ok := CapabilityMatrix[vendor]
	return caps, ok
}
