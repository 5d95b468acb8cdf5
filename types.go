package southbound

// Re-export types from the types sub-package so callers can use
// southbound.OutageDriver, southbound.VendorBDCOM, etc.

import (
	"github.com/nanoncore/nano-outage/types"
)

// Type aliases
type (
	Protocol        = types.Protocol
	Vendor          = types.Vendor
	EquipmentType   = types.EquipmentType
	EquipmentConfig = types.EquipmentConfig
	Driver          = types.Driver
	OutageDriver    = types.OutageDriver
	SNMPExecutor    = types.SNMPExecutor
	SNMPVariable    = types.SNMPVariable
	EquipmentStatus = types.EquipmentStatus
)

// Re-export constants
const (
	ProtocolSNMP = types.ProtocolSNMP

	VendorBDCOM = types.VendorBDCOM
	VendorMock  = types.VendorMock

	EquipmentTypeOLT = types.EquipmentTypeOLT
	EquipmentTypeONU = types.EquipmentTypeONU
)
