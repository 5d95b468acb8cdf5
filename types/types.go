package types

import (
	"context"
	"time"

	"github.com/nanoncore/nano-outage/model"
)

// Protocol represents the southbound protocol type
type Protocol string

const (
	ProtocolSNMP Protocol = "snmp"
)

// Vendor represents the network equipment vendor
type Vendor string

const (
	VendorBDCOM Vendor = "bdcom" // BDCOM EPON OLTs (P3608, P3616 series)
	VendorMock  Vendor = "mock"  // For testing/simulation
)

// EquipmentType represents the type of network equipment
type EquipmentType string

const (
	EquipmentTypeOLT EquipmentType = "olt"
	EquipmentTypeONU EquipmentType = "onu"
)

// EquipmentConfig contains configuration for a network equipment instance
type EquipmentConfig struct {
	// Name is a unique identifier for this equipment
	Name string

	// Type is the equipment type (OLT, ONU)
	Type EquipmentType

	// Vendor is the equipment vendor
	Vendor Vendor

	// Address is the management IP/hostname
	Address string

	// Port is the management port (if not default)
	Port int

	// Protocol is the primary management protocol
	Protocol Protocol

	// Username for SNMPv3 authentication
	Username string

	// Password for SNMPv3 authentication
	Password string

	// Timeout for a single request
	Timeout time.Duration

	// Retries is the number of request retransmissions before a timeout is reported
	Retries int

	// Metadata contains vendor-specific configuration
	// (snmp_version, snmp_community)
	Metadata map[string]string
}

// Driver is the interface that all southbound drivers must implement
// This abstracts the protocol-specific session details
type Driver interface {
	// Connect establishes a session with the equipment
	Connect(ctx context.Context, config *EquipmentConfig) error

	// Disconnect closes the session
	Disconnect(ctx context.Context) error

	// IsConnected returns true if connected
	IsConnected() bool

	// HealthCheck performs a health check on the session
	HealthCheck(ctx context.Context) error
}

// OutageDriver extends Driver with the operations needed to detect
// mass-deregistration events on an OLT.
type OutageDriver interface {
	Driver

	// GetEquipmentStatus returns identification data (sysDescr, sysName)
	// used to filter unsupported models before any collection happens.
	GetEquipmentStatus(ctx context.Context) (*EquipmentStatus, error)

	// CollectONUs runs one full inventory pass. The returned inventory is
	// never partial: an error means the pass must be discarded.
	CollectONUs(ctx context.Context) (*model.Inventory, error)
}

// SNMPVariable is a single varbind returned by a walk or get.
type SNMPVariable struct {
	// OID is the full object identifier without a leading dot
	OID string

	// Index is the part of OID below the walked subtree
	Index string

	// Type is the ASN.1 type name reported by the agent
	Type string

	// Value is the decoded value. OctetString values are []byte,
	// integers are int64, counters and gauges are uint64.
	Value interface{}
}

// SNMPExecutor is an optional interface for drivers that support SNMP queries
// Used for monitoring and telemetry collection
type SNMPExecutor interface {
	// GetSNMP retrieves a single SNMP value by OID
	GetSNMP(ctx context.Context, oid string) (interface{}, error)

	// WalkSNMP performs an SNMP walk on an OID subtree, in agent order
	WalkSNMP(ctx context.Context, oid string) ([]SNMPVariable, error)

	// BulkGetSNMP retrieves multiple OIDs in one request
	BulkGetSNMP(ctx context.Context, oids []string) (map[string]interface{}, error)
}

// EquipmentStatus represents the identification of the equipment itself
type EquipmentStatus struct {
	// IsReachable indicates if equipment answered the identification query
	IsReachable bool

	// Description is the sysDescr string, matched against the model denylist
	Description string

	// Name is the sysName
	Name string

	// UptimeSeconds is the agent uptime
	UptimeSeconds int64

	// Metadata contains vendor-specific status
	Metadata map[string]interface{}
}
