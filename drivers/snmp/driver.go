package snmp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/nanoncore/nano-outage/types"
	"github.com/nanoncore/nano-outage/vendors/common"
)

const (
	defaultPort           = 161
	defaultTimeout        = 5 * time.Second
	defaultRetries        = 2
	defaultCommunity      = "public"
	defaultMaxRepetitions = 25
)

// Driver implements types.Driver and types.SNMPExecutor over gosnmp.
// A single gosnmp handler is not safe for concurrent requests, so every
// request is serialized on mu. Each request runs under the caller's context,
// so cancellation interrupts retransmissions.
type Driver struct {
	config    *types.EquipmentConfig
	newClient func() gosnmp.Handler
	version   gosnmp.SnmpVersion

	mu   sync.Mutex
	snmp gosnmp.Handler
}

// NewDriver creates a new SNMP driver
func NewDriver(config *types.EquipmentConfig) (types.Driver, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if config.Address == "" {
		return nil, fmt.Errorf("address is required")
	}

	// Default SNMP port
	if config.Port == 0 {
		config.Port = defaultPort
	}

	// Default timeout
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	if config.Retries < 0 {
		config.Retries = defaultRetries
	}

	return &Driver{
		config:    config,
		newClient: gosnmp.NewHandler,
	}, nil
}

// Connect prepares the SNMP session. SNMP is connectionless, so an unreachable
// device is only detected by the first request timing out.
func (d *Driver) Connect(ctx context.Context, config *types.EquipmentConfig) error {
	if config != nil {
		d.config = config
	}

	version, err := parseVersion(common.GetMetadataStringWithDefault(d.config.Metadata, "2c", common.MetaSNMPVersion))
	if err != nil {
		return err
	}

	port := d.config.Port
	if port <= 0 || port > 65535 {
		port = defaultPort
	}

	client := d.newClient()
	client.SetTarget(d.config.Address)
	client.SetPort(uint16(port)) //nolint:gosec // validated above
	client.SetTimeout(d.config.Timeout)
	client.SetRetries(d.config.Retries)
	client.SetMaxRepetitions(uint32(common.GetMetadataIntWithDefault(d.config.Metadata, defaultMaxRepetitions, common.MetaMaxRepetition))) //nolint:gosec // small positive value
	client.SetVersion(version)

	switch version {
	case gosnmp.Version1, gosnmp.Version2c:
		client.SetCommunity(common.GetMetadataStringWithDefault(d.config.Metadata, defaultCommunity, common.MetaSNMPCommunity))
	case gosnmp.Version3:
		if d.config.Username == "" {
			return fmt.Errorf("username is required for SNMPv3")
		}
		client.SetSecurityModel(gosnmp.UserSecurityModel)
		client.SetMsgFlags(gosnmp.AuthPriv)
		client.SetSecurityParameters(&gosnmp.UsmSecurityParameters{
			UserName:                 d.config.Username,
			AuthenticationProtocol:   gosnmp.SHA,
			AuthenticationPassphrase: d.config.Password,
			PrivacyProtocol:          gosnmp.AES,
			PrivacyPassphrase:        d.config.Password,
		})
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := client.Connect(); err != nil {
		return fmt.Errorf("failed to connect SNMP to %s: %w", d.config.Address, classify(err))
	}

	d.mu.Lock()
	d.snmp = client
	d.version = version
	d.mu.Unlock()

	return nil
}

// Disconnect closes the SNMP connection
func (d *Driver) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.snmp != nil {
		err := d.snmp.Close()
		d.snmp = nil
		return err
	}
	return nil
}

// IsConnected returns true if connected
func (d *Driver) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snmp != nil
}

// HealthCheck queries sysDescr (1.3.6.1.2.1.1.1.0)
func (d *Driver) HealthCheck(ctx context.Context) error {
	_, err := d.GetSNMP(ctx, "1.3.6.1.2.1.1.1.0")
	return err
}

// GetSNMP implements types.SNMPExecutor - retrieves a single SNMP value
func (d *Driver) GetSNMP(ctx context.Context, oid string) (interface{}, error) {
	oid = common.NormalizeOID(oid)

	result, err := d.get(ctx, []string{oid})
	if err != nil {
		return nil, err
	}

	if len(result.Variables) == 0 {
		return nil, fmt.Errorf("no result for OID %s: %w", oid, types.ErrNoSuchObject)
	}

	variable := result.Variables[0]
	if isMissing(variable.Type) {
		return nil, fmt.Errorf("OID %s: %w", oid, types.ErrNoSuchObject)
	}

	return convertValue(variable), nil
}

// WalkSNMP implements types.SNMPExecutor - walks a subtree and returns
// the varbinds in the order the agent produced them.
func (d *Driver) WalkSNMP(ctx context.Context, oid string) ([]types.SNMPVariable, error) {
	oid = common.NormalizeOID(oid)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.snmp == nil {
		return nil, types.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.snmp.SetContext(ctx)

	var (
		pdus []gosnmp.SnmpPDU
		err  error
	)
	if d.version == gosnmp.Version1 {
		pdus, err = d.snmp.WalkAll(oid)
	} else {
		pdus, err = d.snmp.BulkWalkAll(oid)
	}
	if err != nil {
		return nil, fmt.Errorf("SNMP WALK failed for OID %s: %w", oid, classify(err))
	}

	results := make([]types.SNMPVariable, 0, len(pdus))
	for _, pdu := range pdus {
		if isMissing(pdu.Type) {
			continue
		}
		name := common.NormalizeOID(pdu.Name)
		results = append(results, types.SNMPVariable{
			OID:   name,
			Index: common.OIDIndex(oid, name),
			Type:  pdu.Type.String(),
			Value: convertValue(pdu),
		})
	}

	return results, nil
}

// BulkGetSNMP implements types.SNMPExecutor - retrieves multiple OIDs
func (d *Driver) BulkGetSNMP(ctx context.Context, oids []string) (map[string]interface{}, error) {
	normalized := make([]string, len(oids))
	for i, oid := range oids {
		normalized[i] = common.NormalizeOID(oid)
	}

	result, err := d.get(ctx, normalized)
	if err != nil {
		return nil, err
	}

	results := make(map[string]interface{})
	for _, variable := range result.Variables {
		if isMissing(variable.Type) {
			continue
		}
		results[common.NormalizeOID(variable.Name)] = convertValue(variable)
	}

	return results, nil
}

func (d *Driver) get(ctx context.Context, oids []string) (*gosnmp.SnmpPacket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.snmp == nil {
		return nil, types.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.snmp.SetContext(ctx)

	result, err := d.snmp.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("SNMP GET failed for OID %s: %w", strings.Join(oids, ","), classify(err))
	}
	if result == nil {
		return nil, fmt.Errorf("SNMP GET for OID %s: empty response: %w", strings.Join(oids, ","), types.ErrSessionTimeout)
	}
	if result.Error != gosnmp.NoError {
		return nil, fmt.Errorf("SNMP GET for OID %s: agent error %v: %w", strings.Join(oids, ","), result.Error, types.ErrNoSuchObject)
	}

	return result, nil
}

// classify marks request failures as session timeouts. gosnmp reports every
// transport failure (retries exhausted, refused, unreachable) as a plain error.
func classify(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrSessionTimeout, err)
}

func isMissing(t gosnmp.Asn1BER) bool {
	return t == gosnmp.NoSuchObject || t == gosnmp.NoSuchInstance || t == gosnmp.EndOfMibView || t == gosnmp.Null
}

// convertValue maps a PDU to the value types documented on types.SNMPVariable.
func convertValue(pdu gosnmp.SnmpPDU) interface{} {
	switch pdu.Type {
	case gosnmp.OctetString, gosnmp.BitString, gosnmp.Opaque:
		if b, ok := pdu.Value.([]byte); ok {
			out := make([]byte, len(b))
			copy(out, b)
			return out
		}
		return pdu.Value
	case gosnmp.Integer:
		return gosnmp.ToBigInt(pdu.Value).Int64()
	case gosnmp.Counter32, gosnmp.Counter64, gosnmp.Gauge32, gosnmp.TimeTicks, gosnmp.Uinteger32:
		return gosnmp.ToBigInt(pdu.Value).Uint64()
	case gosnmp.ObjectIdentifier, gosnmp.IPAddress:
		if s, ok := pdu.Value.(string); ok {
			return common.NormalizeOID(s)
		}
		return pdu.Value
	default:
		return pdu.Value
	}
}

func parseVersion(v string) (gosnmp.SnmpVersion, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "v1":
		return gosnmp.Version1, nil
	case "", "2", "2c", "v2c":
		return gosnmp.Version2c, nil
	case "3", "v3":
		return gosnmp.Version3, nil
	default:
		return gosnmp.Version2c, fmt.Errorf("invalid SNMP version: %s", v)
	}
}

// Ensure Driver implements SNMPExecutor
var _ types.SNMPExecutor = (*Driver)(nil)
