package mock

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nanoncore/nano-outage/types"
	"github.com/nanoncore/nano-outage/vendors/bdcom"
	"github.com/nanoncore/nano-outage/vendors/common"
)

// DefaultSysDescr is the sysDescr of the simulated OLT
const DefaultSysDescr = "BDCOM(tm) P3608 Software, Version 10.1.0E Build 39585"

// Driver implements a mock southbound driver for testing
// It simulates a BDCOM EPON OLT SNMP agent without connecting to real equipment
type Driver struct {
	config      *types.EquipmentConfig
	connected   bool
	mu          sync.RWMutex
	values      map[string]interface{}
	failures    map[string]error
	branches    map[string]int
	unreachable bool
	latency     time.Duration
	reqHistory  []string
}

// SimulatedONU describes one ONU row of the simulated agent.
type SimulatedONU struct {
	// IfIndex is the ONU interface index, used as per-ONU OID suffix
	IfIndex int

	// Branch is the PON branch description (e.g., "EPON0/1")
	Branch string

	// ONUNumber is the ONU number on the branch
	ONUNumber int

	// MAC in colon-hex form
	MAC string

	// Status is the raw status code (2 = deregistered)
	Status int

	// Reason is the raw last-deregistration reason code
	Reason int

	// DeregTime is the last-deregistration wall time
	DeregTime time.Time
}

// NewDriver creates a new mock driver seeded with a demo OLT
func NewDriver(config *types.EquipmentConfig) (types.Driver, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	d := NewEmptyDriver(config)

	// Generate a simulated OLT with one fiber cut
	d.generateMockOLT(time.Now().Add(-2 * time.Minute).Truncate(time.Second))

	return d, nil
}

// NewEmptyDriver creates a mock driver whose agent only answers sysDescr.
func NewEmptyDriver(config *types.EquipmentConfig) *Driver {
	d := &Driver{
		config:     config,
		values:     make(map[string]interface{}),
		failures:   make(map[string]error),
		branches:   make(map[string]int),
		reqHistory: make([]string, 0),
	}
	d.values[bdcom.OIDSysDescr] = []byte(DefaultSysDescr)
	d.values[bdcom.OIDSysName] = []byte("mock-olt")
	d.values[bdcom.OIDSysUpTime] = uint64(8640000)
	return d
}

// Connect simulates connecting to equipment
func (d *Driver) Connect(ctx context.Context, config *types.EquipmentConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if config != nil {
		d.config = config
	}

	// Simulate connection delay
	if d.latency > 0 {
		select {
		case <-time.After(d.latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	d.connected = true
	d.recordRequest("connect")

	return nil
}

// Disconnect closes the simulated connection
func (d *Driver) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.connected = false
	d.recordRequest("disconnect")

	return nil
}

// IsConnected returns connection status
func (d *Driver) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// HealthCheck performs a simulated health check
func (d *Driver) HealthCheck(ctx context.Context) error {
	_, err := d.GetSNMP(ctx, bdcom.OIDSysDescr)
	return err
}

// GetSNMP implements types.SNMPExecutor
func (d *Driver) GetSNMP(ctx context.Context, oid string) (interface{}, error) {
	oid = common.NormalizeOID(oid)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.precheck(ctx, "get "+oid); err != nil {
		return nil, err
	}
	if err := d.failures[oid]; err != nil {
		return nil, err
	}

	v, ok := d.values[oid]
	if !ok {
		return nil, fmt.Errorf("OID %s: %w", oid, types.ErrNoSuchObject)
	}
	return v, nil
}

// WalkSNMP implements types.SNMPExecutor. Varbinds come back in OID order.
func (d *Driver) WalkSNMP(ctx context.Context, oid string) ([]types.SNMPVariable, error) {
	oid = common.NormalizeOID(oid)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.precheck(ctx, "walk "+oid); err != nil {
		return nil, err
	}
	if err := d.failures[oid]; err != nil {
		return nil, err
	}

	var names []string
	for name := range d.values {
		if common.OIDIndex(oid, name) != "" {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return compareOID(names[i], names[j]) < 0 })

	results := make([]types.SNMPVariable, 0, len(names))
	for _, name := range names {
		results = append(results, types.SNMPVariable{
			OID:   name,
			Index: common.OIDIndex(oid, name),
			Type:  typeName(d.values[name]),
			Value: d.values[name],
		})
	}
	return results, nil
}

// BulkGetSNMP implements types.SNMPExecutor. OIDs the agent does not know are
// left out of the result; a failing OID fails the whole request.
func (d *Driver) BulkGetSNMP(ctx context.Context, oids []string) (map[string]interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	normalized := make([]string, len(oids))
	for i, oid := range oids {
		normalized[i] = common.NormalizeOID(oid)
	}

	if err := d.precheck(ctx, "get "+strings.Join(normalized, ",")); err != nil {
		return nil, err
	}

	results := make(map[string]interface{})
	for _, oid := range normalized {
		if err := d.failures[oid]; err != nil {
			return nil, err
		}
		if v, ok := d.values[oid]; ok {
			results[oid] = v
		}
	}
	return results, nil
}

// SetValue stores a value in the simulated agent.
func (d *Driver) SetValue(oid string, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[common.NormalizeOID(oid)] = value
}

// DeleteValue removes a value from the simulated agent.
func (d *Driver) DeleteValue(oid string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.values, common.NormalizeOID(oid))
}

// FailOID makes every request touching oid fail with err. A nil err clears it.
func (d *Driver) FailOID(oid string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	oid = common.NormalizeOID(oid)
	if err == nil {
		delete(d.failures, oid)
		return
	}
	d.failures[oid] = err
}

// SetUnreachable makes every request time out.
func (d *Driver) SetUnreachable(unreachable bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unreachable = unreachable
}

// SetLatency sets a per-request delay.
func (d *Driver) SetLatency(latency time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latency = latency
}

// SetSysDescr overrides the simulated sysDescr.
func (d *Driver) SetSysDescr(desc string) {
	d.SetValue(bdcom.OIDSysDescr, []byte(desc))
}

// AddBranch registers a PON branch in the interface table.
func (d *Driver) AddBranch(name string, ifIndex int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.branches[name] = ifIndex
	d.values[common.JoinOID(bdcom.OIDIfDescr, strconv.Itoa(ifIndex))] = []byte(name)
}

// AddONU registers an ONU. Deregistration data is stored only when the branch
// is known, mirroring an agent that indexes it by branch ifIndex.
func (d *Driver) AddONU(onu SimulatedONU) error {
	hw, err := net.ParseMAC(onu.MAC)
	if err != nil || len(hw) != 6 {
		return fmt.Errorf("invalid MAC %q: %w", onu.MAC, types.ErrMalformedAddress)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	suffix := strconv.Itoa(onu.IfIndex)
	d.values[common.JoinOID(bdcom.OIDOnuInventory, suffix)] = int64(onu.IfIndex)
	d.values[common.JoinOID(bdcom.OIDIfDescr, suffix)] = []byte(fmt.Sprintf("%s:%d", onu.Branch, onu.ONUNumber))
	d.values[common.JoinOID(bdcom.OIDOnuMAC, suffix)] = []byte(hw)
	d.values[common.JoinOID(bdcom.OIDOnuStatus, suffix)] = int64(onu.Status)

	branchIndex, ok := d.branches[onu.Branch]
	if !ok {
		return nil
	}

	reasonOID, err := bdcom.ONUDeregOID(bdcom.OIDOnuLastDeregReason, branchIndex, onu.MAC)
	if err != nil {
		return err
	}
	timeOID, err := bdcom.ONUDeregOID(bdcom.OIDOnuLastDeregTime, branchIndex, onu.MAC)
	if err != nil {
		return err
	}
	if !onu.DeregTime.IsZero() {
		d.values[reasonOID] = int64(onu.Reason)
		d.values[timeOID] = EncodeDateAndTime(onu.DeregTime)
	}

	return nil
}

// GetRequestHistory returns the requests the agent answered
func (d *Driver) GetRequestHistory() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]string, len(d.reqHistory))
	copy(result, d.reqHistory)
	return result
}

// EncodeDateAndTime renders t in the SNMPv2-TC DateAndTime layout used by
// the deregistration time table: 2-byte year, month, day, hour, minute,
// second, deci-seconds, then a zero UTC offset.
func EncodeDateAndTime(t time.Time) []byte {
	b := make([]byte, 11)
	binary.BigEndian.PutUint16(b[0:2], uint16(t.Year())) //nolint:gosec // calendar year
	b[2] = byte(t.Month())
	b[3] = byte(t.Day())
	b[4] = byte(t.Hour())
	b[5] = byte(t.Minute())
	b[6] = byte(t.Second())
	b[7] = 0
	b[8] = '+'
	return b
}

// precheck must be called with mu held.
func (d *Driver) precheck(ctx context.Context, req string) error {
	if !d.connected {
		return types.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.latency > 0 {
		select {
		case <-time.After(d.latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if d.unreachable {
		return fmt.Errorf("%s: request timeout (after %d retries): %w", req, d.config.Retries, types.ErrSessionTimeout)
	}
	d.recordRequest(req)
	return nil
}

func (d *Driver) recordRequest(req string) {
	d.reqHistory = append(d.reqHistory, req)
}

// generateMockOLT seeds three branches: a fiber cut on EPON0/1, a power
// outage on EPON0/2 and isolated churn on EPON0/3.
func (d *Driver) generateMockOLT(base time.Time) {
	d.AddBranch("EPON0/1", 12)
	d.AddBranch("EPON0/2", 13)
	d.AddBranch("EPON0/3", 14)

	onus := []SimulatedONU{
		{IfIndex: 60, Branch: "EPON0/1", ONUNumber: 1, MAC: "00:1a:2b:3c:4d:01", Status: 2, Reason: 8, DeregTime: base},
		{IfIndex: 61, Branch: "EPON0/1", ONUNumber: 2, MAC: "00:1a:2b:3c:4d:02", Status: 2, Reason: 8, DeregTime: base.Add(1 * time.Second)},
		{IfIndex: 62, Branch: "EPON0/1", ONUNumber: 3, MAC: "00:1a:2b:3c:4d:03", Status: 2, Reason: 8, DeregTime: base.Add(2 * time.Second)},
		{IfIndex: 63, Branch: "EPON0/1", ONUNumber: 4, MAC: "00:1a:2b:3c:4d:04", Status: 0},
		{IfIndex: 64, Branch: "EPON0/2", ONUNumber: 1, MAC: "00:1a:2b:3c:4e:01", Status: 2, Reason: 8, DeregTime: base},
		{IfIndex: 65, Branch: "EPON0/2", ONUNumber: 2, MAC: "00:1a:2b:3c:4e:02", Status: 2, Reason: 8, DeregTime: base.Add(1 * time.Second)},
		{IfIndex: 66, Branch: "EPON0/2", ONUNumber: 3, MAC: "00:1a:2b:3c:4e:03", Status: 2, Reason: 9, DeregTime: base.Add(1 * time.Second)},
		{IfIndex: 67, Branch: "EPON0/3", ONUNumber: 1, MAC: "00:1a:2b:3c:4f:01", Status: 2, Reason: 8, DeregTime: base.Add(-time.Hour)},
		{IfIndex: 68, Branch: "EPON0/3", ONUNumber: 2, MAC: "00:1a:2b:3c:4f:02", Status: 4},
	}
	for _, onu := range onus {
		_ = d.AddONU(onu)
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case []byte, string:
		return "OctetString"
	case int, int32, int64:
		return "Integer"
	case uint64:
		return "Counter64"
	default:
		return "Unknown"
	}
}

// compareOID orders OIDs component by component, as an agent walks them.
func compareOID(a, b string) int {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		na, _ := strconv.ParseUint(pa[i], 10, 64)
		nb, _ := strconv.ParseUint(pb[i], 10, 64)
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
	}
	return len(pa) - len(pb)
}

// Ensure Driver implements SNMPExecutor
var _ types.SNMPExecutor = (*Driver)(nil)
