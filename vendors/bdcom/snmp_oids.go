package bdcom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-outage/vendors/common"
)

// BDCOM EPON MIB OIDs (NMS-EPON-ONU-MIB / NMS-EPON-OLT-PON-MIB)
// Index layouts as exposed by P3608/P3616 series firmware.

const (
	// Enterprise OID prefix for BDCOM
	OIDBDCOMEnterprise = "1.3.6.1.4.1.3320"

	// Standard MIB-II System OIDs (RFC 1213)
	OIDSysDescr  = "1.3.6.1.2.1.1.1.0" // System description, matched against the model denylist
	OIDSysUpTime = "1.3.6.1.2.1.1.3.0" // System uptime in hundredths of seconds
	OIDSysName   = "1.3.6.1.2.1.1.5.0" // System name

	// Standard MIB-II interface table
	// Walk: branch table ("EPON0/1" at ifIndex of the PON port)
	// Get .<onuIfIndex>: ONU port binding ("EPON0/1:3")
	OIDIfDescr = "1.3.6.1.2.1.2.2.1.2"

	// ONU inventory. Values (not indexes) are the ONU ifIndex used as
	// suffix for the per-ONU tables below.
	OIDOnuInventory = "1.3.6.1.4.1.3320.101.9.1.1.1"

	// Per-ONU tables, index: <onuIfIndex>
	OIDOnuMAC    = "1.3.6.1.4.1.3320.101.10.1.1.3"  // OctetString, 6 bytes
	OIDOnuStatus = "1.3.6.1.4.1.3320.101.10.1.1.26" // Integer, see LookupONUStatus

	// Last deregistration tables, index: <branchIfIndex>.<mac as 6 decimal octets>
	OIDOnuLastDeregTime   = "1.3.6.1.4.1.3320.101.11.1.1.10" // OctetString, DateAndTime prefix
	OIDOnuLastDeregReason = "1.3.6.1.4.1.3320.101.11.1.1.11" // Integer, see LookupDeregReason
)

// ONUPortOID builds a per-ONU OID from a table base and an ONU ifIndex suffix.
func ONUPortOID(base, portIndex string) (string, error) {
	portIndex = common.NormalizeOID(portIndex)
	if !isNumericOID(portIndex) {
		return "", fmt.Errorf("invalid ONU port index %q", portIndex)
	}
	return common.JoinOID(base, portIndex), nil
}

// ONUDeregOID builds a last-deregistration OID from a table base, the branch
// ifIndex and the ONU MAC in colon-hex form.
//
// Example: ONUDeregOID(OIDOnuLastDeregTime, 12, "00:1a:2b:3c:4d:5e")
// returns "1.3.6.1.4.1.3320.101.11.1.1.10.12.0.26.43.60.77.94".
func ONUDeregOID(base string, branchIndex int, mac string) (string, error) {
	if branchIndex <= 0 {
		return "", fmt.Errorf("invalid branch index %d", branchIndex)
	}
	decimal, err := MACToDecimalOID(mac)
	if err != nil {
		return "", err
	}
	return common.JoinOID(base, strconv.Itoa(branchIndex), decimal), nil
}

func isNumericOID(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if _, err := strconv.ParseUint(part, 10, 32); err != nil {
			return false
		}
	}
	return true
}
