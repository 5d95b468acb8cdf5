package common

import (
	"strconv"
	"strings"
)

// NormalizeOID returns an OID in the dotted-numeric form used as map keys and
// request identifiers: no leading or trailing dot, no empty components, and
// the symbolic "iso" root replaced by "1".
func NormalizeOID(oid string) string {
	oid = strings.TrimSpace(oid)
	if strings.HasPrefix(oid, "iso.") || oid == "iso" {
		oid = "1" + strings.TrimPrefix(oid, "iso")
	}

	parts := strings.Split(oid, ".")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

// JoinOID concatenates OID fragments into one normalized OID.
func JoinOID(parts ...string) string {
	return NormalizeOID(strings.Join(parts, "."))
}

// OIDIndex returns the part of oid below base, or "" if oid is not under base.
func OIDIndex(base, oid string) string {
	base = NormalizeOID(base)
	oid = NormalizeOID(oid)
	if !strings.HasPrefix(oid, base+".") {
		return ""
	}
	return oid[len(base)+1:]
}

// LastOIDComponent returns the final component of an OID.
func LastOIDComponent(oid string) string {
	oid = NormalizeOID(oid)
	if i := strings.LastIndexByte(oid, '.'); i >= 0 {
		return oid[i+1:]
	}
	return oid
}

// GetSNMPResult looks up an OID in SNMP results, handling the leading dot issue.
// gosnmp returns OIDs with a leading dot (e.g., ".1.3.6.1..."), but OID constants
// typically don't have the leading dot. This function tries both formats.
func GetSNMPResult(results map[string]interface{}, oid string) (interface{}, bool) {
	if results == nil {
		return nil, false
	}

	// Try with leading dot first (gosnmp format)
	if !strings.HasPrefix(oid, ".") {
		if val, ok := results["."+oid]; ok {
			return val, true
		}
	}

	// Try exact match
	if val, ok := results[oid]; ok {
		return val, true
	}

	// Try without leading dot
	if strings.HasPrefix(oid, ".") {
		if val, ok := results[strings.TrimPrefix(oid, ".")]; ok {
			return val, true
		}
	}

	return nil, false
}

// ParseIntSNMPValue extracts an int64 from various numeric types.
// Decimal strings are accepted too, since some agents report
// enumerations as DisplayString.
func ParseIntSNMPValue(value interface{}) (int64, bool) {
	if value == nil {
		return 0, false
	}

	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case []byte:
		return ParseIntSNMPValue(string(v))
	default:
		return 0, false
	}
}

// ParseStringSNMPValue extracts a string from SNMP result.
// Handles both string and []byte types.
func ParseStringSNMPValue(value interface{}) (string, bool) {
	if value == nil {
		return "", false
	}

	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// ParseBytesSNMPValue extracts the raw octets of an OctetString result.
// A string value is taken byte for byte, never re-encoded.
func ParseBytesSNMPValue(value interface{}) ([]byte, bool) {
	if value == nil {
		return nil, false
	}

	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
