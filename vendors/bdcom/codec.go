package bdcom

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nanoncore/nano-outage/types"
)

const (
	macLength      = 6
	deregTimeBytes = 7
)

// DecodeMAC renders the first six bytes of an ONU MAC payload as lower-case
// colon-hex. Trailing bytes are ignored.
func DecodeMAC(raw []byte) (string, error) {
	if len(raw) < macLength {
		return "", fmt.Errorf("%w: got %d bytes, need %d", types.ErrMalformedAddress, len(raw), macLength)
	}

	parts := make([]string, macLength)
	for i := 0; i < macLength; i++ {
		parts[i] = fmt.Sprintf("%02x", raw[i])
	}
	return strings.Join(parts, ":"), nil
}

// MACToDecimalOID converts a colon-hex MAC into the six dot-separated decimal
// octets used as an OID index (e.g., "00:1a:2b:3c:4d:5e" -> "0.26.43.60.77.94").
func MACToDecimalOID(mac string) (string, error) {
	parts := strings.Split(strings.TrimSpace(mac), ":")
	if len(parts) != macLength {
		return "", fmt.Errorf("%w: %q is not six colon-separated octets", types.ErrMalformedAddress, mac)
	}

	out := make([]string, macLength)
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 {
			return "", fmt.Errorf("%w: bad octet %q in %q", types.ErrMalformedAddress, p, mac)
		}
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return "", fmt.Errorf("%w: bad octet %q in %q", types.ErrMalformedAddress, p, mac)
		}
		out[i] = strconv.FormatUint(v, 10)
	}
	return strings.Join(out, "."), nil
}

// DecodeDeregTime decodes the last-deregistration time: a 2-byte big-endian
// year followed by month, day, hour, minute and second, one byte each.
// Bytes past the seventh (deci-seconds, UTC offset) are ignored.
//
// The device clock carries no reliable zone, so the result is a naive wall
// time placed in time.UTC and must never be converted.
func DecodeDeregTime(raw []byte) (time.Time, error) {
	if len(raw) < deregTimeBytes {
		return time.Time{}, fmt.Errorf("%w: got %d bytes, need %d", types.ErrTruncatedTimestamp, len(raw), deregTimeBytes)
	}

	year := int(binary.BigEndian.Uint16(raw[0:2]))
	month := int(raw[2])
	day := int(raw[3])
	hour := int(raw[4])
	minute := int(raw[5])
	second := int(raw[6])

	if year < 1 || month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("%w: invalid calendar value %04d-%02d-%02d %02d:%02d:%02d",
			types.ErrTruncatedTimestamp, year, month, day, hour, minute, second)
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	// time.Date normalizes overflow (e.g., Feb 30 -> Mar 2)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: invalid day %d for %04d-%02d", types.ErrTruncatedTimestamp, day, year, month)
	}
	return t, nil
}
