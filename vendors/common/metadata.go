package common

import "strconv"

// Metadata keys understood by the drivers in EquipmentConfig.Metadata.
const (
	MetaSNMPVersion   = "snmp_version"
	MetaSNMPCommunity = "snmp_community"
	MetaMaxRepetition = "snmp_max_repetitions"
)

// GetMetadataString retrieves a string value from equipment metadata with optional fallback keys.
// Keys are checked in order - first match wins.
func GetMetadataString(metadata map[string]string, keys ...string) (string, bool) {
	if metadata == nil {
		return "", false
	}
	for _, key := range keys {
		if value, ok := metadata[key]; ok {
			return value, true
		}
	}
	return "", false
}

// GetMetadataInt retrieves an integer value from equipment metadata.
// Values that do not parse are skipped so a later fallback key can match.
func GetMetadataInt(metadata map[string]string, keys ...string) (int, bool) {
	if metadata == nil {
		return 0, false
	}
	for _, key := range keys {
		if valueStr, ok := metadata[key]; ok {
			if value, err := strconv.Atoi(valueStr); err == nil {
				return value, true
			}
		}
	}
	return 0, false
}

// GetMetadataStringWithDefault retrieves a string from metadata, or returns defaultValue.
func GetMetadataStringWithDefault(metadata map[string]string, defaultValue string, keys ...string) string {
	if value, ok := GetMetadataString(metadata, keys...); ok && value != "" {
		return value
	}
	return defaultValue
}

// GetMetadataIntWithDefault retrieves an integer from metadata, or returns defaultValue.
func GetMetadataIntWithDefault(metadata map[string]string, defaultValue int, keys ...string) int {
	if value, ok := GetMetadataInt(metadata, keys...); ok {
		return value
	}
	return defaultValue
}
