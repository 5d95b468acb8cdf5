package types

import (
	"errors"
	"fmt"
)

// Error kinds shared by drivers, vendor adapters and the poller.
// Callers classify with errors.Is; producers wrap with %w.
var (
	// ErrSessionTimeout means the device did not answer within the configured
	// timeout or the transport failed. Recoverable: skip the device this cycle.
	ErrSessionTimeout = errors.New("snmp session timeout")

	// ErrMalformedPortBinding means an ONU interface description had no "branch:onu" form.
	ErrMalformedPortBinding = errors.New("malformed port binding")

	// ErrMalformedAddress means a hardware address payload was shorter than 6 bytes
	// or a colon-hex MAC could not be parsed.
	ErrMalformedAddress = errors.New("malformed hardware address")

	// ErrTruncatedTimestamp means a deregistration time payload was shorter than 7 bytes
	// or did not describe a valid calendar time.
	ErrTruncatedTimestamp = errors.New("truncated timestamp")

	// ErrBranchNotFound means no interface table entry matched a branch description.
	ErrBranchNotFound = errors.New("branch not found in interface table")

	// ErrModelNotSupported means the device model is on the denylist.
	ErrModelNotSupported = errors.New("device model not supported")

	// ErrNoSuchObject means the agent has no value at the requested OID.
	ErrNoSuchObject = errors.New("no such object")

	// ErrNotConnected is returned by drivers used before Connect.
	ErrNotConnected = errors.New("not connected to device")
)

// IsRecoverable returns true if the error should be retried on a later cycle
// rather than treated as fatal.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrSessionTimeout) || errors.Is(err, ErrNotConnected)
}

// IsDecodeError returns true for per-ONU data errors that must be isolated
// to the ONU that produced them.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrMalformedPortBinding) ||
		errors.Is(err, ErrMalformedAddress) ||
		errors.Is(err, ErrTruncatedTimestamp)
}

// HumanError wraps device errors with human-readable context.
type HumanError struct {
	// Code is the normalized error code (e.g., "TIMEOUT")
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Action is the suggested remediation action
	Action string `json:"action,omitempty"`

	// Device is the device address that produced the error
	Device string `json:"device"`

	// Err is the underlying error
	Err error `json:"-"`

	// Recoverable indicates if this error should be retried
	Recoverable bool `json:"recoverable"`
}

// Error implements the error interface.
func (e *HumanError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("[%s] %s: %s (Suggestion: %s)", e.Device, e.Code, e.Message, e.Action)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Device, e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *HumanError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeTimeout     = "TIMEOUT"
	ErrCodeUnsupported = "MODEL_UNSUPPORTED"
	ErrCodeConnect     = "CONNECT_FAILED"
	ErrCodeCollect     = "COLLECT_FAILED"
	ErrCodeUnknown     = "UNKNOWN_ERROR"
)

// Humanize converts a device-level error into a HumanError with a suggested action.
func Humanize(device string, err error) *HumanError {
	if err == nil {
		return nil
	}
	var he *HumanError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, ErrSessionTimeout):
		return &HumanError{
			Code:        ErrCodeTimeout,
			Message:     "Connection timeout, skipping this device",
			Action:      "Check network reachability, firewall rules and that the SNMP service is enabled",
			Device:      device,
			Err:         err,
			Recoverable: true,
		}
	case errors.Is(err, ErrModelNotSupported):
		return &HumanError{
			Code:    ErrCodeUnsupported,
			Message: "Device model is not supported",
			Device:  device,
			Err:     err,
		}
	case errors.Is(err, ErrNoSuchObject):
		return &HumanError{
			Code:    ErrCodeCollect,
			Message: "Device did not return a required object",
			Action:  "Check that the SNMP view exposes the ONU and interface tables",
			Device:  device,
			Err:     err,
		}
	case errors.Is(err, ErrNotConnected):
		return &HumanError{
			Code:        ErrCodeConnect,
			Message:     "Session could not be established",
			Action:      "Verify address and SNMP credentials",
			Device:      device,
			Err:         err,
			Recoverable: true,
		}
	default:
		return &HumanError{
			Code:    ErrCodeUnknown,
			Message: err.Error(),
			Device:  device,
			Err:     err,
		}
	}
}
