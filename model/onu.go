// Package model contains domain types for ONU inventory and deregistration
// correlation. They carry no protocol details and are safe to hand between
// the collector, the correlation engine and reporters.
package model

import (
	"fmt"
	"time"
)

// ONUStatus is the registration state an OLT reports for an ONU.
type ONUStatus string

const (
	ONUStatusAuthenticated  ONUStatus = "authenticated"
	ONUStatusDeregistered   ONUStatus = "deregistered"
	ONUStatusLost           ONUStatus = "lost"
	ONUStatusAutoConfigured ONUStatus = "auto_configured"
	ONUStatusUnknown        ONUStatus = "unknown"
)

// DeregReason is the cause an OLT recorded for the last deregistration of an ONU.
type DeregReason string

const (
	ReasonUnknown          DeregReason = "unknown"
	ReasonNormal           DeregReason = "normal"
	ReasonMPCPDown         DeregReason = "mpcp-down"
	ReasonOAMDown          DeregReason = "oam-down"
	ReasonFirmwareDownload DeregReason = "firmware-download"
	ReasonIllegalMAC       DeregReason = "illegal-mac"
	ReasonAdminDown        DeregReason = "admin-down"
	ReasonWireDown         DeregReason = "wire-down"
	ReasonPowerOff         DeregReason = "power-off"

	// ReasonAbsent marks a reason code the lexicon has no entry for.
	// It is distinct from ReasonUnknown, which is a code the device itself reports.
	ReasonAbsent DeregReason = ""
)

// String returns the reason name, or "absent" for ReasonAbsent.
func (r DeregReason) String() string {
	if r == ReasonAbsent {
		return "absent"
	}
	return string(r)
}

// Deregistration holds the last deregistration metadata of an ONU.
type Deregistration struct {
	// Reason is the decoded reason, ReasonAbsent if the code is not in the lexicon
	Reason DeregReason `json:"reason"`

	// ReasonCode is the raw code as reported by the device
	ReasonCode int `json:"reason_code"`

	// Time is the deregistration time, second precision, no time zone implied
	Time time.Time `json:"time"`
}

// ONURecord describes one ONU as seen during a single polling pass.
type ONURecord struct {
	// Branch is the PON branch description (e.g., "EPON0/1")
	Branch string `json:"branch"`

	// BranchIndex is the ifIndex of the branch in the device interface table
	BranchIndex int `json:"branch_index"`

	// ONUNumber is the ONU number within its branch
	ONUNumber string `json:"onu_number"`

	// PortIndex is the ONU interface index used as the per-ONU OID suffix
	PortIndex string `json:"port_index"`

	// MAC is the ONU MAC address, lower-case colon-hex
	MAC string `json:"mac"`

	// Status is the registration status
	Status ONUStatus `json:"status"`

	// StatusCode is the raw status code
	StatusCode int `json:"status_code"`

	// Dereg is present if and only if Status is deregistered
	Dereg *Deregistration `json:"dereg,omitempty"`
}

// NewONURecord builds a record and enforces the status/deregistration pairing.
// dereg is dropped for any status other than deregistered; a deregistered ONU
// without deregistration data is rejected.
func NewONURecord(base ONURecord, dereg *Deregistration) (ONURecord, error) {
	rec := base
	rec.Dereg = nil
	if rec.Status == ONUStatusDeregistered {
		if dereg == nil {
			return ONURecord{}, fmt.Errorf("onu %s is deregistered but has no deregistration data", rec.PortIndex)
		}
		d := *dereg
		rec.Dereg = &d
	}
	return rec, nil
}

// Validate checks the status/deregistration invariant.
func (r *ONURecord) Validate() error {
	deregistered := r.Status == ONUStatusDeregistered
	if deregistered != (r.Dereg != nil) {
		return fmt.Errorf("onu %s: status %q inconsistent with deregistration data", r.PortIndex, r.Status)
	}
	return nil
}

// IsDeregistered returns true if the ONU carries deregistration metadata.
func (r *ONURecord) IsDeregistered() bool {
	return r.Dereg != nil
}

// DeregReason returns the deregistration reason, or ReasonAbsent.
func (r *ONURecord) DeregReason() DeregReason {
	if r.Dereg == nil {
		return ReasonAbsent
	}
	return r.Dereg.Reason
}
