package model

import (
	"strings"
	"time"
)

// Cluster is a candidate mass-outage event: wire-down deregistrations on one
// branch whose times lie within the correlation threshold of each other.
type Cluster struct {
	// Device is the OLT address
	Device string `json:"device"`

	// Branch is the branch description
	Branch string `json:"branch"`

	// BranchIndex is the branch ifIndex
	BranchIndex int `json:"branch_index"`

	// Members are the ONUs in the cluster, sorted by deregistration time
	Members []ONURecord `json:"members"`

	// Start is the earliest deregistration time in the cluster
	Start time.Time `json:"window_start"`

	// End is the latest deregistration time in the cluster
	End time.Time `json:"window_end"`
}

// Size returns the member count.
func (c *Cluster) Size() int {
	return len(c.Members)
}

// Label returns the short branch label used in operator output.
func (c *Cluster) Label() string {
	return BranchLabel(c.Branch)
}

// BranchLabel shortens a branch description to the part after the first "/"
// (e.g., "EPON0/1" -> "1"). Names without a "/" are returned trimmed.
func BranchLabel(name string) string {
	if _, after, ok := strings.Cut(name, "/"); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(name)
}
