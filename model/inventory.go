package model

import (
	"fmt"
	"sort"
)

// Branch is a PON branch and the ONUs discovered on it, in discovery order.
type Branch struct {
	// Name is the branch description as found in ifDescr (e.g., "EPON0/1")
	Name string `json:"name"`

	// Index is the branch ifIndex; identity for correlation purposes
	Index int `json:"index"`

	// ONUs are the records collected for this branch
	ONUs []ONURecord `json:"onus"`
}

// ONUError records a failure isolated to a single ONU during a pass.
type ONUError struct {
	// PortIndex is the ONU suffix that failed
	PortIndex string `json:"port_index"`

	// Branch is the branch name if it was already known
	Branch string `json:"branch,omitempty"`

	// Stage names the fetch or decode step that failed (e.g., "mac", "dereg_time")
	Stage string `json:"stage"`

	// Err is the underlying error
	Err error `json:"-"`
}

func (e *ONUError) Error() string {
	if e.Branch != "" {
		return fmt.Sprintf("onu %s on %s: %s: %v", e.PortIndex, e.Branch, e.Stage, e.Err)
	}
	return fmt.Sprintf("onu %s: %s: %v", e.PortIndex, e.Stage, e.Err)
}

func (e *ONUError) Unwrap() error {
	return e.Err
}

// Inventory is the result of one collection pass on one device.
// It is built fresh for every pass and never reused.
type Inventory struct {
	// Device is the device address
	Device string `json:"device"`

	// Branches maps branch name to branch
	Branches map[string]*Branch `json:"branches"`

	// Order holds branch names in order of first discovery
	Order []string `json:"order"`

	// Errors are the per-ONU failures that were isolated during the pass
	Errors []ONUError `json:"errors,omitempty"`

	// Excluded are branch names that could not be resolved and were left out
	Excluded []string `json:"excluded,omitempty"`
}

// NewInventory returns an empty inventory for a device.
func NewInventory(device string) *Inventory {
	return &Inventory{
		Device:   device,
		Branches: make(map[string]*Branch),
	}
}

// Branch returns the named branch, inserting it if absent.
func (inv *Inventory) Branch(name string, index int) *Branch {
	if b, ok := inv.Branches[name]; ok {
		return b
	}
	b := &Branch{Name: name, Index: index}
	inv.Branches[name] = b
	inv.Order = append(inv.Order, name)
	return b
}

// AddONU appends a record to its branch, inserting the branch if absent.
func (inv *Inventory) AddONU(rec ONURecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	b := inv.Branch(rec.Branch, rec.BranchIndex)
	b.ONUs = append(b.ONUs, rec)
	return nil
}

// AddError records an isolated per-ONU failure.
func (inv *Inventory) AddError(e ONUError) {
	inv.Errors = append(inv.Errors, e)
}

// Exclude marks a branch as unresolvable for this pass.
func (inv *Inventory) Exclude(name string) {
	for _, n := range inv.Excluded {
		if n == name {
			return
		}
	}
	inv.Excluded = append(inv.Excluded, name)
}

// IsExcluded reports whether a branch was excluded.
func (inv *Inventory) IsExcluded(name string) bool {
	for _, n := range inv.Excluded {
		if n == name {
			return true
		}
	}
	return false
}

// BranchNames returns branch names sorted lexically.
func (inv *Inventory) BranchNames() []string {
	names := make([]string, 0, len(inv.Branches))
	for name := range inv.Branches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ONUCount returns the number of collected records across all branches.
func (inv *Inventory) ONUCount() int {
	n := 0
	for _, b := range inv.Branches {
		n += len(b.ONUs)
	}
	return n
}
