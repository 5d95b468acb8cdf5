package bdcom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nanoncore/nano-outage/types"
	"github.com/nanoncore/nano-outage/vendors/common"
)

// SplitPortBinding splits an ONU interface description of the form
// "<branch>:<onu>" (e.g., "EPON0/1:3").
func SplitPortBinding(desc string) (branch, onu string, err error) {
	parts := strings.Split(strings.TrimSpace(desc), ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", types.ErrMalformedPortBinding, desc)
	}
	return parts[0], parts[1], nil
}

// ResolveBranchIndex finds the ifIndex of the interface whose description is
// exactly name. The index is the last component of the matching OID.
func ResolveBranchIndex(name string, ifTable []types.SNMPVariable) (int, error) {
	for _, v := range ifTable {
		desc, ok := common.ParseStringSNMPValue(v.Value)
		if !ok || desc != name {
			continue
		}

		idx, err := strconv.Atoi(common.LastOIDComponent(v.OID))
		if err != nil {
			return 0, fmt.Errorf("interface %q has non-numeric index in %s: %w", name, v.OID, err)
		}
		return idx, nil
	}
	return 0, fmt.Errorf("%w: %q", types.ErrBranchNotFound, name)
}

// branchResolver caches branch lookups against one snapshot of the interface
// table. It lives for a single collection pass.
type branchResolver struct {
	ifTable  []types.SNMPVariable
	resolved map[string]int
	missing  map[string]error
}

func newBranchResolver(ifTable []types.SNMPVariable) *branchResolver {
	return &branchResolver{
		ifTable:  ifTable,
		resolved: make(map[string]int),
		missing:  make(map[string]error),
	}
}

func (r *branchResolver) resolve(name string) (int, error) {
	if idx, ok := r.resolved[name]; ok {
		return idx, nil
	}
	if err, ok := r.missing[name]; ok {
		return 0, err
	}

	idx, err := ResolveBranchIndex(name, r.ifTable)
	if err != nil {
		r.missing[name] = err
		return 0, err
	}
	r.resolved[name] = idx
	return idx, nil
}
