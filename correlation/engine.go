// Package correlation finds mass-deregistration events in an ONU inventory.
//
// A fiber cut takes down every ONU behind the cut within a few seconds, and
// the OLT records "wire-down" for each of them. Runs of wire-down
// deregistrations on the same branch whose consecutive timestamps lie within
// the threshold are reported as clusters. A branch where any ONU reports
// "power-off" is left out entirely: a site power failure produces the same
// pattern without a fiber fault.
package correlation

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/nanoncore/nano-outage/logger"
	"github.com/nanoncore/nano-outage/model"
)

const (
	// DefaultThreshold is the largest gap between consecutive deregistrations of one cluster
	DefaultThreshold = 3 * time.Second

	// DefaultMinClusterSize is the smallest number of ONUs reported as an event
	DefaultMinClusterSize = 2
)

// Engine clusters wire-down deregistrations per branch.
type Engine struct {
	Threshold      time.Duration
	MinClusterSize int

	logger zerolog.Logger
}

// New returns an engine. Non-positive arguments fall back to the defaults.
func New(threshold time.Duration, minClusterSize int) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if minClusterSize < 2 {
		minClusterSize = DefaultMinClusterSize
	}
	return &Engine{
		Threshold:      threshold,
		MinClusterSize: minClusterSize,
		logger:         logger.WithComponent("correlation"),
	}
}

// SetLogger replaces the engine logger.
func (e *Engine) SetLogger(l zerolog.Logger) {
	e.logger = l
}

// FindMassEvents returns the clusters of every branch of inv, branches in
// name order and clusters in time order within a branch.
func (e *Engine) FindMassEvents(inv *model.Inventory) []model.Cluster {
	if inv == nil {
		return nil
	}

	var clusters []model.Cluster
	for _, name := range inv.BranchNames() {
		if inv.IsExcluded(name) {
			continue
		}
		clusters = append(clusters, e.AnalyzeBranch(inv.Device, inv.Branches[name])...)
	}
	return clusters
}

// AnalyzeBranch clusters the wire-down deregistrations of a single branch.
func (e *Engine) AnalyzeBranch(device string, b *model.Branch) []model.Cluster {
	if b == nil {
		return nil
	}

	// zero-value or hand-set engines never report a lone ONU
	threshold := e.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	minSize := max(e.MinClusterSize, DefaultMinClusterSize)

	var wireDown []model.ONURecord
	powerOff := 0
	for _, rec := range b.ONUs {
		switch rec.DeregReason() {
		case model.ReasonWireDown:
			wireDown = append(wireDown, rec)
		case model.ReasonPowerOff:
			powerOff++
		}
	}

	if len(wireDown) < minSize {
		return nil
	}
	if powerOff > 0 {
		e.logger.Debug().
			Str("device", device).
			Str("branch", b.Name).
			Int("wire_down", len(wireDown)).
			Int("power_off", powerOff).
			Msg("Power-off deregistrations on branch, skipping correlation")
		return nil
	}

	sort.SliceStable(wireDown, func(i, j int) bool {
		return wireDown[i].Dereg.Time.Before(wireDown[j].Dereg.Time)
	})

	var clusters []model.Cluster
	start := 0
	for i := 1; i <= len(wireDown); i++ {
		if i < len(wireDown) && wireDown[i].Dereg.Time.Sub(wireDown[i-1].Dereg.Time) <= threshold {
			continue
		}
		// wireDown[start:i] is a maximal run
		if i-start >= minSize {
			members := make([]model.ONURecord, i-start)
			copy(members, wireDown[start:i])
			clusters = append(clusters, model.Cluster{
				Device:      device,
				Branch:      b.Name,
				BranchIndex: b.Index,
				Members:     members,
				Start:       members[0].Dereg.Time,
				End:         members[len(members)-1].Dereg.Time,
			})
		}
		start = i
	}

	return clusters
}
