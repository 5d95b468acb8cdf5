// Package report writes detected mass-deregistration events.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nanoncore/nano-outage/model"
)

// Reporter writes the events found on one device in one pass.
// Implementations are safe for concurrent use by device tasks.
type Reporter interface {
	Report(device string, clusters []model.Cluster) error
}

// New returns a reporter for format ("text" or "json").
func New(format string, w io.Writer) (Reporter, error) {
	switch format {
	case "", "text":
		return NewTextReporter(w), nil
	case "json":
		return NewJSONReporter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// TextReporter writes one operator-readable line per cluster, under a
// per-device header. Devices without events produce no output.
type TextReporter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

func (r *TextReporter) Report(device string, clusters []model.Cluster) error {
	if len(clusters) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := fmt.Fprintf(r.w, "OLT %s\n", device); err != nil {
		return err
	}
	for _, c := range clusters {
		if _, err := fmt.Fprintf(r.w, "  branch %s: %d ONUs deregistered (wire-down) at %s\n",
			c.Label(), c.Size(), c.Start.Format(time.TimeOnly)); err != nil {
			return err
		}
	}
	return nil
}

// Event is the JSON-lines shape of one cluster.
type Event struct {
	Device      string   `json:"device"`
	Branch      string   `json:"branch"`
	BranchIndex int      `json:"branch_index"`
	Label       string   `json:"label"`
	Count       int      `json:"count"`
	WindowStart string   `json:"window_start"`
	WindowEnd   string   `json:"window_end"`
	Members     []Member `json:"members"`
}

// Member is one ONU of an Event.
type Member struct {
	ONU  string `json:"onu"`
	MAC  string `json:"mac"`
	Time string `json:"time"`
}

// wallClock renders device wall time without a zone designator; the OLT
// does not report one.
const wallClock = "2006-01-02T15:04:05"

// NewEvent converts a cluster to its JSON shape.
func NewEvent(c model.Cluster) Event {
	ev := Event{
		Device:      c.Device,
		Branch:      c.Branch,
		BranchIndex: c.BranchIndex,
		Label:       c.Label(),
		Count:       c.Size(),
		WindowStart: c.Start.Format(wallClock),
		WindowEnd:   c.End.Format(wallClock),
		Members:     make([]Member, 0, len(c.Members)),
	}
	for _, m := range c.Members {
		member := Member{ONU: m.ONUNumber, MAC: m.MAC}
		if m.Dereg != nil {
			member.Time = m.Dereg.Time.Format(wallClock)
		}
		ev.Members = append(ev.Members, member)
	}
	return ev
}

// JSONReporter writes one JSON object per cluster per line. The device
// passed to Report names the event, as in the text header.
type JSONReporter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w)}
}

func (r *JSONReporter) Report(device string, clusters []model.Cluster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range clusters {
		if device != "" {
			c.Device = device
		}
		if err := r.enc.Encode(NewEvent(c)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}
