// Package poller decides which requested inputs are ready to be opened.
package poller

import (
	"os"

	"github.com/GriffinCanCode/mavg/internal/stream"
)

// Availability reports whether an input identifier can be opened now.
// Implementations must not block.
type Availability interface {
	Available(id string) bool
}

// AvailabilityFunc adapts a plain function to Availability.
type AvailabilityFunc func(id string) bool

// Available calls f(id).
func (f AvailabilityFunc) Available(id string) bool { return f(id) }

// FileAvailability treats the stdin sentinel as always ready and any other
// identifier as ready once a filesystem entry exists at that path.
type FileAvailability struct{}

// Available performs a single existence check.
func (FileAvailability) Available(id string) bool {
	if id == stream.Sentinel {
		return true
	}
	_, err := os.Stat(id)
	return err == nil
}

// Poller scans candidate identifiers against an Availability predicate.
type Poller struct {
	avail Availability
}

// New creates a Poller. A nil predicate means FileAvailability.
func New(avail Availability) *Poller {
	if avail == nil {
		avail = FileAvailability{}
	}
	return &Poller{avail: avail}
}

// Scan returns the candidates that are available now, in candidate order.
// Each candidate is checked exactly once; there are no retries here.
func (p *Poller) Scan(candidates []string) []string {
	var ready []string
	for _, id := range candidates {
		if p.avail.Available(id) {
			ready = append(ready, id)
		}
	}
	return ready
}
