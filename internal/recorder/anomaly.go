package recorder

import (
	"fmt"
	"strings"
)

// Handle is an API object handle as issued by the driver. Values are
// recycled, so a Handle alone does not identify a command buffer.
type Handle uint64

// Identity is a handle plus the number of times that handle value has been
// freed before. Two recordings with different identities never share a
// record index sequence position.
type Identity struct {
	Handle     Handle
	Generation uint32
}

func (id Identity) String() string {
	return fmt.Sprintf("0x%X#%d", uint64(id.Handle), id.Generation)
}

// Anomaly flags suspicious API usage on a record. It is never an error.
type Anomaly uint8

const (
	// AnomalyImplicitReopen: Begin on a handle that was still recording.
	AnomalyImplicitReopen Anomaly = 1 << iota
	// AnomalyOrphanedCommand: command recorded on a closed handle.
	AnomalyOrphanedCommand
	// AnomalyUnmatchedEnd: End on a closed handle.
	AnomalyUnmatchedEnd
	// AnomalyArgsIncomplete: the argument builder panicked, or logged
	// arguments could not be read back.
	AnomalyArgsIncomplete
)

var anomalyNames = []struct {
	flag Anomaly
	name string
}{
	{AnomalyImplicitReopen, "implicit_reopen"},
	{AnomalyOrphanedCommand, "orphaned_command"},
	{AnomalyUnmatchedEnd, "unmatched_end"},
	{AnomalyArgsIncomplete, "args_incomplete"},
}

// AllAnomalies lists every flag in display order.
func AllAnomalies() []Anomaly {
	out := make([]Anomaly, len(anomalyNames))
	for i, a := range anomalyNames {
		out[i] = a.flag
	}
	return out
}

func (a Anomaly) Has(flag Anomaly) bool { return a&flag != 0 }

// Names returns the names of the set flags.
func (a Anomaly) Names() []string {
	var out []string
	for _, n := range anomalyNames {
		if a.Has(n.flag) {
			out = append(out, n.name)
		}
	}
	return out
}

func (a Anomaly) String() string {
	if a == 0 {
		return "none"
	}
	return strings.Join(a.Names(), "|")
}
