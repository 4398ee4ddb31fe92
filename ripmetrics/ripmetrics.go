// Package ripmetrics holds process-lifetime counters for a running router.
// Every counter is observational: the control loop updates them, but no
// decision in wire, table, or router reads one back. Losing this package
// would not change convergence behavior, only the debug log line
// router.Router.periodicTick emits once per tick via Counters.String.
package ripmetrics

import (
	"fmt"

	"github.com/jackyisme123/RIP-v2/counter"
)

// Counters tallies the events the control loop cares about at a glance.
type Counters struct {
	PacketsSent      *counter.Counter
	PacketsReceived  *counter.Counter
	PacketsDropped   *counter.Counter
	TriggeredUpdates *counter.Counter
	RoutesTimedOut   *counter.Counter
	RoutesReaped     *counter.Counter
}

// New returns a zeroed set of counters.
func New() *Counters {
	return &Counters{
		PacketsSent:      counter.New(),
		PacketsReceived:  counter.New(),
		PacketsDropped:   counter.New(),
		TriggeredUpdates: counter.New(),
		RoutesTimedOut:   counter.New(),
		RoutesReaped:     counter.New(),
	}
}

// String implements fmt.Stringer for a single debug log line.
func (c *Counters) String() string {
	return fmt.Sprintf(
		"sent=%s received=%s dropped=%s triggered=%s timed_out=%s reaped=%s",
		c.PacketsSent, c.PacketsReceived, c.PacketsDropped,
		c.TriggeredUpdates, c.RoutesTimedOut, c.RoutesReaped,
	)
}
