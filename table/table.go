// Package table implements the routing table: its entries, the
// Bellman-Ford-style update rule applied to candidates from received
// updates, and the timeout/garbage-collection scans that age and reap
// dead routes. Every exported method here is meant to be called only
// from the single-threaded control loop in package router — nothing in
// this package synchronizes its own access.
package table

import (
	"time"

	"github.com/jackyisme123/RIP-v2/ripmetrics"
	"github.com/jackyisme123/RIP-v2/wire"
)

// Entry holds one destination's routing state.
type Entry struct {
	// Dest is the destination router id this entry describes.
	Dest int
	// FirstHop is the neighbor id this route is taken through; equals
	// the owning router's own id for directly-configured routes.
	FirstHop int
	// Metric is the cost to Dest, clamped to [0, wire.Infinity].
	Metric int
	// LastRefresh is the last time this entry was installed, refreshed
	// by an authoritative re-advertisement, or improved by relaxation.
	LastRefresh time.Time
	// GCDeadline is the time after which a garbage-collected entry must
	// be removed. The zero Time means "not in GC".
	GCDeadline time.Time
	// Active is true while this is a live route, false once it has
	// entered the garbage-collection phase.
	Active bool
}

// inGC reports whether e has a garbage-collection deadline set.
func (e Entry) inGC() bool {
	return !e.GCDeadline.IsZero()
}

// Table is the routing table: a map from destination router id to route
// entry. The owning router's own id is never a key.
type Table struct {
	selfID  int
	entries map[int]Entry
	metrics *ripmetrics.Counters
}

// New creates an empty table for the router identified by selfID. metrics
// may be nil; every increment is skipped when it is.
func New(selfID int, metrics *ripmetrics.Counters) *Table {
	return &Table{
		selfID:  selfID,
		entries: make(map[int]Entry),
		metrics: metrics,
	}
}

// Get returns the current entry for dest, if any.
func (t *Table) Get(dest int) (Entry, bool) {
	e, ok := t.entries[dest]
	return e, ok
}

// Snapshot returns every entry currently in the table, in no particular
// order, including entries in the garbage-collection phase — outbound
// advertisement sends every entry, live or dying.
func (t *Table) Snapshot() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	return out
}

// InstallDirect installs a directly-configured route: first_hop is the
// owning router itself and the metric is the configured link cost. Used
// once at startup per configured neighbor link; bypasses the update rule
// since there is no "current entry" to compare against yet.
func (t *Table) InstallDirect(dest, cost int, now time.Time) {
	if dest == t.selfID {
		return
	}
	t.entries[dest] = Entry{
		Dest:        dest,
		FirstHop:    t.selfID,
		Metric:      cost,
		LastRefresh: now,
		Active:      true,
	}
}

// Refresh bumps an existing entry's LastRefresh without touching its
// metric or first_hop, the liveness signal a direct neighbor link gets
// every time that neighbor's own advertisement echoes a route back to us
// (it is, from the neighbor's side, just its ordinary directly-configured
// entry for reaching this router). If no entry exists yet for dest — a
// direct neighbor link being revived after a full GC reap — it is
// installed with the configured link cost, not the packet's self-reported
// metric; the caller passes that cost.
func (t *Table) Refresh(dest, firstHop, cost int, now time.Time) {
	if dest == t.selfID {
		return
	}
	if e, ok := t.entries[dest]; ok {
		e.LastRefresh = now
		t.entries[dest] = e
		return
	}
	t.Update(Entry{Dest: dest, FirstHop: firstHop, Metric: cost}, now)
}

// Update applies the table's update rule (spec §4.2) to a candidate entry
// for destination candidate.Dest, and reports whether the table changed.
//
//  1. No current entry: install only if the candidate is reachable.
//  2. Same first_hop as the current entry (an authoritative refresh from
//     the current advertiser): always replace, except an unreachable
//     replacement preserves the current Active/GCDeadline so a dying
//     entry isn't yanked back out of GC by its own withdrawal.
//  3. A strictly better metric via a different first_hop: replace.
//  4. Otherwise: no change, not even to LastRefresh.
func (t *Table) Update(candidate Entry, now time.Time) bool {
	if candidate.Dest == t.selfID {
		return false
	}
	candidate.LastRefresh = now

	current, exists := t.entries[candidate.Dest]
	switch {
	case !exists:
		if candidate.Metric >= wire.Infinity {
			return false
		}
		candidate.Active = true
		t.entries[candidate.Dest] = candidate
		return true

	case current.FirstHop == candidate.FirstHop:
		if candidate.Metric >= wire.Infinity {
			candidate.Active = current.Active
			candidate.GCDeadline = current.GCDeadline
		} else {
			candidate.Active = true
			candidate.GCDeadline = time.Time{}
		}
		t.entries[candidate.Dest] = candidate
		return true

	case candidate.Metric < current.Metric:
		candidate.Active = true
		candidate.GCDeadline = time.Time{}
		t.entries[candidate.Dest] = candidate
		return true

	default:
		return false
	}
}

// TimeoutScan expires entries that have gone quiet for longer than
// timeout, setting their metric to Infinity without touching Active or
// GCDeadline — the garbage-collection scan handles that transition on a
// later call. Returns the destination ids that expired on this call, so
// the caller can trigger an advertisement burst.
func (t *Table) TimeoutScan(now time.Time, timeout time.Duration) []int {
	var expired []int
	for dest, e := range t.entries {
		if e.Metric >= wire.Infinity {
			continue
		}
		if now.Sub(e.LastRefresh) > timeout {
			e.Metric = wire.Infinity
			t.entries[dest] = e
			expired = append(expired, dest)
			if t.metrics != nil {
				t.metrics.RoutesTimedOut.Increment()
			}
		}
	}
	return expired
}

// GCScan runs the two garbage-collection phases over every entry:
// transitioning a newly-dead entry into GC, then reaping any entry whose
// GC window has elapsed. Returns the destination ids removed on this
// call.
func (t *Table) GCScan(now time.Time, gcTime time.Duration) []int {
	var reaped []int
	for dest, e := range t.entries {
		if e.Active && e.Metric >= wire.Infinity {
			e.GCDeadline = now.Add(gcTime)
			e.Active = false
			t.entries[dest] = e
		}
		if !e.Active && e.inGC() && !now.Before(e.GCDeadline) {
			reaped = append(reaped, dest)
		}
	}
	for _, dest := range reaped {
		delete(t.entries, dest)
		if t.metrics != nil {
			t.metrics.RoutesReaped.Increment()
		}
	}
	return reaped
}
